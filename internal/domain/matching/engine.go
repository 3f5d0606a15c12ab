package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-reunite/internal/domain/matching/metrics"
	"pet-reunite/internal/domain/reports"
	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/ports/describe"
	imagesport "pet-reunite/internal/ports/images"
	"pet-reunite/internal/ports/notify"
	"pet-reunite/internal/ports/vision"

	"golang.org/x/sync/errgroup"
)

var (
	ErrQueryNotFound = errors.New("query report not found")
	ErrQueryNoImage  = errors.New("query report has no image reference")
)

// Config son los knobs del motor. Cero = default.
type Config struct {
	// Radio de corte duro para el geo score del auto-match.
	MatchRadiusKm float64
	// Radio más amplio para el path de búsqueda (refugios).
	SearchRadiusKm float64

	// Tamaño del pool de workers por corrida. Chico a propósito:
	// el fan-out sin tope contra los servicios externos quema cuota.
	Concurrency int

	// Timeout por llamada externa individual.
	SignalTimeout time.Duration
	// Deadline global del auto-match sincrónico. Vencido el deadline se
	// devuelven resultados parciales con warning, no se cuelga.
	MatchDeadline time.Duration

	// Umbral de aceptación del path de submit.
	AcceptThreshold float64
}

func (c Config) withDefaults() Config {
	if c.MatchRadiusKm <= 0 {
		c.MatchRadiusKm = 25
	}
	if c.SearchRadiusKm <= 0 {
		c.SearchRadiusKm = 50
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.SignalTimeout <= 0 {
		c.SignalTimeout = 15 * time.Second
	}
	if c.MatchDeadline <= 0 {
		c.MatchDeadline = 30 * time.Second
	}
	if c.AcceptThreshold <= 0 {
		c.AcceptThreshold = 0.5
	}
	return c
}

// Deps son los colaboradores del motor. Recognizer/Describer/Notifier pueden
// ser nil (modo degradado / dev): sus señales quedan Absent.
type Deps struct {
	Reports    reports.Repository
	Matches    MatchRepository
	Images     imagesport.Store
	Recognizer vision.Recognizer
	Describer  describe.Describer
	Notifier   notify.Sink
	Log        logger.Logger
	Metrics    *metrics.Metrics
}

// Engine corre el pipeline: filtro → scorers por candidato (data-parallel,
// pool acotado) → agregación → recorder.
type Engine struct {
	repo    reports.Repository
	matches MatchRepository

	visual   *VisualScorer
	semantic *SemanticScorer
	recorder *Recorder

	weights  MetadataWeights
	additive AdditiveStrategy
	blended  BlendedStrategy

	cfg Config
	log logger.Logger
	met *metrics.Metrics
}

func NewEngine(d Deps, cfg Config) *Engine {
	cfg = cfg.withDefaults()

	log := d.Log
	if log == nil {
		log = logger.New(logger.Options{Level: logger.Warn})
	}

	return &Engine{
		repo:     d.Reports,
		matches:  d.Matches,
		visual:   NewVisualScorer(d.Recognizer, d.Images, cfg.SignalTimeout, log, d.Metrics),
		semantic: NewSemanticScorer(d.Describer, d.Images, cfg.SignalTimeout, log, d.Metrics),
		recorder: NewRecorder(d.Matches, d.Reports, d.Notifier, log, d.Metrics),
		weights:  DefaultMetadataWeights(),
		additive: NewAdditiveStrategy(),
		blended:  BlendedStrategy{},
		cfg:      cfg,
		log:      log,
		met:      d.Metrics,
	}
}

// MatchOutcome es el resultado del auto-match sincrónico.
type MatchOutcome struct {
	Accepted []MatchRecord
	Warnings []string
}

// ScoreAndMatch corre el pipeline completo para un reporte recién creado y
// persiste los matches aceptados (esquema aditivo, umbral de aceptación).
//
// Fallas de scorers degradan a warning; fallas de persistencia se propagan.
func (e *Engine) ScoreAndMatch(ctx context.Context, queryReportID string) (MatchOutcome, error) {
	query, err := e.repo.GetByID(ctx, queryReportID)
	if err != nil {
		return MatchOutcome{}, fmt.Errorf("%w: %s", ErrQueryNotFound, queryReportID)
	}
	if query.ImageRef == "" {
		return MatchOutcome{}, ErrQueryNoImage
	}

	pool, err := e.repo.ListByKind(ctx, query.Kind.Opposite())
	if err != nil {
		return MatchOutcome{}, fmt.Errorf("list candidates: %w", err)
	}
	cands := FilterCandidates(query, pool)

	dctx, cancel := context.WithTimeout(ctx, e.cfg.MatchDeadline)
	defer cancel()

	scored := e.scoreAll(dctx, query, cands, e.cfg.MatchRadiusKm)

	out := MatchOutcome{Accepted: []MatchRecord{}}
	out.Warnings = e.degradationWarnings(dctx, scored)

	for i := range scored {
		scored[i].Confidence = e.additive.Confidence(query, scored[i])
	}
	SortCandidates(scored)

	// El recorder corre desacoplado de la cancelación del request: hasta acá
	// no hubo side effects visibles, y un abort a mitad de la persistencia
	// no debe dejar matches aceptados por la mitad.
	rctx := context.WithoutCancel(ctx)

	for _, c := range scored {
		if c.Confidence < e.cfg.AcceptThreshold {
			break // ya está ordenado desc
		}
		rec, _, err := e.recorder.Record(rctx, query, c.Report, c.Confidence)
		if err != nil {
			// No fingimos éxito: lo aceptado hasta acá se reporta junto al error.
			return out, err
		}
		out.Accepted = append(out.Accepted, rec)
	}

	return out, nil
}

// SearchCriteria parametriza el path de búsqueda on-demand.
type SearchCriteria struct {
	ReportID string
	// RadiusKm opcional; 0 usa el radio amplio de búsqueda.
	RadiusKm float64
	// Limit opcional; 0 = sin tope.
	Limit int
}

// Search devuelve la lista completa rankeada, sin persistir nada.
// Esquema blended; el caller aplica su propio umbral/filtro.
// Si el par ya tiene un MatchRecord, la confianza existente se re-blenda
// con el label score fresco (existing*0.7 + labels*0.3).
func (e *Engine) Search(ctx context.Context, crit SearchCriteria) ([]MatchCandidate, error) {
	query, err := e.repo.GetByID(ctx, crit.ReportID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrQueryNotFound, crit.ReportID)
	}
	if query.ImageRef == "" {
		return nil, ErrQueryNoImage
	}

	pool, err := e.repo.ListByKind(ctx, query.Kind.Opposite())
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	cands := FilterCandidates(query, pool)

	radius := crit.RadiusKm
	if radius <= 0 {
		radius = e.cfg.SearchRadiusKm
	}

	dctx, cancel := context.WithTimeout(ctx, e.cfg.MatchDeadline)
	defer cancel()

	scored := e.scoreAll(dctx, query, cands, radius)

	existing := e.existingByOther(ctx, query)

	for i := range scored {
		c := &scored[i]
		if rec, ok := existing[c.Report.ID]; ok {
			c.Confidence = BlendWithExisting(rec.Confidence, c.Labels)
			continue
		}
		c.Confidence = e.blended.Confidence(query, *c)
	}

	SortCandidates(scored)
	if crit.Limit > 0 && len(scored) > crit.Limit {
		scored = scored[:crit.Limit]
	}
	return scored, nil
}

// scoreAll corre los scorers por candidato en paralelo con pool acotado.
// Las fallas de scorers quedan en las señales; nada aborta el batch.
func (e *Engine) scoreAll(ctx context.Context, query reports.Report, cands []reports.Report, radiusKm float64) []MatchCandidate {
	scored := make([]MatchCandidate, len(cands))

	g := new(errgroup.Group)
	g.SetLimit(e.cfg.Concurrency)

	for i, cand := range cands {
		i, cand := i, cand
		g.Go(func() error {
			scored[i] = e.scoreCandidate(ctx, query, cand, radiusKm)
			return nil
		})
	}
	_ = g.Wait()

	if e.met != nil {
		e.met.AddCandidatesScored(len(cands))
	}
	return scored
}

func (e *Engine) scoreCandidate(ctx context.Context, query, cand reports.Report, radiusKm float64) MatchCandidate {
	c := MatchCandidate{Report: cand}

	c.Geo, c.DistanceKm = GeoCutoff(query.Coordinate, cand.Coordinate, radiusKm)

	vres := e.visual.Score(ctx, query.ImageRef, cand.ImageRef)
	c.Visual = vres.Blended
	c.Labels = vres.Labels

	c.Semantic = e.semantic.Score(ctx, query.ImageRef, cand.ImageRef)

	// Metadata siempre se computa: es la base cuando lo demás se degrada.
	c.Metadata = Present(MetadataScore(e.weights, query, cand))

	c.Degraded = c.Visual.IsFailed() || c.Semantic.IsFailed()
	return c
}

func (e *Engine) degradationWarnings(ctx context.Context, scored []MatchCandidate) []string {
	var warnings []string

	degraded := 0
	for _, c := range scored {
		if c.Degraded {
			degraded++
		}
	}
	if degraded > 0 {
		warnings = append(warnings, fmt.Sprintf("visual/semantic scoring degraded for %d candidate(s); matches may be less accurate", degraded))
	}
	if ctx.Err() != nil {
		warnings = append(warnings, "match deadline exceeded; results may be partial")
	}
	return warnings
}

func (e *Engine) existingByOther(ctx context.Context, query reports.Report) map[string]MatchRecord {
	out := map[string]MatchRecord{}
	if e.matches == nil {
		return out
	}

	recs, err := e.matches.ListByReport(ctx, query.ID)
	if err != nil {
		e.log.Warn("search: list existing matches failed", map[string]any{"err": err.Error()})
		return out
	}

	for _, rec := range recs {
		other := rec.FoundReportID
		if other == query.ID {
			other = rec.LostReportID
		}
		out[other] = rec
	}
	return out
}
