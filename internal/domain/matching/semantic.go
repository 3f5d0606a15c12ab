package matching

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pet-reunite/internal/domain/matching/metrics"
	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/ports/describe"
	imagesport "pet-reunite/internal/ports/images"
)

// tagsMarker separa la descripción libre del listado de tags.
// El describer devuelve algo como:
//
//	"Un perro labrador negro sentado en el pasto.\nTags: dog, labrador, black"
const tagsMarker = "tags:"

// SemanticScorer obtiene tags por imagen vía el colaborador generativo y
// compara los sets con Jaccard. Estrictamente best-effort: cualquier falla
// de parseo o del colaborador termina en Absent/Failed, jamás en error.
type SemanticScorer struct {
	describer describe.Describer
	images    imagesport.Store
	timeout   time.Duration
	log       logger.Logger
	met       *metrics.Metrics
}

func NewSemanticScorer(d describe.Describer, imgs imagesport.Store, timeout time.Duration, log logger.Logger, met *metrics.Metrics) *SemanticScorer {
	return &SemanticScorer{
		describer: d,
		images:    imgs,
		timeout:   timeout,
		log:       log,
		met:       met,
	}
}

func (s *SemanticScorer) Score(ctx context.Context, refA, refB string) Signal {
	if s.describer == nil {
		return Absent()
	}

	tagsA, err := s.tagsFor(ctx, refA)
	if err != nil {
		return s.fail(err)
	}
	tagsB, err := s.tagsFor(ctx, refB)
	if err != nil {
		return s.fail(err)
	}

	sim, ok := Jaccard(tagsA, tagsB)
	if !ok {
		// Ambos sets vacíos: no hay señal, no un cero.
		sig := Absent()
		s.observe(sig)
		return sig
	}

	sig := Present(sim)
	s.observe(sig)
	return sig
}

func (s *SemanticScorer) tagsFor(ctx context.Context, ref string) ([]string, error) {
	img, err := s.images.Get(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("resolve image %s: %w", ref, err)
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.describer.Describe(cctx, img)
	if s.met != nil {
		s.met.ObserveExternalLatency("describe", time.Since(start))
	}
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", ref, err)
	}

	return ParseTags(text), nil
}

// ParseTags corta en la primera ocurrencia (case-insensitive) de "Tags:" y
// trata todo lo que sigue como lista separada por comas, lowercased y trimmed.
// Sin marcador => sin tags (el parseo nunca falla).
func ParseTags(text string) []string {
	idx := strings.Index(strings.ToLower(text), tagsMarker)
	if idx < 0 {
		return nil
	}

	rest := text[idx+len(tagsMarker):]
	// Solo la línea del marcador; una descripción puede seguir abajo.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}

	parts := strings.Split(rest, ",")
	out := make([]string, 0, len(parts))
	seen := map[string]struct{}{}
	for _, p := range parts {
		t := strings.ToLower(strings.TrimSpace(p))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Jaccard devuelve |intersección| / |unión|.
// ok=false cuando ambos sets están vacíos (no hay señal).
func Jaccard(a, b []string) (float64, bool) {
	if len(a) == 0 && len(b) == 0 {
		return 0, false
	}

	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}

	inter := 0
	union := len(setA)
	seenB := make(map[string]struct{}, len(b))
	for _, t := range b {
		if _, dup := seenB[t]; dup {
			continue
		}
		seenB[t] = struct{}{}
		if _, ok := setA[t]; ok {
			inter++
		} else {
			union++
		}
	}

	return float64(inter) / float64(union), true
}

func (s *SemanticScorer) fail(err error) Signal {
	s.log.Warn("semantic: scorer degraded", map[string]any{"err": err.Error()})
	sig := Failed(err)
	s.observe(sig)
	return sig
}

func (s *SemanticScorer) observe(sig Signal) {
	if s.met == nil {
		return
	}
	s.met.ObserveSignal("semantic", sig.outcome())
}
