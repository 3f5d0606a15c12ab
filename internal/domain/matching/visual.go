package matching

import (
	"context"
	"fmt"
	"time"

	"pet-reunite/internal/domain/matching/metrics"
	"pet-reunite/internal/platform/logger"
	imagesport "pet-reunite/internal/ports/images"
	"pet-reunite/internal/ports/vision"
)

// Pesos del blend visual. Dos call sites históricos, dos blends:
// - faceLabelBlend: face*0.6 + labels*0.4 (score visual inicial)
// - existingLabelBlend: existing*0.7 + labels*0.3 (re-score sobre una
//   confianza ya persistida, en el path de búsqueda)
const (
	faceWeight  = 0.6
	labelWeight = 0.4

	existingWeight      = 0.7
	existingLabelWeight = 0.3
)

// VisualResult separa las componentes del score visual porque el path de
// búsqueda necesita la componente de labels por sí sola para el re-blend.
type VisualResult struct {
	Face    Signal
	Labels  Signal
	Blended Signal
}

// VisualScorer delega en el colaborador de reconocimiento.
// Best-effort: cualquier falla del colaborador degrada a Failed,
// nunca se propaga como error al caller.
type VisualScorer struct {
	recognizer vision.Recognizer
	images     imagesport.Store
	timeout    time.Duration
	log        logger.Logger
	met        *metrics.Metrics
}

func NewVisualScorer(rec vision.Recognizer, imgs imagesport.Store, timeout time.Duration, log logger.Logger, met *metrics.Metrics) *VisualScorer {
	return &VisualScorer{
		recognizer: rec,
		images:     imgs,
		timeout:    timeout,
		log:        log,
		met:        met,
	}
}

// Score intenta primero la comparación de caras y siempre intenta labels.
// - face score: solo si el colaborador reporta match confiable.
// - label score: promedio de confianzas por label compartido, /100;
//   cero labels compartidos es score 0 (presente, no ausente).
// Blend final: face*0.6 + labels*0.4 si hay face; si no, labels solo.
func (s *VisualScorer) Score(ctx context.Context, refA, refB string) VisualResult {
	if s.recognizer == nil {
		return VisualResult{Face: Absent(), Labels: Absent(), Blended: Absent()}
	}

	imgA, err := s.images.Get(ctx, refA)
	if err != nil {
		return s.failAll(fmt.Errorf("resolve image %s: %w", refA, err))
	}
	imgB, err := s.images.Get(ctx, refB)
	if err != nil {
		return s.failAll(fmt.Errorf("resolve image %s: %w", refB, err))
	}

	res := VisualResult{Face: Absent(), Labels: Absent()}

	// (a) comparación de caras: "sin cara detectada" es outcome normal.
	match, err := s.compareFaces(ctx, imgA, imgB)
	switch {
	case err != nil:
		s.log.Warn("visual: compare faces failed", map[string]any{"err": err.Error()})
		res.Face = Failed(err)
	case match.Matched:
		res.Face = Present(match.Similarity / 100)
	}

	// (b) labels de ambas imágenes, siempre.
	labelsA, errA := s.detectLabels(ctx, imgA)
	labelsB, errB := s.detectLabels(ctx, imgB)
	if errA != nil || errB != nil {
		err := errA
		if err == nil {
			err = errB
		}
		s.log.Warn("visual: detect labels failed", map[string]any{"err": err.Error()})
		res.Labels = Failed(err)
	} else {
		res.Labels = Present(labelOverlap(labelsA, labelsB))
	}

	res.Blended = blendVisual(res.Face, res.Labels)

	s.observe("visual_face", res.Face)
	s.observe("visual_labels", res.Labels)
	return res
}

// BlendWithExisting re-blenda una confianza ya existente con el label score
// fresco: existing*0.7 + labels*0.3. Es el segundo call site histórico.
func BlendWithExisting(existing float64, labels Signal) float64 {
	if !labels.IsPresent() {
		return existing
	}
	return clamp01(existing*existingWeight + labels.Value()*existingLabelWeight)
}

func blendVisual(face, labels Signal) Signal {
	switch {
	case face.IsPresent() && labels.IsPresent():
		return Present(face.Value()*faceWeight + labels.Value()*labelWeight)
	case face.IsPresent():
		return Present(face.Value())
	case labels.IsPresent():
		return Present(labels.Value())
	case face.IsFailed():
		return Failed(face.Err())
	case labels.IsFailed():
		return Failed(labels.Err())
	default:
		return Absent()
	}
}

// labelOverlap: por cada label presente en ambas imágenes, media de las dos
// confianzas (escala 0-100) normalizada a [0,1], promediada sobre la cantidad
// de labels compartidos.
func labelOverlap(a, b []vision.Label) float64 {
	byName := make(map[string]float64, len(a))
	for _, l := range a {
		byName[l.Name] = l.Confidence
	}

	var sum float64
	var n int
	for _, l := range b {
		confA, ok := byName[l.Name]
		if !ok {
			continue
		}
		sum += ((confA + l.Confidence) / 2) / 100
		n++
	}

	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (s *VisualScorer) compareFaces(ctx context.Context, imgA, imgB []byte) (vision.FaceMatch, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	match, err := s.recognizer.CompareFaces(cctx, imgA, imgB)
	if s.met != nil {
		s.met.ObserveExternalLatency("compare_faces", time.Since(start))
	}
	return match, err
}

func (s *VisualScorer) detectLabels(ctx context.Context, img []byte) ([]vision.Label, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	labels, err := s.recognizer.DetectLabels(cctx, img)
	if s.met != nil {
		s.met.ObserveExternalLatency("detect_labels", time.Since(start))
	}
	return labels, err
}

func (s *VisualScorer) failAll(err error) VisualResult {
	s.log.Warn("visual: image resolve failed", map[string]any{"err": err.Error()})
	return VisualResult{Face: Failed(err), Labels: Failed(err), Blended: Failed(err)}
}

func (s *VisualScorer) observe(name string, sig Signal) {
	if s.met == nil {
		return
	}
	s.met.ObserveSignal(name, sig.outcome())
}
