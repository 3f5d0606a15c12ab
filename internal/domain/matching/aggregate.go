package matching

import (
	"sort"
	"time"

	"pet-reunite/internal/domain/reports"
)

// Strategy combina las señales disponibles en una confianza [0,1].
//
// Hay dos esquemas históricos con constantes distintas, uno por call site.
// Se mantienen como estrategias nombradas y el caller elige explícitamente;
// no se unifica a propósito (comportamiento divergente heredado, ver DESIGN.md).
type Strategy interface {
	Name() string
	Confidence(query reports.Report, c MatchCandidate) float64
}

// BlendedStrategy es el esquema del path de búsqueda on-demand:
// visual*0.6 + semantic*0.4 cuando ambas señales están presentes,
// independiente de metadata. Con una sola señal presente se usa esa;
// sin ninguna, cae al score de metadata.
type BlendedStrategy struct{}

func (BlendedStrategy) Name() string { return "blended" }

func (BlendedStrategy) Confidence(_ reports.Report, c MatchCandidate) float64 {
	switch {
	case c.Visual.IsPresent() && c.Semantic.IsPresent():
		return clamp01(c.Visual.Value()*0.6 + c.Semantic.Value()*0.4)
	case c.Visual.IsPresent():
		return c.Visual.Value()
	case c.Semantic.IsPresent():
		return c.Semantic.Value()
	case c.Metadata.IsPresent():
		return c.Metadata.Value()
	default:
		return neutralScore
	}
}

// AdditiveStrategy es el esquema simple del auto-match al momento de submit:
// incrementos fijos por señal estructurada, suma directa con tope en 1.0.
//
//	breed compartido    +0.3
//	color compartido    +0.3
//	geo dentro de radio +0.2
//	fecha a ≤14 días    +0.2
type AdditiveStrategy struct {
	// DateWindow: ventana de proximidad temporal entre lost y found.
	DateWindow time.Duration
}

func NewAdditiveStrategy() AdditiveStrategy {
	return AdditiveStrategy{DateWindow: 14 * 24 * time.Hour}
}

func (AdditiveStrategy) Name() string { return "additive" }

func (s AdditiveStrategy) Confidence(query reports.Report, c MatchCandidate) float64 {
	var conf float64

	if SharedTagCount(query.Breeds, c.Report.Breeds) > 0 {
		conf += 0.3
	}
	if SharedTagCount(query.Colors, c.Report.Colors) > 0 {
		conf += 0.3
	}
	// Geo viene ya evaluado con la variante de corte duro.
	if c.Geo.IsPresent() && c.Geo.Value() > 0 {
		conf += 0.2
	}
	if withinWindow(query.EventDate, c.Report.EventDate, s.DateWindow) {
		conf += 0.2
	}

	return clamp01(conf)
}

func withinWindow(a, b *time.Time, window time.Duration) bool {
	if a == nil || b == nil {
		return false
	}
	d := a.Sub(*b)
	if d < 0 {
		d = -d
	}
	return d <= window
}

// SortCandidates ordena por confianza desc; empates por CreatedAt del
// candidato, el más reciente primero.
func SortCandidates(cands []MatchCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Confidence != cands[j].Confidence {
			return cands[i].Confidence > cands[j].Confidence
		}
		return cands[i].Report.CreatedAt.After(cands[j].Report.CreatedAt)
	})
}
