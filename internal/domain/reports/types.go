package reports

// Kind indica si el reporte es de mascota perdida o encontrada.
// @Enum lost, found
type Kind string

const (
	KindLost  Kind = "lost"
	KindFound Kind = "found"
)

// Opposite devuelve el kind contrario (un lost se matchea contra found y viceversa).
func (k Kind) Opposite() Kind {
	if k == KindLost {
		return KindFound
	}
	return KindLost
}

func (k Kind) Valid() bool {
	return k == KindLost || k == KindFound
}

// Status es el ciclo de vida del reporte. Solo avanza, nunca retrocede.
// @Enum active, matched, claimed, resolved
type Status string

const (
	StatusActive   Status = "active"
	StatusMatched  Status = "matched"
	StatusClaimed  Status = "claimed"
	StatusResolved Status = "resolved"
)

// allowedTransitions: active→matched→claimed/resolved, claimed→resolved.
var allowedTransitions = map[Status][]Status{
	StatusActive:  {StatusMatched},
	StatusMatched: {StatusClaimed, StatusResolved},
	StatusClaimed: {StatusResolved},
}

// CanTransition valida el avance de estado (forward-only).
func (s Status) CanTransition(to Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusMatched, StatusClaimed, StatusResolved:
		return true
	}
	return false
}

// SizeClass define los tamaños soportados.
// @Enum small, medium, large
type SizeClass string

const (
	SizeSmall  SizeClass = "small"
	SizeMedium SizeClass = "medium"
	SizeLarge  SizeClass = "large"
)

// AgeClass define las franjas de edad.
// @Enum baby, young, adult, senior
type AgeClass string

const (
	AgeBaby   AgeClass = "baby"
	AgeYoung  AgeClass = "young"
	AgeAdult  AgeClass = "adult"
	AgeSenior AgeClass = "senior"
)

// Gender define el sexo del animal.
// @Enum male, female, unknown
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)
