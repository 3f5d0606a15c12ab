package matching

import "fmt"

type signalState int

const (
	stateAbsent signalState = iota
	statePresent
	stateFailed
)

// Signal es el resultado tri-estado de un scorer:
// - Present(v): el scorer pudo evaluar y produjo un valor en [0,1].
// - Absent(): el scorer no tenía datos para evaluar (p.ej. falta coordenada).
// - Failed(err): el colaborador externo falló o venció el timeout.
//
// Ausencia y falla NO penalizan: ninguna de las dos es un cero.
// La distinción Absent/Failed existe para logs, métricas y warnings.
type Signal struct {
	state signalState
	value float64
	err   error
}

func Present(v float64) Signal {
	return Signal{state: statePresent, value: clamp01(v)}
}

func Absent() Signal {
	return Signal{state: stateAbsent}
}

func Failed(err error) Signal {
	return Signal{state: stateFailed, err: err}
}

func (s Signal) IsPresent() bool { return s.state == statePresent }
func (s Signal) IsAbsent() bool  { return s.state == stateAbsent }
func (s Signal) IsFailed() bool  { return s.state == stateFailed }

// Value devuelve el valor del signal. Solo tiene sentido si IsPresent().
func (s Signal) Value() float64 { return s.value }

func (s Signal) Err() error { return s.err }

// ValueOrNil es util para respuestas JSON (null = sin señal).
func (s Signal) ValueOrNil() *float64 {
	if !s.IsPresent() {
		return nil
	}
	v := s.value
	return &v
}

func (s Signal) String() string {
	switch s.state {
	case statePresent:
		return fmt.Sprintf("present(%.3f)", s.value)
	case stateFailed:
		return fmt.Sprintf("failed(%v)", s.err)
	default:
		return "absent"
	}
}

// outcome es el label que usamos en métricas.
func (s Signal) outcome() string {
	switch s.state {
	case statePresent:
		return "present"
	case stateFailed:
		return "failed"
	default:
		return "absent"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
