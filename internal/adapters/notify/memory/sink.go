package memory

import (
	"context"
	"sync"

	notifyport "pet-reunite/internal/ports/notify"
)

// Sink acumula notificaciones in-memory (dev y tests).
type Sink struct {
	mu   sync.Mutex
	sent []Sent
}

type Sent struct {
	UserRef string
	Message notifyport.Message
}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Notify(ctx context.Context, userRef string, msg notifyport.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, Sent{UserRef: userRef, Message: msg})
	return nil
}

// Sent devuelve una copia de lo enviado hasta ahora.
func (s *Sink) Messages() []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sent, len(s.sent))
	copy(out, s.sent)
	return out
}
