package notify

import "context"

// Message es la notificación que recibe el dueño de un reporte.
type Message struct {
	Subject  string
	Body     string
	ReportID string
	MatchID  string
}

// Sink entrega notificaciones fire-and-forget, at-least-once.
// La entrega es responsabilidad del colaborador; el core no reintenta.
type Sink interface {
	Notify(ctx context.Context, userRef string, msg Message) error
}
