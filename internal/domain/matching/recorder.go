package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-reunite/internal/domain/matching/metrics"
	"pet-reunite/internal/domain/reports"
	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/ports/notify"

	"github.com/google/uuid"
)

var (
	ErrSameKind = errors.New("match requires one lost and one found report")
)

// Recorder persiste matches aceptados y dispara las notificaciones.
// El upsert por par es el único requisito de corrección bajo concurrencia:
// dos corridas sobre el mismo par producen exactamente un record.
type Recorder struct {
	matches MatchRepository
	reports reports.Repository
	sink    notify.Sink
	log     logger.Logger
	met     *metrics.Metrics
	now     func() time.Time
}

func NewRecorder(matches MatchRepository, repo reports.Repository, sink notify.Sink, log logger.Logger, met *metrics.Metrics) *Recorder {
	return &Recorder{
		matches: matches,
		reports: repo,
		sink:    sink,
		log:     log,
		met:     met,
		now:     time.Now,
	}
}

// Record upserta el MatchRecord del par (lost, found).
// - Duplicado: no-op silencioso, devuelve el record vigente y created=false.
// - Falla de persistencia: se propaga (no se finge éxito).
// - Notificaciones: fire-and-forget, una por owner, skip si el owner está vacío.
func (r *Recorder) Record(ctx context.Context, a, b reports.Report, confidence float64) (MatchRecord, bool, error) {
	if a.Kind == b.Kind {
		return MatchRecord{}, false, ErrSameKind
	}

	lost, found := a, b
	if lost.Kind != reports.KindLost {
		lost, found = b, a
	}

	rec := MatchRecord{
		ID:            uuid.NewString(),
		LostReportID:  lost.ID,
		FoundReportID: found.ID,
		Confidence:    clamp01(confidence),
		CreatedAt:     r.now(),
	}

	current, created, err := r.matches.Upsert(ctx, rec)
	if err != nil {
		return MatchRecord{}, false, fmt.Errorf("record match: %w", err)
	}
	if !created {
		// Re-corrida del pipeline sobre un par ya matcheado: absorbido.
		if r.met != nil {
			r.met.IncDuplicateAbsorbed()
		}
		return current, false, nil
	}

	if r.met != nil {
		r.met.IncMatchRecorded()
	}
	r.log.Info("match recorded", map[string]any{
		"match_id":   current.ID,
		"lost_id":    lost.ID,
		"found_id":   found.ID,
		"confidence": current.Confidence,
	})

	// Ambos reportes avanzan a matched. Si ya avanzaron, no es error.
	r.markMatched(ctx, lost.ID)
	r.markMatched(ctx, found.ID)

	r.notifyOwner(ctx, lost, found, current)
	r.notifyOwner(ctx, found, lost, current)

	return current, true, nil
}

func (r *Recorder) markMatched(ctx context.Context, reportID string) {
	rep, err := r.reports.GetByID(ctx, reportID)
	if err != nil {
		r.log.Warn("recorder: report reload failed", map[string]any{"report_id": reportID, "err": err.Error()})
		return
	}
	if rep.Status != reports.StatusActive {
		return
	}
	if err := r.reports.UpdateStatus(ctx, reportID, reports.StatusMatched); err != nil {
		r.log.Warn("recorder: status update failed", map[string]any{"report_id": reportID, "err": err.Error()})
	}
}

func (r *Recorder) notifyOwner(ctx context.Context, own, other reports.Report, rec MatchRecord) {
	if r.sink == nil || own.OwnerUserID == "" {
		return
	}

	msg := notify.Message{
		Subject:  "Posible match para tu reporte",
		Body:     fmt.Sprintf("Encontramos un posible match (confianza %.0f%%) con el reporte %s.", rec.Confidence*100, other.ID),
		ReportID: own.ID,
		MatchID:  rec.ID,
	}

	// Fire-and-forget: una falla de entrega no voltea el match ya persistido.
	if err := r.sink.Notify(ctx, own.OwnerUserID, msg); err != nil {
		r.log.Warn("recorder: notify failed", map[string]any{"user": own.OwnerUserID, "err": err.Error()})
	}
}
