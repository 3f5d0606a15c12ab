package matching

import (
	"context"
	"errors"
	"sync"

	"pet-reunite/internal/domain/reports"
	"pet-reunite/internal/platform/logger"
	notifyport "pet-reunite/internal/ports/notify"
	"pet-reunite/internal/ports/vision"
)

func testLogger() logger.Logger {
	return logger.New(logger.Options{Level: logger.Error})
}

// fakeImages resuelve refs a bytes desde un map fijo.
type fakeImages struct {
	byRef map[string][]byte
}

func (f *fakeImages) Put(ctx context.Context, ref string, data []byte) error {
	f.byRef[ref] = data
	return nil
}

func (f *fakeImages) Get(ctx context.Context, ref string) ([]byte, error) {
	data, ok := f.byRef[ref]
	if !ok {
		return nil, errors.New("image not found")
	}
	return data, nil
}

// fakeRecognizer devuelve resultados fijos, o falla si err está seteado.
type fakeRecognizer struct {
	face   vision.FaceMatch
	labels map[string][]vision.Label // keyed por los bytes de la imagen
	err    error
}

func (f *fakeRecognizer) CompareFaces(ctx context.Context, a, b []byte) (vision.FaceMatch, error) {
	if f.err != nil {
		return vision.FaceMatch{}, f.err
	}
	return f.face, nil
}

func (f *fakeRecognizer) DetectLabels(ctx context.Context, img []byte) ([]vision.Label, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.labels[string(img)], nil
}

// fakeDescriber devuelve texto fijo por imagen, o falla si err está seteado.
type fakeDescriber struct {
	byImage map[string]string
	err     error
}

func (f *fakeDescriber) Describe(ctx context.Context, img []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.byImage[string(img)], nil
}

// fakeReportsRepo es un reports.Repository mínimo para los tests del recorder.
type fakeReportsRepo struct {
	mu   sync.Mutex
	byID map[string]reports.Report
}

func newFakeReportsRepo(reps ...reports.Report) *fakeReportsRepo {
	r := &fakeReportsRepo{byID: map[string]reports.Report{}}
	for _, rep := range reps {
		r.byID[rep.ID] = rep
	}
	return r
}

func (r *fakeReportsRepo) Create(ctx context.Context, rep reports.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[rep.ID] = rep
	return nil
}

func (r *fakeReportsRepo) GetByID(ctx context.Context, id string) (reports.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.byID[id]
	if !ok {
		return reports.Report{}, reports.ErrNotFound
	}
	return rep, nil
}

func (r *fakeReportsRepo) ListByOwner(ctx context.Context, owner string) ([]reports.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []reports.Report{}
	for _, rep := range r.byID {
		if rep.OwnerUserID == owner {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (r *fakeReportsRepo) ListByKind(ctx context.Context, kind reports.Kind) ([]reports.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []reports.Report{}
	for _, rep := range r.byID {
		if rep.Kind == kind {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (r *fakeReportsRepo) UpdateStatus(ctx context.Context, id string, status reports.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.byID[id]
	if !ok {
		return reports.ErrNotFound
	}
	rep.Status = status
	r.byID[id] = rep
	return nil
}

// fakeMatchesRepo replica el upsert por par de los adapters reales.
type fakeMatchesRepo struct {
	mu     sync.Mutex
	byPair map[string]MatchRecord
	err    error
}

func newFakeMatchesRepo() *fakeMatchesRepo {
	return &fakeMatchesRepo{byPair: map[string]MatchRecord{}}
}

func (r *fakeMatchesRepo) Upsert(ctx context.Context, rec MatchRecord) (MatchRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return MatchRecord{}, false, r.err
	}
	key := PairKey(rec.LostReportID, rec.FoundReportID)
	if existing, ok := r.byPair[key]; ok {
		return existing, false, nil
	}
	r.byPair[key] = rec
	return rec, true, nil
}

func (r *fakeMatchesRepo) GetByPair(ctx context.Context, lostID, foundID string) (MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byPair[PairKey(lostID, foundID)]
	if !ok {
		return MatchRecord{}, errors.New("match not found")
	}
	return rec, nil
}

func (r *fakeMatchesRepo) ListByReport(ctx context.Context, reportID string) ([]MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []MatchRecord{}
	for _, rec := range r.byPair {
		if rec.LostReportID == reportID || rec.FoundReportID == reportID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// fakeSink acumula notificaciones.
type fakeSink struct {
	mu   sync.Mutex
	sent []string // userRefs
}

func (s *fakeSink) Notify(ctx context.Context, userRef string, msg notifyport.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, userRef)
	return nil
}
