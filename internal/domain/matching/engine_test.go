package matching_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-reunite/internal/adapters/images/memory"
	storagemem "pet-reunite/internal/adapters/storage/memory"
	"pet-reunite/internal/domain/matching"
	"pet-reunite/internal/domain/reports"
	imagesport "pet-reunite/internal/ports/images"
	"pet-reunite/internal/ports/vision"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRecognizer responde con labels fijos por imagen; caras nunca matchean.
type stubRecognizer struct {
	labels map[string][]vision.Label
	err    error
}

func (s *stubRecognizer) CompareFaces(ctx context.Context, a, b []byte) (vision.FaceMatch, error) {
	if s.err != nil {
		return vision.FaceMatch{}, s.err
	}
	return vision.FaceMatch{}, nil
}

func (s *stubRecognizer) DetectLabels(ctx context.Context, img []byte) ([]vision.Label, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.labels[string(img)], nil
}

// stubDescriber devuelve texto fijo por imagen.
type stubDescriber struct {
	byImage map[string]string
	err     error
}

func (s *stubDescriber) Describe(ctx context.Context, img []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.byImage[string(img)], nil
}

type engineFixture struct {
	engine  *matching.Engine
	reports reports.Repository
	matches matching.MatchRepository
	images  imagesport.Store
}

func newEngineFixture(t *testing.T, recognizer vision.Recognizer, describer *stubDescriber) engineFixture {
	t.Helper()

	repo := storagemem.NewReportsRepo()
	matches := storagemem.NewMatchesRepo()
	images := memory.NewStore()

	d := matching.Deps{
		Reports:    repo,
		Matches:    matches,
		Images:     images,
		Recognizer: recognizer,
	}
	// Un *stubDescriber nil no debe terminar como interface no-nil.
	if describer != nil {
		d.Describer = describer
	}

	eng := matching.NewEngine(d, matching.Config{})
	return engineFixture{engine: eng, reports: repo, matches: matches, images: images}
}

func (f engineFixture) addReport(t *testing.T, rep reports.Report, image []byte) reports.Report {
	t.Helper()

	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.Status == "" {
		rep.Status = reports.StatusActive
	}
	if rep.ImageRef == "" {
		rep.ImageRef = "img-" + rep.ID
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now()
	}

	require.NoError(t, f.images.Put(context.Background(), rep.ImageRef, image))
	require.NoError(t, f.reports.Create(context.Background(), rep))
	return rep
}

func limaCoord() *reports.Coordinate {
	return &reports.Coordinate{Lat: -12.0464, Lon: -77.0428}
}

func TestEngine_ScoreAndMatch_AcceptsStrongCandidate(t *testing.T) {
	f := newEngineFixture(t, nil, nil)

	lostAt := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	foundAt := lostAt.Add(2 * 24 * time.Hour)

	lost := f.addReport(t, reports.Report{
		Kind:        reports.KindLost,
		OwnerUserID: "owner-a",
		Category:    "dog",
		Breeds:      []string{"labrador"},
		Colors:      []string{"black"},
		Coordinate:  limaCoord(),
		EventDate:   &lostAt,
	}, []byte("lost-img"))

	found := f.addReport(t, reports.Report{
		Kind:        reports.KindFound,
		OwnerUserID: "owner-b",
		Category:    "dog",
		Breeds:      []string{"labrador"},
		Colors:      []string{"black"},
		Coordinate:  &reports.Coordinate{Lat: -12.05, Lon: -77.04}, // a metros
		EventDate:   &foundAt,
	}, []byte("found-img"))

	out, err := f.engine.ScoreAndMatch(context.Background(), lost.ID)
	require.NoError(t, err)

	require.Len(t, out.Accepted, 1)
	rec := out.Accepted[0]
	assert.Equal(t, lost.ID, rec.LostReportID)
	assert.Equal(t, found.ID, rec.FoundReportID)
	// breed 0.3 + color 0.3 + geo 0.2 + fecha 0.2
	assert.InDelta(t, 1.0, rec.Confidence, 1e-12)

	// Ambos reportes quedaron matched.
	gotLost, err := f.reports.GetByID(context.Background(), lost.ID)
	require.NoError(t, err)
	assert.Equal(t, reports.StatusMatched, gotLost.Status)
}

func TestEngine_ScoreAndMatch_WeakCandidateNotAccepted(t *testing.T) {
	f := newEngineFixture(t, nil, nil)

	lost := f.addReport(t, reports.Report{
		Kind:     reports.KindLost,
		Category: "dog",
		Breeds:   []string{"labrador"},
	}, []byte("lost-img"))

	// Solo breed compartido: 0.3, debajo del umbral.
	f.addReport(t, reports.Report{
		Kind:     reports.KindFound,
		Category: "dog",
		Breeds:   []string{"labrador"},
		Colors:   []string{"white"},
	}, []byte("found-img"))

	out, err := f.engine.ScoreAndMatch(context.Background(), lost.ID)
	require.NoError(t, err)
	assert.Empty(t, out.Accepted)
}

func TestEngine_ScoreAndMatch_FiltersOtherCategory(t *testing.T) {
	f := newEngineFixture(t, nil, nil)

	lostAt := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	lost := f.addReport(t, reports.Report{
		Kind:       reports.KindLost,
		Category:   "dog",
		Breeds:     []string{"siames"},
		Colors:     []string{"black"},
		Coordinate: limaCoord(),
		EventDate:  &lostAt,
	}, []byte("lost-img"))

	// Gato idéntico en todo lo demás: el filtro lo descarta antes de scorear.
	f.addReport(t, reports.Report{
		Kind:       reports.KindFound,
		Category:   "cat",
		Breeds:     []string{"siames"},
		Colors:     []string{"black"},
		Coordinate: limaCoord(),
		EventDate:  &lostAt,
	}, []byte("found-img"))

	out, err := f.engine.ScoreAndMatch(context.Background(), lost.ID)
	require.NoError(t, err)
	assert.Empty(t, out.Accepted)
}

func TestEngine_ScoreAndMatch_IsIdempotent(t *testing.T) {
	f := newEngineFixture(t, nil, nil)

	lostAt := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	lost := f.addReport(t, reports.Report{
		Kind:       reports.KindLost,
		Category:   "dog",
		Breeds:     []string{"labrador"},
		Colors:     []string{"black"},
		Coordinate: limaCoord(),
		EventDate:  &lostAt,
	}, []byte("lost-img"))

	found := f.addReport(t, reports.Report{
		Kind:       reports.KindFound,
		Category:   "dog",
		Breeds:     []string{"labrador"},
		Colors:     []string{"black"},
		Coordinate: limaCoord(),
		EventDate:  &lostAt,
	}, []byte("found-img"))

	first, err := f.engine.ScoreAndMatch(context.Background(), lost.ID)
	require.NoError(t, err)
	require.Len(t, first.Accepted, 1)

	// Releer: el found ya no está active, el filtro lo saca. Si ambos se
	// reactivaran, el upsert por par igual absorbe el duplicado; acá
	// verificamos el camino del filtro.
	second, err := f.engine.ScoreAndMatch(context.Background(), lost.ID)
	require.NoError(t, err)
	assert.Empty(t, second.Accepted)

	rec, err := f.matches.GetByPair(context.Background(), lost.ID, found.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Accepted[0].ID, rec.ID)
}

func TestEngine_ScoreAndMatch_DegradedCollaboratorsWarn(t *testing.T) {
	boom := errors.New("recognition unavailable")
	f := newEngineFixture(t, &stubRecognizer{err: boom}, &stubDescriber{err: boom})

	lostAt := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	lost := f.addReport(t, reports.Report{
		Kind:       reports.KindLost,
		Category:   "dog",
		Breeds:     []string{"labrador"},
		Colors:     []string{"black"},
		Coordinate: limaCoord(),
		EventDate:  &lostAt,
	}, []byte("lost-img"))

	f.addReport(t, reports.Report{
		Kind:       reports.KindFound,
		Category:   "dog",
		Breeds:     []string{"labrador"},
		Colors:     []string{"black"},
		Coordinate: limaCoord(),
		EventDate:  &lostAt,
	}, []byte("found-img"))

	out, err := f.engine.ScoreAndMatch(context.Background(), lost.ID)
	require.NoError(t, err)

	// El esquema aditivo no depende de las señales de imagen: el match
	// igual se acepta, pero con warning de degradación.
	assert.Len(t, out.Accepted, 1)
	require.NotEmpty(t, out.Warnings)
	assert.Contains(t, out.Warnings[0], "degraded")
}

func TestEngine_ScoreAndMatch_QueryErrors(t *testing.T) {
	f := newEngineFixture(t, nil, nil)

	_, err := f.engine.ScoreAndMatch(context.Background(), "missing")
	assert.ErrorIs(t, err, matching.ErrQueryNotFound)

	rep := reports.Report{
		ID:     uuid.NewString(),
		Kind:   reports.KindLost,
		Status: reports.StatusActive,
	}
	require.NoError(t, f.reports.Create(context.Background(), rep))

	_, err = f.engine.ScoreAndMatch(context.Background(), rep.ID)
	assert.ErrorIs(t, err, matching.ErrQueryNoImage)
}

func TestEngine_Search_RanksByBlendedConfidence(t *testing.T) {
	rec := &stubRecognizer{labels: map[string][]vision.Label{
		"lost-img":   {{Name: "dog", Confidence: 90}},
		"strong-img": {{Name: "dog", Confidence: 90}},
		"weak-img":   {{Name: "cat", Confidence: 90}},
	}}
	desc := &stubDescriber{byImage: map[string]string{
		"lost-img":   "Un labrador negro.\nTags: dog, labrador, black",
		"strong-img": "Un labrador negro.\nTags: dog, labrador, black",
		"weak-img":   "Un gato blanco.\nTags: cat, white",
	}}
	f := newEngineFixture(t, rec, desc)

	lost := f.addReport(t, reports.Report{
		Kind:     reports.KindLost,
		Category: "dog",
	}, []byte("lost-img"))

	strong := f.addReport(t, reports.Report{
		Kind:     reports.KindFound,
		Category: "dog",
	}, []byte("strong-img"))

	weak := f.addReport(t, reports.Report{
		Kind:     reports.KindFound,
		Category: "", // wildcard: pasa el filtro
	}, []byte("weak-img"))

	got, err := f.engine.Search(context.Background(), matching.SearchCriteria{ReportID: lost.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, strong.ID, got[0].Report.ID)
	assert.Equal(t, weak.ID, got[1].Report.ID)
	assert.Greater(t, got[0].Confidence, got[1].Confidence)

	// El candidato fuerte comparte labels y tags: visual 0.9, semantic 1.0.
	assert.InDelta(t, 0.9*0.6+1.0*0.4, got[0].Confidence, 1e-12)
}

func TestEngine_Search_FallsBackToSemanticWhenVisualFails(t *testing.T) {
	rec := &stubRecognizer{err: errors.New("recognition timeout")}
	desc := &stubDescriber{byImage: map[string]string{
		"lost-img":  "Un labrador.\nTags: dog, labrador, black, collar, park",
		"found-img": "Un labrador.\nTags: dog, labrador, black, collar",
	}}
	f := newEngineFixture(t, rec, desc)

	lost := f.addReport(t, reports.Report{
		Kind:     reports.KindLost,
		Category: "dog",
	}, []byte("lost-img"))

	f.addReport(t, reports.Report{
		Kind:     reports.KindFound,
		Category: "dog",
	}, []byte("found-img"))

	got, err := f.engine.Search(context.Background(), matching.SearchCriteria{ReportID: lost.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Visual caído: la confianza es el Jaccard semántico solo (4/5),
	// con el candidato marcado como degradado.
	assert.True(t, got[0].Visual.IsFailed())
	require.True(t, got[0].Semantic.IsPresent())
	assert.InDelta(t, 0.8, got[0].Confidence, 1e-12)
	assert.True(t, got[0].Degraded)
}

func TestEngine_Search_LimitAndRadius(t *testing.T) {
	f := newEngineFixture(t, nil, nil)

	lost := f.addReport(t, reports.Report{
		Kind:       reports.KindLost,
		Category:   "dog",
		Coordinate: limaCoord(),
	}, []byte("lost-img"))

	for i := 0; i < 5; i++ {
		f.addReport(t, reports.Report{
			Kind:       reports.KindFound,
			Category:   "dog",
			Coordinate: limaCoord(),
		}, []byte{byte(i)})
	}

	got, err := f.engine.Search(context.Background(), matching.SearchCriteria{ReportID: lost.ID, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestEngine_Search_ReblendsExistingMatch(t *testing.T) {
	rec := &stubRecognizer{labels: map[string][]vision.Label{
		"lost-img":  {{Name: "dog", Confidence: 100}},
		"found-img": {{Name: "dog", Confidence: 100}},
	}}
	f := newEngineFixture(t, rec, nil)

	lost := f.addReport(t, reports.Report{
		Kind:     reports.KindLost,
		Category: "dog",
	}, []byte("lost-img"))

	found := f.addReport(t, reports.Report{
		Kind:     reports.KindFound,
		Category: "dog",
	}, []byte("found-img"))

	_, _, err := f.matches.Upsert(context.Background(), matching.MatchRecord{
		ID:            uuid.NewString(),
		LostReportID:  lost.ID,
		FoundReportID: found.ID,
		Confidence:    0.5,
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)

	got, err := f.engine.Search(context.Background(), matching.SearchCriteria{ReportID: lost.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Confianza persistida 0.5 re-blendada con label score 1.0:
	// 0.5*0.7 + 1.0*0.3
	assert.InDelta(t, 0.65, got[0].Confidence, 1e-12)
}
