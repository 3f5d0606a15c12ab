package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("report not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Kind        Kind
	Category    string
	Breeds      []string
	Colors      []string
	Features    []string
	Size        SizeClass
	Age         AgeClass
	Gender      Gender
	Description string
	Coordinate  *Coordinate
	EventDate   *time.Time
	ImageRef    string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Report, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Report{}, ErrInvalidInput
	}
	if !in.Kind.Valid() {
		return Report{}, ErrInvalidInput
	}
	// Sin imagen no hay señal visual ni semántica: se rechaza antes de scorear.
	if strings.TrimSpace(in.ImageRef) == "" {
		return Report{}, ErrInvalidInput
	}
	if in.Coordinate != nil && !in.Coordinate.Valid() {
		return Report{}, ErrInvalidInput
	}
	if in.Size != "" && in.Size != SizeSmall && in.Size != SizeMedium && in.Size != SizeLarge {
		return Report{}, ErrInvalidInput
	}

	now := s.now()

	gender := in.Gender
	if gender == "" {
		gender = GenderUnknown
	}

	r := Report{
		ID:          uuid.NewString(),
		Kind:        in.Kind,
		OwnerUserID: ownerUserID,
		Category:    normTag(in.Category),
		Breeds:      NormTags(in.Breeds),
		Colors:      NormTags(in.Colors),
		Features:    NormTags(in.Features),
		Size:        in.Size,
		Age:         in.Age,
		Gender:      gender,
		Description: strings.TrimSpace(in.Description),
		Coordinate:  in.Coordinate,
		EventDate:   in.EventDate,
		ImageRef:    strings.TrimSpace(in.ImageRef),
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return Report{}, err
	}
	return r, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Report{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Report, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

func (s *Service) ListByKind(ctx context.Context, kind Kind) ([]Report, error) {
	if !kind.Valid() {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByKind(ctx, kind)
}

// UpdateStatus avanza el estado. Kind nunca cambia; status nunca retrocede.
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) (Report, error) {
	id = strings.TrimSpace(id)
	if id == "" || !to.Valid() {
		return Report{}, ErrInvalidInput
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Report{}, err
	}

	if current.Status == to {
		// idempotente
		return current, nil
	}
	if !current.Status.CanTransition(to) {
		return Report{}, ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return Report{}, err
	}

	current.Status = to
	current.UpdatedAt = s.now()
	return current, nil
}

// NormTags normaliza un set de tags: lowercase, trim, sin vacíos ni duplicados.
// El orden no importa para el scoring, pero se preserva el de entrada.
func NormTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, t := range in {
		t = normTag(t)
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

func normTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
