package reports

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-reunite/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/reports", func(rr chi.Router) {
		rr.Post("/", createReportHandler(svc))
		rr.Get("/{reportID}", getReportHandler(svc))
		rr.Patch("/{reportID}/status", updateStatusHandler(svc))
	})

	// Mis reportes (owner)
	r.Get("/me/reports", listMyReportsHandler(svc))
}

type coordinateDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type createReportRequest struct {
	Kind        string         `json:"kind"`
	Category    string         `json:"category"`
	Breeds      []string       `json:"breeds"`
	Colors      []string       `json:"colors"`
	Features    []string       `json:"features"`
	Size        string         `json:"size"`
	Age         string         `json:"age"`
	Gender      string         `json:"gender"`
	Description string         `json:"description"`
	Coordinate  *coordinateDTO `json:"coordinate"`
	EventDate   string         `json:"event_date"` // YYYY-MM-DD opcional
	ImageRef    string         `json:"image_ref"`
}

type reportResponse struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	OwnerUserID string         `json:"owner_user_id"`
	Category    string         `json:"category"`
	Breeds      []string       `json:"breeds"`
	Colors      []string       `json:"colors"`
	Features    []string       `json:"features"`
	Size        string         `json:"size,omitempty"`
	Age         string         `json:"age,omitempty"`
	Gender      string         `json:"gender"`
	Description string         `json:"description"`
	Coordinate  *coordinateDTO `json:"coordinate,omitempty"`
	EventDate   *time.Time     `json:"event_date,omitempty"`
	ImageRef    string         `json:"image_ref"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func createReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		dec := json.NewDecoder(r.Body)
		// Rechazamos campos desconocidos acá, para no arrastrar shapes sueltos al scoring.
		dec.DisallowUnknownFields()

		var req createReportRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var ed *time.Time
		if strings.TrimSpace(req.EventDate) != "" {
			t, err := time.Parse("2006-01-02", req.EventDate)
			if err != nil {
				http.Error(w, "event_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			ed = &t
		}

		var coord *Coordinate
		if req.Coordinate != nil {
			coord = &Coordinate{Lat: req.Coordinate.Lat, Lon: req.Coordinate.Lon}
		}

		rep, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Kind:        Kind(strings.TrimSpace(req.Kind)),
			Category:    req.Category,
			Breeds:      req.Breeds,
			Colors:      req.Colors,
			Features:    req.Features,
			Size:        SizeClass(strings.TrimSpace(req.Size)),
			Age:         AgeClass(strings.TrimSpace(req.Age)),
			Gender:      Gender(strings.TrimSpace(req.Gender)),
			Description: req.Description,
			Coordinate:  coord,
			EventDate:   ed,
			ImageRef:    req.ImageRef,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toReportResponse(rep))
	}
}

func getReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rep, err := svc.GetByID(r.Context(), chi.URLParam(r, "reportID"))
		if err != nil {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toReportResponse(rep))
	}
}

func listMyReportsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]reportResponse, 0, len(items))
		for _, rep := range items {
			out = append(out, toReportResponse(rep))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// updateStatusHandler solo permite avanzar estado y solo al owner.
func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		reportID := chi.URLParam(r, "reportID")
		current, err := svc.GetByID(r.Context(), reportID)
		if err != nil {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		if current.OwnerUserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.UpdateStatus(r.Context(), reportID, Status(strings.TrimSpace(req.Status)))
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrInvalidTransition):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "report not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toReportResponse(updated))
	}
}

func toReportResponse(r Report) reportResponse {
	var coord *coordinateDTO
	if r.Coordinate != nil {
		coord = &coordinateDTO{Lat: r.Coordinate.Lat, Lon: r.Coordinate.Lon}
	}
	return reportResponse{
		ID:          r.ID,
		Kind:        string(r.Kind),
		OwnerUserID: r.OwnerUserID,
		Category:    r.Category,
		Breeds:      r.Breeds,
		Colors:      r.Colors,
		Features:    r.Features,
		Size:        string(r.Size),
		Age:         string(r.Age),
		Gender:      string(r.Gender),
		Description: r.Description,
		Coordinate:  coord,
		EventDate:   r.EventDate,
		ImageRef:    r.ImageRef,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// (reports/matching) para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
