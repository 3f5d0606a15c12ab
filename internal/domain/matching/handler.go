package matching

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-reunite/internal/domain/reports"
	"pet-reunite/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, engine *Engine, reportsSvc *reports.Service) {
	// Auto-match sincrónico al momento del submit (lo dispara el owner).
	r.Post("/reports/{reportID}/match", scoreAndMatchHandler(engine, reportsSvc))

	// Búsqueda on-demand: lista completa rankeada, sin persistencia.
	r.Get("/matches/search", searchHandler(engine, reportsSvc))
}

type matchRecordResponse struct {
	ID            string    `json:"id"`
	LostReportID  string    `json:"lost_report_id"`
	FoundReportID string    `json:"found_report_id"`
	Confidence    float64   `json:"confidence"`
	CreatedAt     time.Time `json:"created_at"`
}

type matchOutcomeResponse struct {
	Accepted []matchRecordResponse `json:"accepted"`
	Warnings []string              `json:"warnings"`
}

type candidateSignalsResponse struct {
	Visual   *float64 `json:"visual"`
	Semantic *float64 `json:"semantic"`
	Geo      *float64 `json:"geo"`
	Metadata *float64 `json:"metadata"`
}

type candidateResponse struct {
	ReportID   string                   `json:"report_id"`
	Category   string                   `json:"category"`
	Breeds     []string                 `json:"breeds"`
	Colors     []string                 `json:"colors"`
	Confidence float64                  `json:"confidence"`
	DistanceKm *float64                 `json:"distance_km,omitempty"`
	Signals    candidateSignalsResponse `json:"signals"`
	Degraded   bool                     `json:"degraded"`
}

func scoreAndMatchHandler(engine *Engine, reportsSvc *reports.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		reportID := chi.URLParam(r, "reportID")
		rep, err := reportsSvc.GetByID(r.Context(), reportID)
		if err != nil {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		if rep.OwnerUserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		outcome, err := engine.ScoreAndMatch(r.Context(), reportID)
		if err != nil {
			switch {
			case errors.Is(err, ErrQueryNotFound):
				http.Error(w, "report not found", http.StatusNotFound)
			case errors.Is(err, ErrQueryNoImage):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				// Falla de persistencia: no fingimos éxito.
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		resp := matchOutcomeResponse{
			Accepted: make([]matchRecordResponse, 0, len(outcome.Accepted)),
			Warnings: outcome.Warnings,
		}
		if resp.Warnings == nil {
			resp.Warnings = []string{}
		}
		for _, rec := range outcome.Accepted {
			resp.Accepted = append(resp.Accepted, toMatchRecordResponse(rec))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func searchHandler(engine *Engine, reportsSvc *reports.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		reportID := strings.TrimSpace(r.URL.Query().Get("report_id"))
		if reportID == "" {
			http.Error(w, "report_id is required", http.StatusBadRequest)
			return
		}
		if _, err := reportsSvc.GetByID(r.Context(), reportID); err != nil {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}

		crit := SearchCriteria{ReportID: reportID}
		if v := r.URL.Query().Get("radius_km"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f <= 0 {
				http.Error(w, "radius_km must be a positive number", http.StatusBadRequest)
				return
			}
			crit.RadiusKm = f
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			crit.Limit = n
		}

		cands, err := engine.Search(r.Context(), crit)
		if err != nil {
			switch {
			case errors.Is(err, ErrQueryNotFound):
				http.Error(w, "report not found", http.StatusNotFound)
			case errors.Is(err, ErrQueryNoImage):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		out := make([]candidateResponse, 0, len(cands))
		for _, c := range cands {
			out = append(out, toCandidateResponse(c))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func toMatchRecordResponse(rec MatchRecord) matchRecordResponse {
	return matchRecordResponse{
		ID:            rec.ID,
		LostReportID:  rec.LostReportID,
		FoundReportID: rec.FoundReportID,
		Confidence:    rec.Confidence,
		CreatedAt:     rec.CreatedAt,
	}
}

func toCandidateResponse(c MatchCandidate) candidateResponse {
	return candidateResponse{
		ReportID:   c.Report.ID,
		Category:   c.Report.Category,
		Breeds:     c.Report.Breeds,
		Colors:     c.Report.Colors,
		Confidence: c.Confidence,
		DistanceKm: c.DistanceKm,
		Signals: candidateSignalsResponse{
			Visual:   c.Visual.ValueOrNil(),
			Semantic: c.Semantic.ValueOrNil(),
			Geo:      c.Geo.ValueOrNil(),
			Metadata: c.Metadata.ValueOrNil(),
		},
		Degraded: c.Degraded,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// (reports/matching) para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
