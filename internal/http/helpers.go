package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/badyy8/Ardiin-erh/internal/services"
)

var errInvalidYear = errors.New("invalid year parameter")

// errorResponse is the JSON body of every non-2xx API response.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// yearParam resolves the requested year from the query string, falling back
// to the most recent year in the dataset when the parameter is absent.
func yearParam(r *http.Request, analytics *services.AnalyticsService) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return analytics.LatestYear(r.Context())
	}

	year, err := strconv.Atoi(raw)
	if err != nil || year < 2000 || year > 2100 {
		return 0, errInvalidYear
	}
	return year, nil
}

// bundleForRequest is the shared front half of every per-year handler:
// method check, year resolution, bundle fetch. A nil bundle means the
// response has already been written.
func (s *Server) bundleForRequest(w http.ResponseWriter, r *http.Request) *services.YearBundle {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return nil
	}

	year, err := yearParam(r, s.analytics)
	if err != nil {
		if errors.Is(err, errInvalidYear) {
			writeError(w, http.StatusBadRequest, "invalid year parameter")
			return nil
		}
		slog.ErrorContext(r.Context(), "Failed to resolve year", "error", err)
		writeError(w, http.StatusNotFound, "no dataset loaded")
		return nil
	}

	bundle, err := s.analytics.YearBundle(r.Context(), year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build bundle", "year", year, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute analytics")
		return nil
	}
	return bundle
}
