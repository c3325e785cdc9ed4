package http

import (
	"log/slog"
	"net/http"

	"github.com/badyy8/Ardiin-erh/internal/storage"
)

// summaryResponse is the dashboard header: dataset provenance plus the
// year's headline numbers.
type summaryResponse struct {
	Year        int               `json:"year"`
	TotalRows   int               `json:"total_rows"`
	Customers   int               `json:"customers"`
	TotalPoints float64           `json:"total_points"`
	LatestRun   *storage.RunStats `json:"latest_run,omitempty"`
	RewardStats any               `json:"reward_stats"`
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	years, err := s.analytics.Years(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list years", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list years")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"years": years})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	bundle := s.bundleForRequest(w, r)
	if bundle == nil {
		return
	}

	run, err := s.analytics.LatestRun(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load run stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load run stats")
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Year:        bundle.Year,
		TotalRows:   bundle.TotalRows,
		Customers:   bundle.Customers,
		TotalPoints: bundle.TotalPoints,
		LatestRun:   run,
		RewardStats: bundle.RewardStats,
	})
}

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	bundle := s.bundleForRequest(w, r)
	if bundle == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":           bundle.Year,
		"segment_counts": bundle.SegmentCounts,
		"segments":       bundle.Segments,
	})
}

func (s *Server) handleThresholds(w http.ResponseWriter, r *http.Request) {
	bundle := s.bundleForRequest(w, r)
	if bundle == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":       bundle.Year,
		"thresholds": bundle.Thresholds,
	})
}

func (s *Server) handleMovers(w http.ResponseWriter, r *http.Request) {
	bundle := s.bundleForRequest(w, r)
	if bundle == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":   bundle.Year,
		"movers": bundle.Movers,
	})
}

func (s *Server) handleCodeGroups(w http.ResponseWriter, r *http.Request) {
	bundle := s.bundleForRequest(w, r)
	if bundle == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":           bundle.Year,
		"group_volumes":  bundle.GroupVolumes,
		"codes_by_group": bundle.CodesByGroup,
	})
}

func (s *Server) handleCodes(w http.ResponseWriter, r *http.Request) {
	bundle := s.bundleForRequest(w, r)
	if bundle == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":    bundle.Year,
		"codes":   bundle.CodeSummaries,
		"profile": bundle.Profile,
	})
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	bundle := s.bundleForRequest(w, r)
	if bundle == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":    bundle.Year,
		"buckets": bundle.Buckets,
		"cutoffs": bundle.Cutoffs,
	})
}

func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	bundle := s.bundleForRequest(w, r)
	if bundle == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":       bundle.Year,
		"milestones": bundle.Milestones,
	})
}
