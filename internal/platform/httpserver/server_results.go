package httpserver

import (
	"errors"
	"net/http"

	httpadapter "voteflow/contexts/voting/results-service/adapters/http"
	resultserrors "voteflow/contexts/voting/results-service/domain/errors"
	resultshttp "voteflow/contexts/voting/results-service/transport/http"
)

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refreshLimiter != nil && !s.refreshLimiter.Allow() {
		if s.onRefreshThrottled != nil {
			s.onRefreshThrottled()
		}
		w.Header().Set("Retry-After", "1")
		writeResultsError(w, http.StatusTooManyRequests, "rate_limited", "too many refresh requests")
		return
	}

	resp, err := s.results.Handler.RefreshHandler(r.Context())
	if err != nil {
		s.writeResultsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.results.Handler.StatsHandler(r.Context())
	if err != nil {
		s.writeResultsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	resp, err := s.results.Handler.ExportHandler(r.Context())
	if err != nil {
		s.writeResultsDomainError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+httpadapter.ExportFilename+`"`)
	writeJSON(w, http.StatusOK, resp)
}

func writeResultsError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, resultshttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) writeResultsDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, resultserrors.ErrStoreUnavailable):
		writeResultsError(w, http.StatusServiceUnavailable, "store_unavailable", "vote store is unavailable, retry later")
	default:
		s.logger.Error("results request failed",
			"event", "http_results_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeResultsError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
