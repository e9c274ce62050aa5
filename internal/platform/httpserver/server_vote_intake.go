package httpserver

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	httpadapter "voteflow/contexts/voting/vote-intake/adapters/http"
	intakeerrors "voteflow/contexts/voting/vote-intake/domain/errors"
	intakehttp "voteflow/contexts/voting/vote-intake/transport/http"
)

const maxVoteBodyBytes = 1 << 12

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCastVoteRequest(w, r)
	if err != nil {
		writeIntakeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	resp, err := s.intake.Handler.CastVoteHandler(r.Context(), voterIDFromCookie(r), req)
	if err != nil {
		s.writeIntakeDomainError(w, err)
		return
	}
	setVoterCookie(w, resp.VoterID)
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	resp, err := s.intake.Handler.OptionsHandler(r.Context(), voterIDFromCookie(r))
	if err != nil {
		s.writeIntakeDomainError(w, err)
		return
	}
	setVoterCookie(w, resp.VoterID)
	writeJSON(w, http.StatusOK, resp)
}

// decodeCastVoteRequest accepts a JSON body or a classic form post.
func decodeCastVoteRequest(w http.ResponseWriter, r *http.Request) (intakehttp.CastVoteRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxVoteBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req intakehttp.CastVoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return intakehttp.CastVoteRequest{}, errors.New("request body must be valid json")
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return intakehttp.CastVoteRequest{}, errors.New("request form could not be parsed")
	}
	return intakehttp.CastVoteRequest{Vote: r.PostFormValue("vote")}, nil
}

func voterIDFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(httpadapter.VoterCookie)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

func setVoterCookie(w http.ResponseWriter, voterID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpadapter.VoterCookie,
		Value:    voterID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeIntakeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, intakehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) writeIntakeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, intakeerrors.ErrInvalidChoice):
		writeIntakeError(w, http.StatusBadRequest, "invalid_vote", err.Error())
	case errors.Is(err, intakeerrors.ErrQueueUnavailable):
		writeIntakeError(w, http.StatusServiceUnavailable, "queue_unavailable", "vote queue is unavailable, retry later")
	default:
		s.logger.Error("vote intake request failed",
			"event", "http_vote_intake_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeIntakeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
