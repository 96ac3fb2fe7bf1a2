package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
)

// ConfirmPreviewResponse tells the confirmation page what it is about
// to confirm, before the user commits a completion date.
type ConfirmPreviewResponse struct {
	FicheName string    `json:"fiche_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConfirmRequest is the JSON body for POST /confirm/{token}.
type ConfirmRequest struct {
	CompletionDate string `json:"completion_date"` // YYYY-MM-DD
	Comment        string `json:"comment,omitempty"`
}

// handleConfirmPreview handles GET /confirm/{token}. Read-only: the
// token is looked up but never consumed, so refreshing the page is safe.
func (s *Server) handleConfirmPreview(w http.ResponseWriter, r *http.Request) {
	tok, err := s.tokens.Get(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if tok.Expired(time.Now().UTC()) {
		writeDomainError(w, &domain.TokenExpiredError{Token: tok.Token, ExpiredAt: tok.ExpiresAt})
		return
	}
	writeJSON(w, http.StatusOK, ConfirmPreviewResponse{
		FicheName: tok.FicheName,
		ExpiresAt: tok.ExpiresAt,
	})
}

// handleConfirm handles POST /confirm/{token}.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	var completed time.Time
	if req.CompletionDate != "" {
		var err error
		completed, err = time.ParseInLocation("2006-01-02", req.CompletionDate, time.UTC)
		if err != nil {
			writeDomainError(w, &domain.ValidationError{Field: "completion_date", Reason: "must be YYYY-MM-DD"})
			return
		}
	}

	receipt, err := s.confirmer.Confirm(r.Context(), chi.URLParam(r, "token"), completed, req.Comment)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
