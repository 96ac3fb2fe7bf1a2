package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
)

func validateFiche(f *domain.Fiche) error {
	if strings.TrimSpace(f.Name) == "" {
		return &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	if f.PeriodicityMonths <= 0 {
		return &domain.ValidationError{Field: "periodicity_months", Reason: "must be a positive number of months"}
	}
	if f.NextDue.IsZero() {
		return &domain.ValidationError{Field: "next_due", Reason: "is required"}
	}
	return nil
}

func (s *Server) handleCreateFiche(w http.ResponseWriter, r *http.Request) {
	var f domain.Fiche
	if err := decodeJSON(r, &f); err != nil {
		writeDomainError(w, err)
		return
	}
	f.EstablishmentID = chi.URLParam(r, "id")
	f.NextDue = domain.Day(f.NextDue)
	f.Status = domain.StatusPending
	if err := validateFiche(&f); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.fiches.Create(r.Context(), &f); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, &f)
}

func (s *Server) handleListFiches(w http.ResponseWriter, r *http.Request) {
	out, err := s.fiches.ListByEstablishment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetFiche(w http.ResponseWriter, r *http.Request) {
	f, failed := s.getOwnedFiche(w, r)
	if f == nil || failed {
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// handleUpdateFiche replaces the mutable fields of a fiche. Moving
// next_due by hand resets the status to PENDING: the schedule changed,
// so any outstanding notification no longer describes it.
func (s *Server) handleUpdateFiche(w http.ResponseWriter, r *http.Request) {
	existing, failed := s.getOwnedFiche(w, r)
	if existing == nil || failed {
		return
	}

	var f domain.Fiche
	if err := decodeJSON(r, &f); err != nil {
		writeDomainError(w, err)
		return
	}
	f.ID = existing.ID
	f.EstablishmentID = existing.EstablishmentID
	f.NextDue = domain.Day(f.NextDue)
	f.CreatedAt = existing.CreatedAt
	f.LastCompleted = existing.LastCompleted
	f.LastSentAt = existing.LastSentAt

	if err := validateFiche(&f); err != nil {
		writeDomainError(w, err)
		return
	}

	if !f.NextDue.Equal(existing.NextDue) {
		f.Status = domain.StatusPending
	} else if !f.Status.Valid() {
		f.Status = existing.Status
	}

	if err := s.fiches.Update(r.Context(), &f); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &f)
}

func (s *Server) handleDeleteFiche(w http.ResponseWriter, r *http.Request) {
	f, failed := s.getOwnedFiche(w, r)
	if f == nil || failed {
		return
	}
	if err := s.fiches.Delete(r.Context(), f.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getOwnedFiche loads the fiche from the URL and verifies it belongs to
// the establishment in the URL. A fiche from another tenant answers 404
// rather than 403 so IDs cannot be probed across tenants. The bool is
// true when a response was already written.
func (s *Server) getOwnedFiche(w http.ResponseWriter, r *http.Request) (*domain.Fiche, bool) {
	ficheID := chi.URLParam(r, "ficheID")
	f, err := s.fiches.GetByID(r.Context(), ficheID)
	if err != nil {
		writeDomainError(w, err)
		return nil, true
	}
	if f.EstablishmentID != chi.URLParam(r, "id") {
		writeDomainError(w, &domain.FicheNotFoundError{FicheID: ficheID})
		return nil, true
	}
	return f, false
}
