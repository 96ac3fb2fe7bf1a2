package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
)

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var c domain.Contact
	if err := decodeJSON(r, &c); err != nil {
		writeDomainError(w, err)
		return
	}
	c.EstablishmentID = chi.URLParam(r, "id")
	if strings.TrimSpace(c.LastName) == "" {
		writeDomainError(w, &domain.ValidationError{Field: "last_name", Reason: "is required"})
		return
	}
	if err := s.contacts.Create(r.Context(), &c); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, &c)
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	out, err := s.contacts.ListByEstablishment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")
	existing, err := s.contacts.GetByID(r.Context(), contactID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if existing.EstablishmentID != chi.URLParam(r, "id") {
		writeDomainError(w, &domain.ContactNotFoundError{ContactID: contactID})
		return
	}

	var c domain.Contact
	if err := decodeJSON(r, &c); err != nil {
		writeDomainError(w, err)
		return
	}
	c.ID = existing.ID
	c.EstablishmentID = existing.EstablishmentID
	if strings.TrimSpace(c.LastName) == "" {
		writeDomainError(w, &domain.ValidationError{Field: "last_name", Reason: "is required"})
		return
	}
	if err := s.contacts.Update(r.Context(), &c); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &c)
}

// handleDeleteContact removes the contact. Fiches referencing it keep
// the dangling ID; the scanner treats unresolvable references as absent.
func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")
	existing, err := s.contacts.GetByID(r.Context(), contactID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if existing.EstablishmentID != chi.URLParam(r, "id") {
		writeDomainError(w, &domain.ContactNotFoundError{ContactID: contactID})
		return
	}
	if err := s.contacts.Delete(r.Context(), contactID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
