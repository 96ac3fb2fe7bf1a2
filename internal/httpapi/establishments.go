package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
)

func (s *Server) handleCreateEstablishment(w http.ResponseWriter, r *http.Request) {
	var e domain.Establishment
	if err := decodeJSON(r, &e); err != nil {
		writeDomainError(w, err)
		return
	}
	if strings.TrimSpace(e.Name) == "" {
		writeDomainError(w, &domain.ValidationError{Field: "name", Reason: "is required"})
		return
	}
	if err := s.establishments.Create(r.Context(), &e); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, &e)
}

func (s *Server) handleListEstablishments(w http.ResponseWriter, r *http.Request) {
	out, err := s.establishments.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetEstablishment(w http.ResponseWriter, r *http.Request) {
	e, err := s.establishments.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateEstablishment(w http.ResponseWriter, r *http.Request) {
	var e domain.Establishment
	if err := decodeJSON(r, &e); err != nil {
		writeDomainError(w, err)
		return
	}
	e.ID = chi.URLParam(r, "id")
	if strings.TrimSpace(e.Name) == "" {
		writeDomainError(w, &domain.ValidationError{Field: "name", Reason: "is required"})
		return
	}
	if err := s.establishments.Update(r.Context(), &e); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &e)
}

func (s *Server) handleDeleteEstablishment(w http.ResponseWriter, r *http.Request) {
	if err := s.establishments.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
