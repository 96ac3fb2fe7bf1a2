package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
)

func validateMeeting(m *domain.Meeting) error {
	if strings.TrimSpace(m.Name) == "" {
		return &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	if m.Weekday < 0 || m.Weekday > 6 {
		return &domain.ValidationError{Field: "weekday", Reason: "must be between 0 (Sunday) and 6 (Saturday)"}
	}
	return nil
}

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	var m domain.Meeting
	if err := decodeJSON(r, &m); err != nil {
		writeDomainError(w, err)
		return
	}
	m.EstablishmentID = chi.URLParam(r, "id")
	if err := validateMeeting(&m); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.meetings.Create(r.Context(), &m); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, &m)
}

func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	out, err := s.meetings.ListByEstablishment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "meetingID")
	existing, err := s.meetings.GetByID(r.Context(), meetingID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if existing.EstablishmentID != chi.URLParam(r, "id") {
		writeDomainError(w, &domain.MeetingNotFoundError{MeetingID: meetingID})
		return
	}

	var m domain.Meeting
	if err := decodeJSON(r, &m); err != nil {
		writeDomainError(w, err)
		return
	}
	m.ID = existing.ID
	m.EstablishmentID = existing.EstablishmentID
	if err := validateMeeting(&m); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.meetings.Update(r.Context(), &m); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &m)
}

func (s *Server) handleDeleteMeeting(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "meetingID")
	existing, err := s.meetings.GetByID(r.Context(), meetingID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if existing.EstablishmentID != chi.URLParam(r, "id") {
		writeDomainError(w, &domain.MeetingNotFoundError{MeetingID: meetingID})
		return
	}
	if err := s.meetings.Delete(r.Context(), meetingID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
