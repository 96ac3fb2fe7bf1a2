package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeDomainError maps domain error types onto HTTP status codes.
// Expired tokens get 410 so the confirmation page can distinguish "this
// link is stale" from "this link never existed".
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		vErr       *domain.ValidationError
		expErr     *domain.TokenExpiredError
		tokErr     *domain.TokenNotFoundError
		ficheErr   *domain.FicheNotFoundError
		estErr     *domain.EstablishmentNotFoundError
		contactErr *domain.ContactNotFoundError
		userErr    *domain.UserNotFoundError
		meetErr    *domain.MeetingNotFoundError
	)
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &expErr):
		writeError(w, http.StatusGone, expErr.Error())
	case errors.As(err, &tokErr),
		errors.As(err, &ficheErr),
		errors.As(err, &estErr),
		errors.As(err, &contactErr),
		errors.As(err, &userErr),
		errors.As(err, &meetErr):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isNotFound(err error) bool {
	var tokErr *domain.TokenNotFoundError
	return errors.As(err, &tokErr)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &domain.ValidationError{Field: "body", Reason: "invalid JSON"}
	}
	return nil
}
