package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/u5732555133-stack/maintenance-app/internal/auth"
	"github.com/u5732555133-stack/maintenance-app/internal/postgres"
	redisstore "github.com/u5732555133-stack/maintenance-app/internal/redis"
	"github.com/u5732555133-stack/maintenance-app/internal/reminder"
)

// Server bundles the HTTP handlers with their dependencies. The admin
// API sits behind JWT auth; the confirmation endpoints are public and
// guarded only by token possession plus a rate limit.
type Server struct {
	establishments postgres.EstablishmentRepository
	fiches         postgres.FicheRepository
	contacts       postgres.ContactRepository
	users          postgres.UserRepository
	meetings       postgres.MeetingRepository
	history        postgres.HistoryRepository
	tokens         postgres.TokenRepository
	confirmer      *reminder.Confirmer
	issuer         *auth.TokenIssuer
	limiter        redisstore.RateLimiter
	logger         *slog.Logger
}

// NewServer constructs the HTTP server facade.
func NewServer(
	establishments postgres.EstablishmentRepository,
	fiches postgres.FicheRepository,
	contacts postgres.ContactRepository,
	users postgres.UserRepository,
	meetings postgres.MeetingRepository,
	history postgres.HistoryRepository,
	tokens postgres.TokenRepository,
	confirmer *reminder.Confirmer,
	issuer *auth.TokenIssuer,
	limiter redisstore.RateLimiter,
	logger *slog.Logger,
) *Server {
	return &Server{
		establishments: establishments,
		fiches:         fiches,
		contacts:       contacts,
		users:          users,
		meetings:       meetings,
		history:        history,
		tokens:         tokens,
		confirmer:      confirmer,
		issuer:         issuer,
		limiter:        limiter,
		logger:         logger,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(RequestLogger(s.logger))
	r.Use(MaxBodySize(1 << 20)) // 1MB limit

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	// Public confirmation endpoints, reached from reminder emails.
	r.Route("/confirm/{token}", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Get("/", s.handleConfirmPreview)
		r.Post("/", s.handleConfirm)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/auth/me", s.handleMe)

			r.Route("/establishments", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(s.requireSuperAdmin)
					r.Post("/", s.handleCreateEstablishment)
					r.Get("/", s.handleListEstablishments)
					r.Delete("/{id}", s.handleDeleteEstablishment)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Use(s.requireEstablishmentAccess)
					r.Get("/", s.handleGetEstablishment)
					r.Put("/", s.handleUpdateEstablishment)

					r.Route("/fiches", func(r chi.Router) {
						r.Post("/", s.handleCreateFiche)
						r.Get("/", s.handleListFiches)
						r.Get("/{ficheID}", s.handleGetFiche)
						r.Put("/{ficheID}", s.handleUpdateFiche)
						r.Delete("/{ficheID}", s.handleDeleteFiche)
					})

					r.Route("/contacts", func(r chi.Router) {
						r.Post("/", s.handleCreateContact)
						r.Get("/", s.handleListContacts)
						r.Put("/{contactID}", s.handleUpdateContact)
						r.Delete("/{contactID}", s.handleDeleteContact)
					})

					r.Route("/meetings", func(r chi.Router) {
						r.Post("/", s.handleCreateMeeting)
						r.Get("/", s.handleListMeetings)
						r.Put("/{meetingID}", s.handleUpdateMeeting)
						r.Delete("/{meetingID}", s.handleDeleteMeeting)
					})

					r.Get("/history", s.handleListHistory)

					r.Group(func(r chi.Router) {
						r.Use(s.requireSuperAdmin)
						r.Post("/users", s.handleCreateUser)
						r.Get("/users", s.handleListUsers)
						r.Delete("/users/{userID}", s.handleDeleteUser)
					})
				})
			})
		})
	})

	return r
}

// requireEstablishmentAccess rejects tenant-scoped requests for any
// establishment the caller is not bound to.
func (s *Server) requireEstablishmentAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !canAccess(r.Context(), chi.URLParam(r, "id")) {
			writeError(w, http.StatusForbidden, "access to this establishment is denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimit guards the public endpoints against token guessing. Keyed
// by client address; fails open when Redis is down so a cache outage
// never blocks legitimate confirmations.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		ok, err := s.limiter.Allow(r.Context(), r.RemoteAddr)
		if err != nil {
			s.logger.Error("rate limiter", slog.String("error", err.Error()))
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz checks database connectivity through the cheapest query
// the token store offers.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	// A not-found is the healthy answer; anything else means the
	// database is unreachable.
	if _, err := s.tokens.Get(ctx, "__readyz__"); err != nil && !isNotFound(err) {
		writeError(w, http.StatusServiceUnavailable, "database not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
