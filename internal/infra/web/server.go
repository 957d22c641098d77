package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"card-key-service/internal/domain"
	"card-key-service/internal/domain/ports/repository"
	"card-key-service/internal/infra/logging"
	"card-key-service/internal/usecase"
)

// Server wires the public redemption endpoint and the admin API.
type Server struct {
	redemptionUC usecase.RedemptionUseCase
	accountUC    usecase.AccountUseCase
	cardUC       usecase.CardUseCase
	adminUC      usecase.AdminUseCase
	sessions     repository.SessionStore
	auth         *AuthManager
	log          *zerolog.Logger
}

func NewServer(
	redemptionUC usecase.RedemptionUseCase,
	accountUC usecase.AccountUseCase,
	cardUC usecase.CardUseCase,
	adminUC usecase.AdminUseCase,
	sessions repository.SessionStore,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		redemptionUC: redemptionUC,
		accountUC:    accountUC,
		cardUC:       cardUC,
		adminUC:      adminUC,
		sessions:     sessions,
		auth:         auth,
		log:          logger,
	}
}

// Router assembles the route tree.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public redemption endpoint.
	r.Get("/query", s.handleRedeem)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/logout", s.handleLogout)

			r.Get("/accounts", s.handleListAccounts)
			r.Post("/accounts", s.handleAddAccount)
			r.Post("/accounts/{username}/reset_password", s.handleResetPassword)
			r.Delete("/accounts/{username}", s.handleDeleteAccount)

			r.Get("/cards", s.handleListCards)
			r.Post("/cards/batch", s.handleBatchGenerate)
			r.Delete("/cards/{cardKey}", s.handleDeleteCard)

			r.Post("/admin/password", s.handleChangePassword)
		})
	})
	return r
}

// requestID tags every request with a unique ID for log correlation.
// A client-provided X-Request-ID is honored.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.With(r.Context(), s.log).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// authMiddleware validates the JWT and then checks the session is still
// live in the store. Auth is request-scoped: the admin username travels in
// the request context, never in process-global state.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		username, err := s.sessions.Get(r.Context(), claims.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "session expired")
				return
			}
			logging.With(r.Context(), s.log).Error().Err(err).Msg("session lookup failed")
			writeError(w, http.StatusInternalServerError, "try again later")
			return
		}
		if username != claims.Subject {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		ctx := logging.WithAdmin(r.Context(), username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
