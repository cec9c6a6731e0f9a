package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/xdraft/internal/app"
)

type Server struct {
	logger  zerolog.Logger
	players *app.PlayersService
	status  *app.StatusService
	// metrics est optionnel (nil => pas de /metrics).
	metrics http.Handler
	origins []string
}

func NewServer(logger zerolog.Logger, players *app.PlayersService, status *app.StatusService, metrics http.Handler, allowedOrigins []string) *Server {
	return &Server{logger: logger, players: players, status: status, metrics: metrics, origins: allowedOrigins}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout))
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Get("/openapi.json", s.handleOpenAPI)

		if s.status != nil {
			r.Get("/status", s.handleStatus)
		}
		if s.players != nil {
			NewPlayersHandler(s.players).Routes(r)
		}
	})

	return r
}
