package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"osint-challenge-service/internal/app"
	"osint-challenge-service/internal/logger"
)

// RouterConfig carries the transport-level settings.
type RouterConfig struct {
	AllowedOrigins []string
	Identity       *Identity
	Logger         *logger.Logger
}

// NewRouter mounts the HTTP API and the websocket endpoint.
func NewRouter(service *app.ChallengeService, cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	identity := cfg.Identity
	if identity == nil {
		identity = NewIdentity("", "")
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h := NewHandler(service, log)
	ws := NewWSHandler(service, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Learner"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware)

		r.Get("/challenges", h.listChallenges)
		r.Route("/challenges/{challengeID}", func(r chi.Router) {
			r.Get("/questions", h.questions)
			r.Post("/attempts", h.openAttempt)
			r.Route("/attempts/{attemptID}", func(r chi.Router) {
				r.Get("/", h.progress)
				r.Delete("/", h.discardAttempt)
				r.Post("/answers", h.submitAnswer)
			})
		})
		r.Get("/certificates", h.certificates)
		r.Get("/ws", ws.ServeWS)
	})
	return r
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
