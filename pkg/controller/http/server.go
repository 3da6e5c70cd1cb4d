package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/usecase"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
)

// DefaultClinicianHeader carries the clinician identity set by the
// authenticating proxy in front of the dashboard
const DefaultClinicianHeader = "X-Forwarded-Email"

type Server struct {
	router          *chi.Mux
	uc              *usecase.UseCases
	cancerTypes     []model.CancerType
	clinicianHeader string
	secureCookie    bool
}

type Options func(*Server)

// WithCancerTypes sets the roster filter options
func WithCancerTypes(types []model.CancerType) Options {
	return func(s *Server) {
		s.cancerTypes = types
	}
}

func WithClinicianHeader(header string) Options {
	return func(s *Server) {
		s.clinicianHeader = header
	}
}

// WithSecureCookie marks the session cookie Secure
func WithSecureCookie(secure bool) Options {
	return func(s *Server) {
		s.secureCookie = secure
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:          r,
		uc:              uc,
		cancerTypes:     model.DefaultCancerTypes(),
		clinicianHeader: DefaultClinicianHeader,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(sessionMiddleware(uc.Sessions, s.clinicianHeader, s.secureCookie))

		r.Get("/insights", s.insightsHandler)
		r.Get("/cancer-types", s.cancerTypesHandler)
		r.Get("/notifications", s.notificationsHandler)
		r.Get("/export", s.exportHandler)

		r.Route("/patients", func(r chi.Router) {
			r.Get("/", s.rosterHandler)
			r.Post("/refresh", s.rosterRefreshHandler)
			r.Get("/{patientID}", s.patientDetailHandler)
			r.Get("/{patientID}/trend", s.patientTrendHandler)
		})

		r.Route("/submissions/{submissionID}", func(r chi.Router) {
			r.Put("/draft", s.draftHandler)
			r.Post("/save", s.saveHandler)
		})

		r.Delete("/session", s.sessionDeleteHandler)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger attaches a logger carrying the request ID to the context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
