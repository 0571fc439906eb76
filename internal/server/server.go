// Package server exposes the counting engine over HTTP: exercise selection,
// session control, landmark frame submission, live feedback over WebSocket and
// the camera preview stream.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/repcoach/internal/capture"
	"github.com/ayusman/repcoach/internal/session"
)

// ExerciseSelector starts a session for an exercise id. Both *session.Coach
// and *app.App satisfy it; the latter also remembers the choice.
type ExerciseSelector interface {
	SelectExercise(id string) (session.Snapshot, error)
}

// DetectionToggle switches camera analysis on and off.
type DetectionToggle interface {
	SetEnabled(enabled bool)
	IsEnabled() bool
}

// Config holds the server configuration. Coach is required; everything else
// is optional and disables the matching routes when nil.
type Config struct {
	Coach     *session.Coach
	Selector  ExerciseSelector
	Detection DetectionToggle
	Preview   *capture.Preview
	Feedback  *Hub
	Metrics   http.Handler
	StaticDir string
	Log       logrus.FieldLogger
}

// Server represents the HTTP server for the application.
type Server struct {
	config Config
	log    logrus.FieldLogger
	router chi.Router
	start  time.Time
	http   *http.Server
}

// New creates a new Server with all routes configured.
func New(config Config) *Server {
	if config.Selector == nil {
		config.Selector = config.Coach
	}
	log := config.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}

	s := &Server{
		config: config,
		log:    log.WithField("component", "server"),
		router: chi.NewRouter(),
		start:  time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/exercises", s.handleListExercises)
		r.Get("/exercises/{id}", s.handleGetExercise)

		r.Get("/session", s.handleGetSession)
		r.Post("/session", s.handleSelectExercise)
		r.Delete("/session", s.handleClearExercise)
		r.Post("/session/reset", s.handleResetSession)
		r.Get("/session/count", s.handleCount)

		r.Post("/frames", s.handleFrame)

		if s.config.Detection != nil {
			r.Get("/detection", s.handleGetDetection)
			r.Put("/detection", s.handleSetDetection)
		}
		if s.config.Feedback != nil {
			r.Get("/feedback", s.config.Feedback.ServeHTTP)
		}
		if s.config.Preview != nil {
			r.Get("/stream", NewStreamHandler(s.config.Preview).ServeHTTP)
		}
	})

	if s.config.Metrics != nil {
		s.router.Handle("/metrics", s.config.Metrics)
	}

	if s.config.StaticDir != "" {
		s.router.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.WithField("addr", addr).Info("HTTP server listening")

	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the listener and closes live feedback connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.config.Feedback != nil {
		s.config.Feedback.Close()
	}
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
