package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/repcoach/internal/pose"
	"github.com/ayusman/repcoach/internal/profile"
	"github.com/ayusman/repcoach/internal/session"
)

// maxFrameBytes bounds a submitted landmark frame.
const maxFrameBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.config.Coach.Profiles())
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	for _, p := range s.config.Coach.Profiles() {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", profile.ErrUnknownProfile, id))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.config.Coach.Snapshot()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type selectRequest struct {
	Exercise string `json:"exercise"`
}

func (s *Server) handleSelectExercise(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}
	if req.Exercise == "" {
		writeError(w, http.StatusBadRequest, errors.New("exercise is required"))
		return
	}

	snap, err := s.config.Selector.SelectExercise(req.Exercise)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleClearExercise(w http.ResponseWriter, r *http.Request) {
	s.config.Coach.ClearExercise()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.config.Coach.Reset()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	p, ok := s.config.Coach.Exercise()
	if !ok {
		writeSessionError(w, session.ErrNoSession)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"exercise": p.ID,
		"count":    s.config.Coach.CurrentCount(),
	})
}

// handleFrame runs one landmark frame, in the JSON form the pose detector
// emits, through the active session.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	var frame pose.Frame
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFrameBytes)).Decode(&frame); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}
	if n := len(frame.Landmarks); n > pose.NumLandmarks {
		writeError(w, http.StatusBadRequest, fmt.Errorf("too many landmarks: %d > %d", n, pose.NumLandmarks))
		return
	}

	writeJSON(w, http.StatusOK, s.config.Coach.ProcessFrame(&frame))
}

func (s *Server) handleGetDetection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": s.config.Detection.IsEnabled()})
}

func (s *Server) handleSetDetection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, errors.New("enabled is required"))
		return
	}

	s.config.Detection.SetEnabled(*req.Enabled)
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": s.config.Detection.IsEnabled()})
}

// writeSessionError maps engine sentinels to HTTP statuses.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profile.ErrUnknownProfile):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, session.ErrNoSession):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
