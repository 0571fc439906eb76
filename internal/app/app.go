// Package app runs the camera-driven counting pipeline: frames are captured,
// gated by motion, handed to the pose detector and fed to the active session.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/repcoach/internal/capture"
	"github.com/ayusman/repcoach/internal/pose/detect"
	"github.com/ayusman/repcoach/internal/session"
	"github.com/ayusman/repcoach/internal/store"
)

// Pipeline defaults, used when Config leaves a value unset.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while the user is moving.
	ActiveFPS = 15
	// IdleTimeout is how long without motion before dropping back to IdleFPS.
	IdleTimeout = 2 * time.Second
	// MotionThreshold is the default percentage of changed pixels that counts
	// as motion.
	MotionThreshold = 1.0
)

// DropCounter is told about frames superseded before analysis.
type DropCounter interface {
	FrameDropped()
}

// Config holds the application's collaborators and pipeline settings.
type Config struct {
	Coach    *session.Coach
	Detector detect.Detector

	// Camera overrides the device camera, mainly for tests.
	Camera   capture.Camera
	CameraID int

	IdleFPS         int
	ActiveFPS       int
	IdleTimeout     time.Duration
	MotionThreshold float64

	// Store, Preview and Drops are optional.
	Store   *store.Store
	Preview *capture.Preview
	Drops   DropCounter

	Log logrus.FieldLogger
}

// App orchestrates capture, detection and counting.
type App struct {
	config   Config
	coach    *session.Coach
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detect.Detector
	log      logrus.FieldLogger

	mu      sync.RWMutex
	enabled bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates an App. Detection starts disabled.
func New(config Config) *App {
	if config.IdleFPS <= 0 {
		config.IdleFPS = IdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = ActiveFPS
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = IdleTimeout
	}
	if config.MotionThreshold <= 0 {
		config.MotionThreshold = MotionThreshold
	}

	log := config.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}

	cam := config.Camera
	if cam == nil {
		cam = capture.NewCamera(config.CameraID)
	}

	det := config.Detector
	if det == nil {
		det = detect.NewMockDetector()
	}

	return &App{
		config:   config,
		coach:    config.Coach,
		camera:   cam,
		motion:   capture.NewMotionDetector(config.MotionThreshold),
		detector: det,
		log:      log.WithField("component", "app"),
	}
}

// SetEnabled turns frame analysis on or off without closing the camera.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled reports whether frame analysis is on.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// IsRunning reports whether the pipeline goroutines are active.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cancel != nil
}

// Start opens the camera and launches the capture and analysis loops. Starting
// a running App is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.config.IdleFPS)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	frames := NewMailbox(a.dropFrame)
	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.captureLoop(ctx, frames)
	}()
	go func() {
		defer a.wg.Done()
		a.analysisLoop(ctx, frames)
	}()

	a.log.WithFields(logrus.Fields{
		"idle_fps":   a.config.IdleFPS,
		"active_fps": a.config.ActiveFPS,
	}).Info("Detection pipeline started")
	return nil
}

// Stop halts the pipeline and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		a.wg.Wait()
	}

	if err := a.camera.Close(); err != nil {
		a.log.WithError(err).Warn("Error closing camera")
	}
	a.motion.Close()
	if err := a.detector.Close(); err != nil {
		a.log.WithError(err).Warn("Error closing detector")
	}

	a.log.Info("Detection pipeline stopped")
}

// SelectExercise starts a session for id and remembers the choice.
func (a *App) SelectExercise(id string) (session.Snapshot, error) {
	snap, err := a.coach.SelectExercise(id)
	if err != nil {
		return snap, err
	}
	if a.config.Store != nil {
		if err := a.config.Store.Settings().Set(store.KeyLastExercise, id); err != nil {
			a.log.WithError(err).WithField("exercise", id).Warn("Failed to persist exercise selection")
		}
	}
	return snap, nil
}

// RestoreExercise selects preferred, or the last stored selection when
// preferred is empty or unknown. It returns the selected id, or "" when neither
// is available.
func (a *App) RestoreExercise(preferred string) (string, error) {
	candidates := []string{preferred}
	if a.config.Store != nil {
		last, err := a.config.Store.Settings().Get(store.KeyLastExercise)
		switch {
		case err == nil:
			candidates = append(candidates, last)
		case !errors.Is(err, store.ErrNotFound):
			return "", err
		}
	}

	for _, id := range candidates {
		if id == "" {
			continue
		}
		if _, err := a.coach.SelectExercise(id); err != nil {
			a.log.WithError(err).WithField("exercise", id).Warn("Cannot restore exercise")
			continue
		}
		return id, nil
	}
	return "", nil
}

// Coach returns the session coach.
func (a *App) Coach() *session.Coach {
	return a.coach
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Preview returns the preview buffer, or nil when none was configured.
func (a *App) Preview() *capture.Preview {
	return a.config.Preview
}
