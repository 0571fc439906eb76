// Package detect runs pose estimation on camera frames and reports the
// landmarks of the tracked body.
package detect

import (
	"errors"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/repcoach/internal/pose"
)

// ErrDetectorUnavailable is returned when no pose estimation backend can be started.
var ErrDetectorUnavailable = errors.New("pose detector unavailable")

// Detector defines the interface for pose estimation backends.
type Detector interface {
	// Detect analyzes a video frame and returns the landmarks of the tracked body.
	// Returns nil when no body is visible.
	Detect(frame *gocv.Mat) (*pose.Frame, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// Script is the path of the pose estimation service script. Empty means search
	// the usual install locations.
	Script string

	// Python is the interpreter used to run Script. Empty means prefer a venv.
	Python string

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// IdleShutdown stops the backend process after this long without frames.
	IdleShutdown time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence: 0.5,
		IdleShutdown:  30 * time.Second,
	}
}
