package session

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/repcoach/internal/pose"
	"github.com/ayusman/repcoach/internal/profile"
	"github.com/ayusman/repcoach/internal/timeutil"
)

// ErrNoSession is returned by operations that need a selected exercise.
var ErrNoSession = errors.New("no exercise selected")

// Observer is notified after every processed frame, outside the Coach's lock.
type Observer interface {
	FrameProcessed(out Output, elapsed time.Duration)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(out Output, elapsed time.Duration)

// FrameProcessed calls f.
func (f ObserverFunc) FrameProcessed(out Output, elapsed time.Duration) {
	f(out, elapsed)
}

// Coach owns the single active counting session and serialises access to it.
type Coach struct {
	registry *profile.Registry
	opts     Options
	clock    timeutil.Clock
	log      logrus.FieldLogger

	mu        sync.Mutex
	session   *Session
	observers []Observer
}

// NewCoach creates a Coach with no exercise selected.
func NewCoach(registry *profile.Registry, opts Options, clock timeutil.Clock, log logrus.FieldLogger) *Coach {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Coach{
		registry: registry,
		opts:     opts,
		clock:    clock,
		log:      log,
	}
}

// AddObserver registers o for frame notifications.
func (c *Coach) AddObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// Profiles lists the exercises that can be selected.
func (c *Coach) Profiles() []profile.Profile {
	return c.registry.List()
}

// SelectExercise starts a new session for id, discarding the previous one.
// An unknown id returns profile.ErrUnknownProfile and keeps the previous
// session.
func (c *Coach) SelectExercise(id string) (Snapshot, error) {
	p, err := c.registry.Lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	s, err := New(p, c.opts, c.clock)
	if err != nil {
		return Snapshot{}, err
	}

	c.mu.Lock()
	c.session = s
	snap := s.Snapshot()
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"exercise":   id,
		"session_id": snap.ID,
	}).Info("Exercise selected")
	return snap, nil
}

// ClearExercise stops counting. Frames then receive general posture feedback.
func (c *Coach) ClearExercise() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	c.log.Info("Exercise cleared")
}

// Reset zeroes the active session.
func (c *Coach) Reset() (Snapshot, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return Snapshot{}, ErrNoSession
	}
	prev := c.session.Count()
	c.session.Reset()
	snap := c.session.Snapshot()
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"exercise":   snap.Exercise,
		"session_id": snap.ID,
		"previous":   prev,
	}).Info("Session reset")
	return snap, nil
}

// CurrentCount returns the active session's count, or 0 with no session.
func (c *Coach) CurrentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return 0
	}
	return c.session.Count()
}

// Exercise returns the selected profile.
func (c *Coach) Exercise() (profile.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return profile.Profile{}, false
	}
	return c.session.Profile(), true
}

// Snapshot returns the active session's state.
func (c *Coach) Snapshot() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Snapshot{}, ErrNoSession
	}
	return c.session.Snapshot(), nil
}

// ProcessFrame feeds frame to the active session. With no exercise selected it
// returns posture feedback only.
func (c *Coach) ProcessFrame(frame *pose.Frame) Output {
	began := c.clock.Now()

	c.mu.Lock()
	var out Output
	if c.session != nil {
		out = c.session.ProcessFrame(frame)
	} else {
		out = c.idleOutput(frame, began)
	}
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	if out.Counted {
		c.log.WithFields(logrus.Fields{
			"exercise":   out.Exercise,
			"session_id": out.SessionID,
			"count":      out.Count,
		}).Info("Rep counted")
	}

	elapsed := c.clock.Since(began)
	for _, o := range observers {
		o.FrameProcessed(out, elapsed)
	}
	return out
}

func (c *Coach) idleOutput(frame *pose.Frame, now time.Time) Output {
	out := Output{
		PoseState: PoseUnknown,
		Phase:     PoseUnknown.Phase(),
		Detected:  !frame.Empty(),
		Status:    StatusIdle,
		Feedback:  AssessPosture(frame, c.opts.MinVisibility),
		Timestamp: now,
	}
	if !out.Detected {
		out.Status = StatusNoPose
	}
	return out
}
