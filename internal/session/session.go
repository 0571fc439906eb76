// Package session provides the counting session that turns a stream of pose
// frames into a debounced repetition count, and the Coach that owns the
// active session on behalf of the rest of the application.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/repcoach/internal/counter"
	"github.com/ayusman/repcoach/internal/geometry"
	"github.com/ayusman/repcoach/internal/pose"
	"github.com/ayusman/repcoach/internal/profile"
	"github.com/ayusman/repcoach/internal/signal"
	"github.com/ayusman/repcoach/internal/timeutil"
)

// Options tunes a counting session.
type Options struct {
	// GracePeriod suppresses state evaluation after the session starts.
	GracePeriod time.Duration
	// Debounce is the minimum spacing between two counted repetitions.
	Debounce time.Duration
	// MinVisibility is the confidence a landmark must exceed to be used.
	MinVisibility float64
	// MaxAngleVelocity is the velocity ceiling for angle profiles, in deg/s.
	MaxAngleVelocity float64
	// MaxHeightVelocity is the velocity ceiling for height profiles, in
	// normalized units per second.
	MaxHeightVelocity float64

	Signal signal.Params
}

// DefaultOptions returns the standard engine tuning.
func DefaultOptions() Options {
	return Options{
		GracePeriod:       3 * time.Second,
		Debounce:          time.Second,
		MinVisibility:     0.5,
		MaxAngleVelocity:  500,
		MaxHeightVelocity: 5.0,
		Signal:            signal.DefaultParams(),
	}
}

// tracker is the per-side measurement pipeline.
type tracker struct {
	side    pose.Side
	points  []pose.Index
	cond    *signal.Conditioner
	machine *counter.Machine
}

// Session counts repetitions of one exercise. It is not safe for concurrent
// use; callers serialise ProcessFrame and Reset.
type Session struct {
	id      string
	profile profile.Profile
	opts    Options
	clock   timeutil.Clock

	trackers [2]*tracker

	count     int
	counted   bool
	lastCount time.Time
	started   time.Time
}

// New creates a session for p. The grace period starts immediately.
func New(p profile.Profile, opts Options, clock timeutil.Clock) (*Session, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	s := &Session{
		profile: p.Clone(),
		opts:    opts,
		clock:   clock,
	}
	for _, side := range pose.Sides {
		points, err := p.Landmarks(side)
		if err != nil {
			return nil, err
		}
		s.trackers[side] = &tracker{
			side:    side,
			points:  points,
			cond:    signal.NewConditioner(opts.Signal),
			machine: counter.New(p),
		}
	}
	s.Reset()
	return s, nil
}

// ID identifies the current counting epoch. It changes on every Reset.
func (s *Session) ID() string {
	return s.id
}

// Profile returns the exercise being counted.
func (s *Session) Profile() profile.Profile {
	return s.profile.Clone()
}

// Count returns the number of counted repetitions.
func (s *Session) Count() int {
	return s.count
}

// Reset zeroes the counter, clears both sides and restarts the grace period.
func (s *Session) Reset() {
	s.id = uuid.NewString()
	s.count = 0
	s.counted = false
	s.lastCount = time.Time{}
	s.started = s.clock.Now()
	for _, t := range s.trackers {
		t.cond.Reset()
		t.machine.Reset()
	}
}

// Warming reports whether the session is still inside its grace period.
func (s *Session) Warming() bool {
	return s.clock.Since(s.started) < s.opts.GracePeriod
}

// ProcessFrame runs one frame through both sides and returns the result.
// A nil or empty frame leaves all state unchanged.
func (s *Session) ProcessFrame(frame *pose.Frame) Output {
	now := s.clock.Now()
	warming := now.Sub(s.started) < s.opts.GracePeriod

	out := Output{
		Exercise:  s.profile.ID,
		SessionID: s.id,
		Warming:   warming,
		Detected:  !frame.Empty(),
		Timestamp: now,
	}

	var values []float64
	for _, t := range s.trackers {
		so, counted := s.step(t, frame, now, warming)
		if so.Value != nil {
			values = append(values, *so.Value)
		}
		out.Counted = out.Counted || counted
		if t.side == pose.Left {
			out.Left = so
		} else {
			out.Right = so
		}
	}
	if len(values) > 0 {
		out.Value = stat.Mean(values, nil)
	}

	out.Count = s.count
	out.PoseState = Aggregate(out.Left.State, out.Right.State)
	out.Phase = out.PoseState.Phase()

	switch {
	case !out.Detected:
		out.Status = StatusNoPose
		out.Feedback = []Feedback{noPersonFeedback}
	case warming:
		out.Status = StatusInitializing
		out.Feedback = []Feedback{{Level: LevelWarning, Message: "initializing detection, get into position"}}
	case out.Counted:
		out.Status = StatusCounted
		out.Feedback = []Feedback{{Level: LevelSuccess, Message: fmt.Sprintf("rep %d", s.count)}}
	default:
		out.Status = StatusTracking
		out.Feedback = []Feedback{{Level: LevelInfo, Message: s.profile.Name + " tracking"}}
	}

	return out
}

// step measures, conditions and evaluates one side. It reports whether a
// repetition was counted.
func (s *Session) step(t *tracker, frame *pose.Frame, now time.Time, warming bool) (SideOutput, bool) {
	so := SideOutput{State: t.machine.State()}

	pts, ok := frame.Visible(s.opts.MinVisibility, t.points...)
	if !ok {
		return so, false
	}

	var raw, ceiling float64
	switch s.profile.Kind {
	case profile.KindHeight:
		raw = geometry.VerticalOffset(pts[0], pts[1])
		ceiling = s.opts.MaxHeightVelocity
	default:
		raw = geometry.Angle(pts[0], pts[1], pts[2])
		ceiling = s.opts.MaxAngleVelocity
	}

	smoothed, accepted := t.cond.Sample(raw, now, ceiling)
	so.Visible = true
	so.Raw = float(raw)
	so.Value = float(smoothed)

	if warming {
		return so, false
	}
	if !accepted {
		so.Rejected = true
		return so, false
	}

	tr := t.machine.Step(smoothed)
	so.State = t.machine.State()
	if tr != counter.ToEnd {
		return so, false
	}
	return so, s.increment(now)
}

// increment counts a repetition unless one was counted less than the debounce
// interval ago. The first repetition is always accepted.
func (s *Session) increment(now time.Time) bool {
	if s.counted && now.Sub(s.lastCount) < s.opts.Debounce {
		return false
	}
	s.count++
	s.counted = true
	s.lastCount = now
	return true
}

// Snapshot is a point-in-time view of a session's state.
type Snapshot struct {
	ID        string        `json:"session_id"`
	Exercise  string        `json:"exercise"`
	Name      string        `json:"name"`
	Count     int           `json:"count"`
	Left      counter.State `json:"left_state"`
	Right     counter.State `json:"right_state"`
	PoseState PoseState     `json:"pose_state"`
	Warming   bool          `json:"warming"`
	Buffered  int           `json:"buffered"`
	StartedAt time.Time     `json:"started_at"`
}

// Snapshot returns the session's current state.
func (s *Session) Snapshot() Snapshot {
	left, right := s.trackers[pose.Left], s.trackers[pose.Right]
	return Snapshot{
		ID:        s.id,
		Exercise:  s.profile.ID,
		Name:      s.profile.Name,
		Count:     s.count,
		Left:      left.machine.State(),
		Right:     right.machine.State(),
		PoseState: Aggregate(left.machine.State(), right.machine.State()),
		Warming:   s.Warming(),
		Buffered:  left.cond.Len() + right.cond.Len(),
		StartedAt: s.started,
	}
}
