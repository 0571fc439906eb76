package session

import (
	"time"

	"github.com/ayusman/repcoach/internal/counter"
)

// PoseState is the combined left/right state label.
type PoseState string

const (
	PoseStart      PoseState = "start"
	PoseEnd        PoseState = "end"
	PoseTransition PoseState = "transition"
	// PoseUnknown is reported when no exercise is being tracked.
	PoseUnknown PoseState = "unknown"
)

// Phase is the presentation name of a PoseState.
func (s PoseState) Phase() string {
	switch s {
	case PoseEnd:
		return "up"
	case PoseStart:
		return "down"
	case PoseTransition:
		return "transition"
	}
	return "unknown"
}

// Aggregate combines the two side states: end wins over start, and anything
// else is a transition.
func Aggregate(left, right counter.State) PoseState {
	switch {
	case left == counter.End || right == counter.End:
		return PoseEnd
	case left == counter.Start || right == counter.Start:
		return PoseStart
	}
	return PoseTransition
}

// Level grades a feedback message.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
)

// Feedback is one human-readable hint attached to a frame result.
type Feedback struct {
	Level    Level  `json:"level"`
	Message  string `json:"message"`
	BodyPart string `json:"body_part,omitempty"`
}

// Status strings.
const (
	StatusInitializing = "initializing"
	StatusTracking     = "tracking"
	StatusCounted      = "rep counted"
	StatusNoPose       = "no pose detected"
	StatusIdle         = "no exercise selected"
)

// SideOutput is the per-side part of a frame result.
type SideOutput struct {
	// Raw is the measured angle or offset, nil when the side was not visible.
	Raw *float64 `json:"raw"`
	// Value is the smoothed measurement, nil when the side was not visible.
	Value    *float64      `json:"value"`
	State    counter.State `json:"state"`
	Visible  bool          `json:"visible"`
	Rejected bool          `json:"rejected"`
}

// Output is the result of processing one frame.
type Output struct {
	// Value is the mean of the side values measured this frame, 0 if none.
	Value     float64    `json:"value"`
	Left      SideOutput `json:"left"`
	Right     SideOutput `json:"right"`
	PoseState PoseState  `json:"pose_state"`
	Phase     string     `json:"phase"`
	Count     int        `json:"count"`
	// Counted is set on the frame whose transition incremented Count.
	Counted   bool       `json:"counted"`
	Status    string     `json:"status"`
	Warming   bool       `json:"warming"`
	Detected  bool       `json:"detected"`
	Feedback  []Feedback `json:"feedback"`
	Exercise  string     `json:"exercise,omitempty"`
	SessionID string     `json:"session_id,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

func float(v float64) *float64 {
	return &v
}
