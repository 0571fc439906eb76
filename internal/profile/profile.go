// Package profile provides exercise detection recipes and the read-only
// registry the counting engine looks them up in.
package profile

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/repcoach/internal/pose"
)

var (
	// ErrUnknownProfile is returned when an exercise id is not in the registry.
	ErrUnknownProfile = errors.New("unknown exercise profile")
	// ErrMalformedProfile is returned when a profile fails validation.
	ErrMalformedProfile = errors.New("malformed exercise profile")
)

// Kind is the measurement a profile tracks.
type Kind string

const (
	// KindAngle measures the joint angle at the second of three points.
	KindAngle Kind = "angle"
	// KindHeight measures the vertical offset of the second point from the first.
	KindHeight Kind = "height"
)

// PointCount returns how many landmark references the kind requires, or 0 for
// an unknown kind.
func (k Kind) PointCount() int {
	switch k {
	case KindAngle:
		return 3
	case KindHeight:
		return 2
	}
	return 0
}

// Operator is a threshold comparison.
type Operator string

const (
	Less         Operator = "<"
	Greater      Operator = ">"
	LessEqual    Operator = "<="
	GreaterEqual Operator = ">="
)

// Valid reports whether o is a known comparison.
func (o Operator) Valid() bool {
	switch o {
	case Less, Greater, LessEqual, GreaterEqual:
		return true
	}
	return false
}

// Compare reports whether value satisfies "value o threshold". Unknown
// operators never match.
func (o Operator) Compare(value, threshold float64) bool {
	switch o {
	case Less:
		return value < threshold
	case Greater:
		return value > threshold
	case LessEqual:
		return value <= threshold
	case GreaterEqual:
		return value >= threshold
	}
	return false
}

// Condition is an operator-qualified threshold.
type Condition struct {
	Operator Operator `json:"operator" yaml:"operator"`
	Value    float64  `json:"value" yaml:"value"`
}

// Met reports whether value satisfies the condition.
func (c Condition) Met(value float64) bool {
	return c.Operator.Compare(value, c.Value)
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %g", c.Operator, c.Value)
}

// Profile is the detection recipe for one exercise.
//
// Points are always left-side landmark names; the right side is derived with
// pose.Mirror. Start is the resting threshold and End the peak threshold.
// For angle profiles the comparisons are fixed to Start "<" and End ">", and
// only the threshold values are read.
type Profile struct {
	ID     string    `json:"id" yaml:"id"`
	Name   string    `json:"name" yaml:"name"`
	Kind   Kind      `json:"kind" yaml:"kind"`
	Points []string  `json:"points" yaml:"points"`
	Start  Condition `json:"start" yaml:"start"`
	End    Condition `json:"end" yaml:"end"`
}

// Validate checks the profile for structural errors. All errors wrap
// ErrMalformedProfile.
func (p Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedProfile)
	}

	want := p.Kind.PointCount()
	if want == 0 {
		return fmt.Errorf("%w: %s: unknown kind %q", ErrMalformedProfile, p.ID, p.Kind)
	}
	if len(p.Points) != want {
		return fmt.Errorf("%w: %s: %s detection needs %d points, got %d",
			ErrMalformedProfile, p.ID, p.Kind, want, len(p.Points))
	}

	for _, side := range pose.Sides {
		if _, err := p.Landmarks(side); err != nil {
			return err
		}
	}

	for _, c := range []struct {
		name string
		cond Condition
	}{{"start", p.Start}, {"end", p.End}} {
		if math.IsNaN(c.cond.Value) || math.IsInf(c.cond.Value, 0) {
			return fmt.Errorf("%w: %s: %s threshold is not finite", ErrMalformedProfile, p.ID, c.name)
		}
		if c.cond.Operator == "" && p.Kind == KindAngle {
			continue
		}
		if !c.cond.Operator.Valid() {
			return fmt.Errorf("%w: %s: %s operator %q", ErrMalformedProfile, p.ID, c.name, c.cond.Operator)
		}
	}

	return nil
}

// Landmarks resolves the profile's points for the given side.
func (p Profile) Landmarks(side pose.Side) ([]pose.Index, error) {
	out := make([]pose.Index, 0, len(p.Points))
	for _, name := range p.Points {
		if side == pose.Right {
			name = pose.Mirror(name)
		}
		idx, ok := pose.ParseIndex(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown landmark %q", ErrMalformedProfile, p.ID, name)
		}
		out = append(out, idx)
	}
	return out, nil
}

// Conditions returns the start and end conditions the state machine applies.
// Angle profiles use the fixed "<"/">" pair with the configured values.
func (p Profile) Conditions() (start, end Condition) {
	if p.Kind == KindAngle {
		return Condition{Operator: Less, Value: p.Start.Value}, Condition{Operator: Greater, Value: p.End.Value}
	}
	return p.Start, p.End
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	p.Points = append([]string(nil), p.Points...)
	return p
}
