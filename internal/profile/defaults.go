package profile

// Built-in exercise categories, grouped by the dominant joint of the movement.
const (
	ElbowDominant    = "elbow_dominant"
	ShoulderDominant = "shoulder_dominant"
	KneeDominant     = "knee_dominant"
	HipDominant      = "hip_dominant"
	CoreDominant     = "core_dominant"
)

// Defaults returns the built-in profiles.
func Defaults() []Profile {
	return []Profile{
		{
			ID:     ElbowDominant,
			Name:   "Elbow dominant (curls, extensions)",
			Kind:   KindAngle,
			Points: []string{"LEFT_SHOULDER", "LEFT_ELBOW", "LEFT_WRIST"},
			Start:  Condition{Operator: Less, Value: 60},
			End:    Condition{Operator: Greater, Value: 140},
		},
		{
			ID:     ShoulderDominant,
			Name:   "Shoulder dominant (presses, raises)",
			Kind:   KindHeight,
			Points: []string{"LEFT_SHOULDER", "LEFT_WRIST"},
			Start:  Condition{Operator: Less, Value: -0.2},
			End:    Condition{Operator: Greater, Value: 0.02},
		},
		{
			ID:     KneeDominant,
			Name:   "Knee dominant (squats, lunges)",
			Kind:   KindAngle,
			Points: []string{"LEFT_HIP", "LEFT_KNEE", "LEFT_ANKLE"},
			Start:  Condition{Operator: Less, Value: 90},
			End:    Condition{Operator: Greater, Value: 160},
		},
		{
			ID:     HipDominant,
			Name:   "Hip dominant (deadlifts, hinges)",
			Kind:   KindAngle,
			Points: []string{"LEFT_SHOULDER", "LEFT_HIP", "LEFT_KNEE"},
			Start:  Condition{Operator: Less, Value: 120},
			End:    Condition{Operator: Greater, Value: 170},
		},
		{
			ID:     CoreDominant,
			Name:   "Core dominant (sit-ups, crunches)",
			Kind:   KindAngle,
			Points: []string{"LEFT_SHOULDER", "LEFT_HIP", "LEFT_KNEE"},
			Start:  Condition{Operator: Less, Value: 100},
			End:    Condition{Operator: Greater, Value: 160},
		},
	}
}

// DefaultRegistry builds a registry from Defaults followed by extra, so extra
// profiles override built-ins with the same id.
func DefaultRegistry(extra ...Profile) (*Registry, error) {
	return NewRegistry(append(Defaults(), extra...)...)
}
