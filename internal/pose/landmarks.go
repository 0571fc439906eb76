// Package pose provides body landmark types and pose detection interfaces for repetition counting.
package pose

import (
	"math"
	"strings"
)

// Index identifies one of the 33 body landmarks following the MediaPipe Pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
type Index int

const (
	Nose Index = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex
)

// NumLandmarks is the number of landmarks in a full pose frame.
const NumLandmarks = 33

var names = [NumLandmarks]string{
	"NOSE",
	"LEFT_EYE_INNER",
	"LEFT_EYE",
	"LEFT_EYE_OUTER",
	"RIGHT_EYE_INNER",
	"RIGHT_EYE",
	"RIGHT_EYE_OUTER",
	"LEFT_EAR",
	"RIGHT_EAR",
	"MOUTH_LEFT",
	"MOUTH_RIGHT",
	"LEFT_SHOULDER",
	"RIGHT_SHOULDER",
	"LEFT_ELBOW",
	"RIGHT_ELBOW",
	"LEFT_WRIST",
	"RIGHT_WRIST",
	"LEFT_PINKY",
	"RIGHT_PINKY",
	"LEFT_INDEX",
	"RIGHT_INDEX",
	"LEFT_THUMB",
	"RIGHT_THUMB",
	"LEFT_HIP",
	"RIGHT_HIP",
	"LEFT_KNEE",
	"RIGHT_KNEE",
	"LEFT_ANKLE",
	"RIGHT_ANKLE",
	"LEFT_HEEL",
	"RIGHT_HEEL",
	"LEFT_FOOT_INDEX",
	"RIGHT_FOOT_INDEX",
}

// Name returns the upper-snake landmark name, e.g. "LEFT_ELBOW".
func (i Index) Name() string {
	if i < 0 || int(i) >= NumLandmarks {
		return ""
	}
	return names[i]
}

func (i Index) String() string {
	return i.Name()
}

// ParseIndex resolves a landmark name such as "LEFT_ELBOW" to its index.
// Matching is case-insensitive.
func ParseIndex(name string) (Index, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range names {
		if n == upper {
			return Index(i), true
		}
	}
	return 0, false
}

// Side selects the left or right half of the body.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Sides lists both sides in evaluation order.
var Sides = [2]Side{Left, Right}

// Mirror maps a left-side landmark name onto the right side by swapping the
// LEFT_ prefix. Names without the prefix are returned unchanged.
func Mirror(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if rest, ok := strings.CutPrefix(upper, "LEFT_"); ok {
		return "RIGHT_" + rest
	}
	return upper
}

// Landmark is a single body point in normalized image coordinates.
// X and Y are in [0,1] with Y growing downward; Visibility is the model's
// confidence in [0,1].
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility"`
}

// Finite reports whether both coordinates are real numbers.
func (l Landmark) Finite() bool {
	return !math.IsNaN(l.X) && !math.IsNaN(l.Y) && !math.IsInf(l.X, 0) && !math.IsInf(l.Y, 0)
}

// Frame holds the landmarks reported for one tracked body in one camera frame,
// ordered by Index. Short slices are tolerated; missing entries are absent.
type Frame struct {
	Landmarks []Landmark `json:"landmarks"`
}

// At returns the landmark at index i and whether it is present.
func (f *Frame) At(i Index) (Landmark, bool) {
	if f == nil || i < 0 || int(i) >= len(f.Landmarks) {
		return Landmark{}, false
	}
	return f.Landmarks[i], true
}

// Empty reports whether the frame carries no landmarks at all.
func (f *Frame) Empty() bool {
	return f == nil || len(f.Landmarks) == 0
}

// Visible returns the landmarks at the given indices when every one of them is
// present, finite and strictly more visible than minVisibility.
func (f *Frame) Visible(minVisibility float64, indices ...Index) ([]Landmark, bool) {
	out := make([]Landmark, 0, len(indices))
	for _, idx := range indices {
		lm, ok := f.At(idx)
		if !ok || lm.Visibility <= minVisibility || !lm.Finite() {
			return nil, false
		}
		out = append(out, lm)
	}
	return out, true
}
