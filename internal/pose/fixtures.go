package pose

import "math"

// Fixture geometry, in normalized image coordinates. The body faces the camera,
// so the person's left side appears on the image's right.
const (
	upperArm  = 0.15
	forearm   = 0.15
	thigh     = 0.2
	shin      = 0.2
	fixtureOK = 0.99
)

// StandingFrame returns a fully visible upright pose with both arms hanging
// straight and both legs straight.
func StandingFrame() *Frame {
	f := &Frame{Landmarks: make([]Landmark, NumLandmarks)}

	set := func(i Index, x, y float64) {
		f.Landmarks[i] = Landmark{X: x, Y: y, Visibility: fixtureOK}
	}

	set(Nose, 0.5, 0.12)
	set(LeftEyeInner, 0.51, 0.1)
	set(LeftEye, 0.52, 0.1)
	set(LeftEyeOuter, 0.53, 0.1)
	set(RightEyeInner, 0.49, 0.1)
	set(RightEye, 0.48, 0.1)
	set(RightEyeOuter, 0.47, 0.1)
	set(LeftEar, 0.55, 0.11)
	set(RightEar, 0.45, 0.11)
	set(MouthLeft, 0.52, 0.15)
	set(MouthRight, 0.48, 0.15)

	set(LeftShoulder, 0.6, 0.25)
	set(RightShoulder, 0.4, 0.25)
	set(LeftHip, 0.57, 0.55)
	set(RightHip, 0.43, 0.55)

	setLimb(f, LeftShoulder, LeftElbow, LeftWrist, upperArm, forearm, 180, 1)
	setLimb(f, RightShoulder, RightElbow, RightWrist, upperArm, forearm, 180, -1)
	setLimb(f, LeftHip, LeftKnee, LeftAnkle, thigh, shin, 180, 1)
	setLimb(f, RightHip, RightKnee, RightAnkle, thigh, shin, 180, -1)

	for _, side := range []struct {
		wrist, pinky, index, thumb Index
		ankle, heel, foot          Index
		dir                        float64
	}{
		{LeftWrist, LeftPinky, LeftIndex, LeftThumb, LeftAnkle, LeftHeel, LeftFootIndex, 1},
		{RightWrist, RightPinky, RightIndex, RightThumb, RightAnkle, RightHeel, RightFootIndex, -1},
	} {
		w := f.Landmarks[side.wrist]
		set(side.pinky, w.X+0.01*side.dir, w.Y+0.03)
		set(side.index, w.X, w.Y+0.04)
		set(side.thumb, w.X-0.01*side.dir, w.Y+0.03)
		a := f.Landmarks[side.ankle]
		set(side.heel, a.X, a.Y+0.02)
		set(side.foot, a.X+0.03*side.dir, a.Y+0.03)
	}

	return f
}

// ArmFrame returns a standing pose with both elbows bent to the given angle in
// degrees (180 = straight arm hanging down, smaller = more flexed).
func ArmFrame(angle float64) *Frame {
	return ArmsFrame(angle, angle)
}

// ArmsFrame is ArmFrame with an independent angle per side.
func ArmsFrame(left, right float64) *Frame {
	f := StandingFrame()
	setLimb(f, LeftShoulder, LeftElbow, LeftWrist, upperArm, forearm, left, 1)
	setLimb(f, RightShoulder, RightElbow, RightWrist, upperArm, forearm, right, -1)
	return f
}

// KneeFrame returns a standing pose with both knees bent to the given angle.
func KneeFrame(angle float64) *Frame {
	f := StandingFrame()
	setLimb(f, LeftHip, LeftKnee, LeftAnkle, thigh, shin, angle, 1)
	setLimb(f, RightHip, RightKnee, RightAnkle, thigh, shin, angle, -1)
	return f
}

// WristHeightFrame returns a standing pose with both wrists placed offset below
// their shoulder (negative offset = above the shoulder).
func WristHeightFrame(offset float64) *Frame {
	f := StandingFrame()
	for _, pair := range [][2]Index{{LeftShoulder, LeftWrist}, {RightShoulder, RightWrist}} {
		sh := f.Landmarks[pair[0]]
		f.Landmarks[pair[1]].Y = sh.Y + offset
	}
	return f
}

// WithVisibility returns a copy of f with the visibility of the listed
// landmarks (or all landmarks when none are listed) replaced by v.
func WithVisibility(f *Frame, v float64, indices ...Index) *Frame {
	out := &Frame{Landmarks: append([]Landmark(nil), f.Landmarks...)}
	if len(indices) == 0 {
		for i := range out.Landmarks {
			out.Landmarks[i].Visibility = v
		}
		return out
	}
	for _, i := range indices {
		if int(i) < len(out.Landmarks) {
			out.Landmarks[i].Visibility = v
		}
	}
	return out
}

// setLimb places joint and end so that the angle at joint between root and end
// equals angle degrees. The segment root->joint hangs straight down and the end
// swings outward (dir=+1 toward image right, -1 toward image left).
func setLimb(f *Frame, root, joint, end Index, upper, lower, angle, dir float64) {
	r := f.Landmarks[root]
	j := Landmark{X: r.X, Y: r.Y + upper, Visibility: fixtureOK}

	rad := angle * math.Pi / 180
	e := Landmark{
		X:          j.X + dir*lower*math.Sin(rad),
		Y:          j.Y - lower*math.Cos(rad),
		Visibility: fixtureOK,
	}

	f.Landmarks[joint] = j
	f.Landmarks[end] = e
}
