package session

import (
	"math"

	"github.com/ayusman/repcoach/internal/geometry"
	"github.com/ayusman/repcoach/internal/pose"
)

const (
	straightLimb   = 150.0
	levelTolerance = 0.05
)

var noPersonFeedback = Feedback{Level: LevelWarning, Message: "no person detected, adjust your position"}

var limbs = []struct {
	part, name string
	a, b, c    pose.Index
}{
	{"left_arm", "left arm", pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist},
	{"right_arm", "right arm", pose.RightShoulder, pose.RightElbow, pose.RightWrist},
	{"left_leg", "left leg", pose.LeftHip, pose.LeftKnee, pose.LeftAnkle},
	{"right_leg", "right leg", pose.RightHip, pose.RightKnee, pose.RightAnkle},
}

// AssessPosture returns general form hints for a frame when no exercise is
// being counted: bent limbs and uneven shoulders or hips.
func AssessPosture(frame *pose.Frame, minVisibility float64) []Feedback {
	if frame.Empty() {
		return []Feedback{noPersonFeedback}
	}

	var fb []Feedback
	for _, l := range limbs {
		pts, ok := frame.Visible(minVisibility, l.a, l.b, l.c)
		if !ok {
			continue
		}
		if geometry.Angle(pts[0], pts[1], pts[2]) < straightLimb {
			fb = append(fb, Feedback{
				Level:    LevelWarning,
				Message:  "straighten your " + l.name,
				BodyPart: l.part,
			})
		}
	}

	if pts, ok := frame.Visible(minVisibility, pose.LeftShoulder, pose.RightShoulder, pose.LeftHip, pose.RightHip); ok {
		shoulders := math.Abs(pts[0].Y - pts[1].Y)
		hips := math.Abs(pts[2].Y - pts[3].Y)
		if shoulders > levelTolerance || hips > levelTolerance {
			fb = append(fb, Feedback{
				Level:    LevelWarning,
				Message:  "keep your shoulders and hips level",
				BodyPart: "balance",
			})
		} else {
			fb = append(fb, Feedback{Level: LevelSuccess, Message: "balance good", BodyPart: "balance"})
		}
	}

	if len(fb) == 0 {
		fb = append(fb, Feedback{Level: LevelInfo, Message: "pose looks fine", BodyPart: "general"})
	}
	return fb
}
