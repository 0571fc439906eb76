// Package geometry measures joint angles and vertical offsets between pose landmarks.
package geometry

import (
	"math"

	"github.com/ayusman/repcoach/internal/pose"
)

// Angle returns the angle in degrees at vertex p2 between the rays p2->p1 and
// p2->p3, folded into [0,180]. The result is symmetric in p1 and p3.
//
// Coincident points do not fail: atan2(0,0) is 0, so a degenerate ray simply
// yields whatever angle the other ray makes with the x axis. NaN inputs yield NaN.
func Angle(p1, p2, p3 pose.Landmark) float64 {
	radians := math.Atan2(p3.Y-p2.Y, p3.X-p2.X) - math.Atan2(p1.Y-p2.Y, p1.X-p2.X)
	angle := math.Abs(radians * 180.0 / math.Pi)

	if angle > 180.0 {
		angle = 360 - angle
	}

	return angle
}

// VerticalOffset returns p2.Y - p1.Y in normalized frame units. Image y grows
// downward, so a positive result means p2 sits below p1.
func VerticalOffset(p1, p2 pose.Landmark) float64 {
	return p2.Y - p1.Y
}
