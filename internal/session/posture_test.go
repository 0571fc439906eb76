package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/repcoach/internal/pose"
)

func TestAssessPosture(t *testing.T) {
	t.Run("straight and level", func(t *testing.T) {
		fb := AssessPosture(pose.StandingFrame(), 0.5)
		require.Len(t, fb, 1)
		assert.Equal(t, Feedback{Level: LevelSuccess, Message: "balance good", BodyPart: "balance"}, fb[0])
	})

	t.Run("bent knees", func(t *testing.T) {
		fb := AssessPosture(pose.KneeFrame(100), 0.5)
		require.Len(t, fb, 3)
		assert.Equal(t, "left_leg", fb[0].BodyPart)
		assert.Equal(t, "right_leg", fb[1].BodyPart)
		assert.Equal(t, LevelWarning, fb[0].Level)
	})

	t.Run("uneven shoulders", func(t *testing.T) {
		f := pose.StandingFrame()
		for _, i := range []pose.Index{pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist} {
			f.Landmarks[i].Y += 0.08
		}
		fb := AssessPosture(f, 0.5)
		require.Len(t, fb, 1)
		assert.Equal(t, LevelWarning, fb[0].Level)
		assert.Equal(t, "balance", fb[0].BodyPart)
	})

	t.Run("nothing confident enough", func(t *testing.T) {
		fb := AssessPosture(pose.WithVisibility(pose.StandingFrame(), 0.3), 0.5)
		require.Len(t, fb, 1)
		assert.Equal(t, "general", fb[0].BodyPart)
		assert.Equal(t, LevelInfo, fb[0].Level)
	})

	t.Run("no person", func(t *testing.T) {
		fb := AssessPosture(&pose.Frame{}, 0.5)
		require.Len(t, fb, 1)
		assert.Equal(t, noPersonFeedback, fb[0])
	})
}
