package pose

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexNames(t *testing.T) {
	t.Run("round trips every landmark", func(t *testing.T) {
		for i := Index(0); i < NumLandmarks; i++ {
			got, ok := ParseIndex(i.Name())
			require.True(t, ok, "landmark %d", i)
			assert.Equal(t, i, got)
		}
	})

	t.Run("parse is case insensitive", func(t *testing.T) {
		got, ok := ParseIndex(" left_elbow ")
		require.True(t, ok)
		assert.Equal(t, LeftElbow, got)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, ok := ParseIndex("LEFT_TAIL")
		assert.False(t, ok)
	})

	t.Run("out of range index has no name", func(t *testing.T) {
		assert.Empty(t, Index(NumLandmarks).Name())
		assert.Empty(t, Index(-1).Name())
	})

	t.Run("fixed positions", func(t *testing.T) {
		assert.Equal(t, Index(11), LeftShoulder)
		assert.Equal(t, Index(16), RightWrist)
		assert.Equal(t, Index(32), RightFootIndex)
	})
}

func TestMirror(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"LEFT_SHOULDER", "RIGHT_SHOULDER"},
		{"left_wrist", "RIGHT_WRIST"},
		{"LEFT_FOOT_INDEX", "RIGHT_FOOT_INDEX"},
		{"NOSE", "NOSE"},
		{"MOUTH_LEFT", "MOUTH_LEFT"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Mirror(tt.in))
			_, ok := ParseIndex(Mirror(tt.in))
			assert.True(t, ok)
		})
	}
}

func TestFrame_At(t *testing.T) {
	f := &Frame{Landmarks: []Landmark{{X: 0.1, Y: 0.2, Visibility: 0.9}}}

	lm, ok := f.At(Nose)
	require.True(t, ok)
	assert.Equal(t, 0.1, lm.X)

	_, ok = f.At(LeftEye)
	assert.False(t, ok, "short frames report missing entries")

	var nilFrame *Frame
	_, ok = nilFrame.At(Nose)
	assert.False(t, ok)
	assert.True(t, nilFrame.Empty())
}

func TestFrame_Visible(t *testing.T) {
	f := StandingFrame()

	t.Run("all visible", func(t *testing.T) {
		pts, ok := f.Visible(0.5, LeftShoulder, LeftElbow, LeftWrist)
		require.True(t, ok)
		assert.Len(t, pts, 3)
	})

	t.Run("visibility at threshold is rejected", func(t *testing.T) {
		low := WithVisibility(f, 0.5, LeftElbow)
		_, ok := low.Visible(0.5, LeftShoulder, LeftElbow, LeftWrist)
		assert.False(t, ok)
	})

	t.Run("non-finite coordinates are rejected", func(t *testing.T) {
		bad := WithVisibility(f, 0.99)
		bad.Landmarks[LeftWrist].X = math.NaN()
		_, ok := bad.Visible(0.5, LeftWrist)
		assert.False(t, ok)
	})
}

func TestFixtures(t *testing.T) {
	t.Run("standing frame is complete", func(t *testing.T) {
		f := StandingFrame()
		require.Len(t, f.Landmarks, NumLandmarks)
		for i, lm := range f.Landmarks {
			assert.Greater(t, lm.Visibility, 0.5, "landmark %s", Index(i))
		}
	})

	t.Run("wrist height offset", func(t *testing.T) {
		f := WristHeightFrame(-0.1)
		assert.InDelta(t, f.Landmarks[LeftShoulder].Y-0.1, f.Landmarks[LeftWrist].Y, 1e-9)
		assert.InDelta(t, f.Landmarks[RightShoulder].Y-0.1, f.Landmarks[RightWrist].Y, 1e-9)
	})

	t.Run("with visibility copies", func(t *testing.T) {
		f := StandingFrame()
		low := WithVisibility(f, 0.3)
		assert.Equal(t, fixtureOK, f.Landmarks[Nose].Visibility)
		assert.Equal(t, 0.3, low.Landmarks[Nose].Visibility)
	})
}
