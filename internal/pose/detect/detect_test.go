package detect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/repcoach/internal/pose"
)

func TestMockDetector(t *testing.T) {
	t.Run("returns nil frame by default", func(t *testing.T) {
		mock := NewMockDetector()

		f, err := mock.Detect(nil)

		require.NoError(t, err)
		assert.Nil(t, f)
		assert.Equal(t, 1, mock.Calls())
	})

	t.Run("plays sequence and holds last frame", func(t *testing.T) {
		mock := NewMockDetector()
		a, b := pose.ArmFrame(170), pose.ArmFrame(40)
		mock.SetSequence([]*pose.Frame{a, b})

		got := make([]*pose.Frame, 0, 3)
		for i := 0; i < 3; i++ {
			f, err := mock.Detect(nil)
			require.NoError(t, err)
			got = append(got, f)
		}
		assert.Same(t, a, got[0])
		assert.Same(t, b, got[1])
		assert.Same(t, b, got[2])
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expected := errors.New("detection failed")
		mock.SetError(expected)

		f, err := mock.Detect(nil)

		assert.ErrorIs(t, err, expected)
		assert.Nil(t, f)
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
		assert.NoError(t, NewMockDetector().Close())
	})
}

func TestDecodeServiceResponse(t *testing.T) {
	t.Run("landmarks", func(t *testing.T) {
		f, err := decodeServiceResponse([]byte(`{"landmarks":[{"x":0.5,"y":0.25,"visibility":0.9}]}` + "\n"))
		require.NoError(t, err)
		require.NotNil(t, f)
		assert.Equal(t, pose.Landmark{X: 0.5, Y: 0.25, Visibility: 0.9}, f.Landmarks[0])
	})

	t.Run("no body", func(t *testing.T) {
		f, err := decodeServiceResponse([]byte(`{"landmarks":[]}`))
		require.NoError(t, err)
		assert.Nil(t, f)
	})

	t.Run("service error", func(t *testing.T) {
		_, err := decodeServiceResponse([]byte(`{"error":"model not loaded"}`))
		assert.ErrorContains(t, err, "model not loaded")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := decodeServiceResponse([]byte(`not json`))
		assert.Error(t, err)
	})
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	_, err := NewMediaPipeDetector(Config{Script: "/nonexistent/pose_service.py"}, nil)
	assert.ErrorIs(t, err, ErrDetectorUnavailable)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0.5, cfg.MinConfidence)
	assert.Positive(t, cfg.IdleShutdown)
}
