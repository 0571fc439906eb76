package testdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/repcoach/internal/profile"
	"github.com/ayusman/repcoach/internal/session"
	"github.com/ayusman/repcoach/internal/timeutil"
)

func TestLoadSequence(t *testing.T) {
	seq, err := LoadSequence("curl_three_reps")
	require.NoError(t, err)

	assert.Equal(t, profile.ElbowDominant, seq.Exercise)
	assert.Equal(t, 67*time.Millisecond, seq.Interval())
	assert.Equal(t, 3, seq.ExpectedReps)
	require.NotEmpty(t, seq.Frames)
	assert.Len(t, seq.Frames[0].Landmarks, 33)
}

func TestLoadSequence_Missing(t *testing.T) {
	_, err := LoadSequence("juggling")
	assert.Error(t, err)
}

// Every recording, replayed through a default-tuned session, yields exactly
// its expected repetition count.
func TestSequences_Replay(t *testing.T) {
	names, err := Sequences()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	reg, err := profile.DefaultRegistry()
	require.NoError(t, err)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			seq, err := LoadSequence(name)
			require.NoError(t, err)

			p, err := reg.Lookup(seq.Exercise)
			require.NoError(t, err)

			clk := timeutil.NewMockClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
			s, err := session.New(p, session.DefaultOptions(), clk)
			require.NoError(t, err)

			counted := 0
			for i, f := range seq.Frames {
				if i > 0 {
					clk.Advance(seq.Interval())
				}
				out := s.ProcessFrame(f)
				if out.Counted {
					counted++
				}
			}

			assert.Equal(t, seq.ExpectedReps, s.Count())
			assert.Equal(t, seq.ExpectedReps, counted)
		})
	}
}
