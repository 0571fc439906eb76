// Package testdata provides recorded landmark sequences for end-to-end
// counting tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/ayusman/repcoach/internal/pose"
)

//go:embed sequences/*.json
var sequencesFS embed.FS

// Sequence is a recording of one exercise set at a fixed frame interval.
type Sequence struct {
	Exercise     string        `json:"exercise"`
	Description  string        `json:"description"`
	IntervalMS   int           `json:"interval_ms"`
	ExpectedReps int           `json:"expected_reps"`
	Frames       []*pose.Frame `json:"frames"`
}

// Interval returns the time between consecutive frames.
func (s *Sequence) Interval() time.Duration {
	return time.Duration(s.IntervalMS) * time.Millisecond
}

// LoadSequence loads a recorded sequence by name, with or without the .json
// extension.
func LoadSequence(name string) (*Sequence, error) {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}

	data, err := sequencesFS.ReadFile(path.Join("sequences", name))
	if err != nil {
		return nil, fmt.Errorf("load sequence %s: %w", name, err)
	}

	var seq Sequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("decode sequence %s: %w", name, err)
	}
	if seq.IntervalMS <= 0 || len(seq.Frames) == 0 {
		return nil, fmt.Errorf("sequence %s is empty", name)
	}
	return &seq, nil
}

// Sequences lists the names of all recorded sequences.
func Sequences() ([]string, error) {
	entries, err := sequencesFS.ReadDir("sequences")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return names, nil
}
