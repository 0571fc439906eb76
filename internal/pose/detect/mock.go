package detect

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/repcoach/internal/pose"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	frames []*pose.Frame
	next   int
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFrame makes every Detect call return f.
func (m *MockDetector) SetFrame(f *pose.Frame) {
	m.SetSequence([]*pose.Frame{f})
}

// SetSequence makes successive Detect calls return the given frames in order,
// repeating the last one once the sequence is exhausted.
func (m *MockDetector) SetSequence(frames []*pose.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = frames
	m.next = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured frame or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*pose.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.frames) == 0 {
		return nil, nil
	}

	f := m.frames[m.next]
	if m.next < len(m.frames)-1 {
		m.next++
	}
	return f, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}
