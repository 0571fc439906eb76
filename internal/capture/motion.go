package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion detection constants
const (
	// BlurKernel is the Gaussian kernel size applied before differencing.
	BlurKernel = 21
	// DiffThreshold is the per-pixel intensity change counted as motion.
	DiffThreshold = 25
	// WorkWidth is the width frames are downscaled to before comparison.
	WorkWidth = 320
)

// MotionResult describes the change between two consecutive frames.
type MotionResult struct {
	Moving bool
	// Changed is the percentage of pixels whose intensity changed.
	Changed float64
}

// MotionDetector decides whether the scene changed enough to be worth running
// pose estimation on. The camera pipeline uses it to switch between idle and
// active frame rates.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	prev      gocv.Mat
	primed    bool
}

// NewMotionDetector creates a detector that reports motion when more than
// threshold percent of pixels change.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Detect compares frame with the previous one. The first frame after creation
// or Reset only primes the detector and never reports motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) MotionResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return MotionResult{}
	}

	cur := prepare(frame)
	defer cur.Close()

	if !m.primed || cur.Rows() != m.prev.Rows() || cur.Cols() != m.prev.Cols() {
		cur.CopyTo(&m.prev)
		m.primed = true
		return MotionResult{}
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(cur, m.prev, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(mask)) / float64(mask.Rows()*mask.Cols()) * 100.0
	cur.CopyTo(&m.prev)

	return MotionResult{Moving: changed > m.threshold, Changed: changed}
}

// prepare returns a downscaled, blurred grayscale copy of frame.
func prepare(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	if gray.Cols() > WorkWidth {
		small := gocv.NewMat()
		h := gray.Rows() * WorkWidth / gray.Cols()
		gocv.Resize(gray, &small, image.Point{X: WorkWidth, Y: h}, 0, 0, gocv.InterpolationArea)
		gray.Close()
		gray = small
	}

	out := gocv.NewMat()
	gocv.GaussianBlur(gray, &out, image.Point{X: BlurKernel, Y: BlurKernel}, 0, 0, gocv.BorderDefault)
	gray.Close()
	return out
}

// Reset forgets the previous frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases the stored frame. The detector stays usable and re-primes on
// the next Detect.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.primed = false
}

// SetThreshold changes the motion threshold. Non-positive values are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Threshold returns the current motion threshold.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}
