package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Preview holds the most recent camera frame as JPEG so that viewers never
// compete with the analysis loop for the device.
type Preview struct {
	mu      sync.RWMutex
	jpeg    []byte
	seq     uint64
	updated chan struct{}
}

// NewPreview creates an empty Preview.
func NewPreview() *Preview {
	return &Preview{updated: make(chan struct{})}
}

// Publish encodes frame and makes it the latest preview image.
func (p *Preview) Publish(frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encoding preview: %w", err)
	}
	defer buf.Close()

	p.Store(append([]byte(nil), buf.GetBytes()...))
	return nil
}

// Store replaces the latest image with already encoded JPEG bytes.
func (p *Preview) Store(jpeg []byte) {
	p.mu.Lock()
	p.jpeg = jpeg
	p.seq++
	close(p.updated)
	p.updated = make(chan struct{})
	p.mu.Unlock()
}

// Latest returns the newest image, its sequence number, and a channel closed
// when a newer image is stored. seq is 0 before the first image.
func (p *Preview) Latest() (jpeg []byte, seq uint64, next <-chan struct{}) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jpeg, p.seq, p.updated
}
