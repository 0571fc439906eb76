package server

import (
	"fmt"
	"net/http"

	"github.com/ayusman/repcoach/internal/capture"
)

// StreamHandler serves the camera preview as MJPEG. Frames come from the
// Preview buffer, so viewers never read the camera themselves.
type StreamHandler struct {
	preview *capture.Preview
}

// NewStreamHandler creates a new StreamHandler reading from preview.
func NewStreamHandler(preview *capture.Preview) *StreamHandler {
	return &StreamHandler{preview: preview}
}

// ServeHTTP writes each new preview image as a multipart part until the
// client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	var sent uint64
	for {
		jpeg, seq, next := h.preview.Latest()
		if seq != sent && len(jpeg) > 0 {
			if err := writePart(w, jpeg); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
			sent = seq
		}

		select {
		case <-r.Context().Done():
			return
		case <-next:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := w.Write([]byte("\r\n"))
	return err
}
