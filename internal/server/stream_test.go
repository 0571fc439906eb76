package server

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/repcoach/internal/capture"
)

func TestStreamHandler_WritesLatestPreview(t *testing.T) {
	preview := capture.NewPreview()
	preview.Store([]byte("first-jpeg"))

	coach, _ := newTestCoach(t)
	ts := httptest.NewServer(New(Config{Coach: coach, Preview: preview}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "multipart/x-mixed-replace"))

	r := bufio.NewReader(resp.Body)
	assert.Equal(t, "--frame\r\n", readLine(t, r))
	assert.Equal(t, "Content-Type: image/jpeg\r\n", readLine(t, r))
	assert.Equal(t, "Content-Length: 10\r\n", readLine(t, r))
	assert.Equal(t, "\r\n", readLine(t, r))

	body := make([]byte, 10)
	_, err = io.ReadFull(r, body)
	require.NoError(t, err)
	assert.Equal(t, "first-jpeg", string(body))

	preview.Store([]byte("second"))
	assert.Equal(t, "\r\n", readLine(t, r))
	assert.Equal(t, "--frame\r\n", readLine(t, r))
}

func TestServer_StreamAbsentWithoutPreview(t *testing.T) {
	coach, _ := newTestCoach(t)
	rec := do(t, New(Config{Coach: coach}), http.MethodGet, "/api/stream", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return line
}
