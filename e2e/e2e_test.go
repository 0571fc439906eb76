package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/repcoach/internal/app"
	"github.com/ayusman/repcoach/internal/capture"
	"github.com/ayusman/repcoach/internal/metrics"
	"github.com/ayusman/repcoach/internal/profile"
	"github.com/ayusman/repcoach/internal/server"
	"github.com/ayusman/repcoach/internal/session"
	"github.com/ayusman/repcoach/internal/store"
	"github.com/ayusman/repcoach/internal/timeutil"
	"github.com/ayusman/repcoach/testdata"
)

type harness struct {
	ts    *httptest.Server
	clock *timeutil.MockClock
	store *store.Store
}

func newHarness(t *testing.T, dbPath string) *harness {
	t.Helper()

	st, err := store.New(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, err = st.SeedProfiles(profile.Defaults())
	require.NoError(t, err)
	catalog, err := st.Catalog()
	require.NoError(t, err)
	reg, err := profile.NewRegistry(catalog...)
	require.NoError(t, err)

	clk := timeutil.NewMockClock(time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC))
	coach := session.NewCoach(reg, session.DefaultOptions(), clk, nil)

	m, promReg := metrics.NewTestManager()
	coach.AddObserver(m)

	application := app.New(app.Config{
		Coach:  coach,
		Camera: capture.NewMockCamera(nil, false),
		Store:  st,
	})

	srv := server.New(server.Config{
		Coach:    coach,
		Selector: application,
		Metrics:  promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}),
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &harness{ts: ts, clock: clk, store: st}
}

func (h *harness) call(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, h.ts.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	h := newHarness(t, filepath.Join(t.TempDir(), "data.db"))

	t.Run("ListExercises", func(t *testing.T) {
		status, body := h.call(t, http.MethodGet, "/api/exercises", nil)
		require.Equal(t, http.StatusOK, status)

		var list []profile.Profile
		require.NoError(t, json.Unmarshal(body, &list))
		assert.Len(t, list, 5)
	})

	seq, err := testdata.LoadSequence("curl_three_reps")
	require.NoError(t, err)

	t.Run("SelectExercise", func(t *testing.T) {
		status, body := h.call(t, http.MethodPost, "/api/session", map[string]string{"exercise": seq.Exercise})
		require.Equal(t, http.StatusCreated, status, string(body))

		last, err := h.store.Settings().Get(store.KeyLastExercise)
		require.NoError(t, err)
		assert.Equal(t, seq.Exercise, last)
	})

	t.Run("StreamFrames", func(t *testing.T) {
		var last session.Output
		statuses := map[string]bool{}
		for i, f := range seq.Frames {
			if i > 0 {
				h.clock.Advance(seq.Interval())
			}
			status, body := h.call(t, http.MethodPost, "/api/frames", f)
			require.Equal(t, http.StatusOK, status)
			require.NoError(t, json.Unmarshal(body, &last))
			statuses[last.Status] = true
		}

		assert.Equal(t, seq.ExpectedReps, last.Count)
		assert.True(t, statuses[session.StatusInitializing])
		assert.True(t, statuses[session.StatusCounted])
		assert.True(t, statuses[session.StatusTracking])
	})

	t.Run("Count", func(t *testing.T) {
		status, body := h.call(t, http.MethodGet, "/api/session/count", nil)
		require.Equal(t, http.StatusOK, status)

		var got struct {
			Exercise string `json:"exercise"`
			Count    int    `json:"count"`
		}
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, seq.ExpectedReps, got.Count)
	})

	t.Run("Metrics", func(t *testing.T) {
		status, body := h.call(t, http.MethodGet, "/metrics", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(body), `repcoach_engine_reps_total{exercise="elbow_dominant"} 3`)
	})

	t.Run("Reset", func(t *testing.T) {
		status, body := h.call(t, http.MethodPost, "/api/session/reset", nil)
		require.Equal(t, http.StatusOK, status)

		var snap session.Snapshot
		require.NoError(t, json.Unmarshal(body, &snap))
		assert.Zero(t, snap.Count)
		assert.True(t, snap.Warming)
	})

	t.Run("UnknownExercise", func(t *testing.T) {
		status, body := h.call(t, http.MethodPost, "/api/session", map[string]string{"exercise": "juggling"})
		assert.Equal(t, http.StatusNotFound, status)
		assert.True(t, strings.Contains(string(body), "error"))

		status, body = h.call(t, http.MethodGet, "/api/session", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(body), seq.Exercise, "previous session survives a bad selection")
	})
}

func TestE2E_SelectionSurvivesRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	dbPath := filepath.Join(t.TempDir(), "data.db")

	first := newHarness(t, dbPath)
	status, _ := first.call(t, http.MethodPost, "/api/session", map[string]string{"exercise": profile.KneeDominant})
	require.Equal(t, http.StatusCreated, status)
	first.ts.Close()
	first.store.Close()

	st, err := store.New(dbPath, nil)
	require.NoError(t, err)
	defer st.Close()

	reg, err := profile.DefaultRegistry()
	require.NoError(t, err)
	coach := session.NewCoach(reg, session.DefaultOptions(), nil, nil)
	application := app.New(app.Config{Coach: coach, Camera: capture.NewMockCamera(nil, false), Store: st})

	id, err := application.RestoreExercise("")
	require.NoError(t, err)
	assert.Equal(t, profile.KneeDominant, id)
}
