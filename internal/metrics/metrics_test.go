package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Recorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.PeerConnected()
	m.PeerConnected()
	m.PeerDisconnected()
	m.FrameRelayed()
	m.FrameRejected()
	m.FrameRejected()
	m.RecordDropped(3)
	m.RecordSolve(5 * time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PeersConnected))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ConnectionsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FramesRelayed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FramesRejected))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PayloadsDropped))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SolveDuration))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// Each registry gets its own set, so tests and servers can coexist.
	require.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.FrameRelayed()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "powchat_frames_relayed_total 1")
}
