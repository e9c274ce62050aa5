package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserversUpdateCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.VoteEnqueued("a")
	m.VoteEnqueued("a")
	m.ItemDequeued()
	m.VotePersisted("inserted")
	m.VotePersisted("updated")
	m.MalformedItem()
	m.KeepAlive()
	m.Connected("store")
	m.TallyPublished(3)
	m.TallyFailed()
	m.ClientsConnected(2)
	m.FrameDropped("scores")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.VotesEnqueued.WithLabelValues("a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemsDequeued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VotesPersisted.WithLabelValues("updated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MalformedItems))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KeepAlives))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connections.WithLabelValues("store")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TallyRecipients))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TallyFailures))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LiveClients))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FramesDropped.WithLabelValues("scores")))
}

func TestServerExposesMetricsAndHealth(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)
	m.KeepAlive()

	server := NewServer(":0", registry, nil)

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "voteflow_consumer_keepalives_total"))

	rr = httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
