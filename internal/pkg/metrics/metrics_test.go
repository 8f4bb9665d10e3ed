package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Delivered.WithLabelValues("newChat").Inc()
	m.Delivered.WithLabelValues("newChat").Inc()
	m.Dropped.WithLabelValues("typing").Inc()
	m.Connections.Set(3)

	require.InDelta(t, 2, testutil.ToFloat64(m.Delivered.WithLabelValues("newChat")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.Dropped.WithLabelValues("typing")), 0)
	require.InDelta(t, 3, testutil.ToFloat64(m.Connections), 0)
}
