package stats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_operations_total",
		Help: "test counter",
	}, []string{"operation"})
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_accounts",
		Help: "test gauge",
	})
	require.NoError(t, reg.Register(counter))
	require.NoError(t, reg.Register(gauge))

	counter.WithLabelValues("sign").Add(2)
	gauge.Set(3)
	return reg
}

func TestLogMetrics(t *testing.T) {
	assert.NoError(t, LogMetrics(newTestRegistry(t)))
}

func TestDumpMetrics(t *testing.T) {
	reg := newTestRegistry(t)
	path := filepath.Join(t.TempDir(), "stats")

	require.NoError(t, DumpMetrics(reg, path))
	require.NoError(t, DumpMetrics(reg, path))

	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(buf), "test_operations_total"))
	assert.Equal(t, 2, strings.Count(string(buf), "test_accounts"))
}
