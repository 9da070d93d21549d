package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.FilesConverted.WithLabelValues("flat").Add(2)
	m.FilesSkipped.WithLabelValues("flat").Inc()
	m.ArchivesFailed.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilesConverted.WithLabelValues("flat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesSkipped.WithLabelValues("flat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArchivesFailed))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ArchivesEmpty))
}

func TestMetrics_ObserveRun(t *testing.T) {
	m := New()
	m.ObserveRun("archive", time.Now().Add(-time.Second))

	assert.GreaterOrEqual(t, testutil.ToFloat64(m.LastRunDuration.WithLabelValues("archive")), 1.0)
	assert.Greater(t, testutil.ToFloat64(m.LastRunTimestamp.WithLabelValues("archive")), 0.0)
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.OutputsWritten.WithLabelValues("archive").Inc()

	path := filepath.Join(t.TempDir(), "ovpnapi.prom")
	require.NoError(t, m.WriteTextfile(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `ovpnapi_outputs_written_total{pipeline="archive"} 1`))
}
