package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/marmos91/dfsclient/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransferMetrics_Disabled(t *testing.T) {
	metrics.InitRegistry(false)

	m := NewTransferMetrics()

	assert.Nil(t, m)
}

func TestNewTransferMetrics_Enabled(t *testing.T) {
	metrics.InitRegistry(true)
	defer metrics.InitRegistry(false)

	m := NewTransferMetrics()
	require.NotNil(t, m)

	m.RecordJobStart("upload", 12)
	m.RecordFileTransferred("upload", 4096, 10*time.Millisecond, nil)
	m.RecordFileTransferred("upload", 0, time.Millisecond, errors.New("permission denied"))
	m.SetActiveJobs(1)
	m.SetQueueDepth(3)
	m.RecordJobResumed("download")
	m.RecordJobComplete("upload", 12, 1<<20, time.Second, nil)
}

func TestTransferMetrics_NilSafe(t *testing.T) {
	var m *transferMetrics

	assert.NotPanics(t, func() {
		m.RecordJobStart("download", 1)
		m.RecordJobComplete("download", 1, 1024, time.Second, nil)
		m.RecordFileTransferred("download", 1024, time.Millisecond, nil)
		m.SetActiveJobs(0)
		m.SetQueueDepth(0)
		m.RecordJobResumed("download")
	})
}
