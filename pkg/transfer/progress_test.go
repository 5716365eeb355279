package transfer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountingReader_ReportsBytesRead(t *testing.T) {
	t.Parallel()
	var total int64
	r := &countingReader{r: strings.NewReader("hello world"), onBytes: func(n int64) { total += n }}

	buf := make([]byte, 5)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.EqualValues(t, 5, total)
}

func TestCountingWriter_ReportsBytesWritten(t *testing.T) {
	t.Parallel()
	var total int64
	var buf bytes.Buffer
	w := &countingWriter{w: &buf, onBytes: func(n int64) { total += n }}

	n, err := w.Write([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.EqualValues(t, 6, total)
	assert.Equal(t, "abcdef", buf.String())
}

func TestNoopListener_NeverPanics(t *testing.T) {
	t.Parallel()
	var l NoopListener
	l.OnStarted("x")
	l.OnBytes("x", 10)
	l.OnCompleted("x", Result{})
	l.OnFailed("x", assert.AnError)
}

func TestListenerOrNoop_NilBecomesNoop(t *testing.T) {
	t.Parallel()
	l := listenerOrNoop(nil)
	assert.IsType(t, NoopListener{}, l)
}
