package diagnostics_test

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/quickdiff/diagnostics"
	"github.com/stretchr/testify/assert"
)

func TestRecordWritesLineWhenEnabled(t *testing.T) {
	if !diagnostics.Enabled() {
		t.Skip("QUICKDIFF_METRICS not set for this test binary")
	}
	var buf bytes.Buffer
	diagnostics.SetStream(&buf)
	t.Cleanup(func() { diagnostics.SetStream(os.Stderr) })

	diagnostics.Record("diff_compute", 5*time.Millisecond)
	assert.Contains(t, buf.String(), "diff_compute")
}

func TestTimeReturnsUnderlyingResultRegardlessOfMetrics(t *testing.T) {
	got := diagnostics.Time("noop", func() int { return 42 })
	assert.Equal(t, 42, got)
}
