package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/clientdesk/internal/testutil"
)

func TestDebouncer_RunsLatestOnce(t *testing.T) {
	clk := testutil.FixedClock()
	d := NewDebouncer(clk, 500*time.Millisecond)
	var got []string

	for i, v := range []string{"a", "b", "c"} {
		v := v
		if i > 0 {
			clk.Advance(100 * time.Millisecond)
		}
		d.Trigger(func() { got = append(got, v) })
	}
	assert.True(t, d.Pending())

	clk.Advance(499 * time.Millisecond)
	assert.Empty(t, got)

	clk.Advance(time.Millisecond)
	assert.Equal(t, []string{"c"}, got)
	assert.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	clk := testutil.FixedClock()
	d := NewDebouncer(clk, time.Second)
	fired := false
	d.Trigger(func() { fired = true })
	d.Cancel()

	clk.Advance(2 * time.Second)
	assert.False(t, fired)
	assert.Equal(t, 0, clk.Pending())
}
