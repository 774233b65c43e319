package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockStartsAtZero(t *testing.T) {
	clk := New(10 * time.Millisecond)
	assert.Equal(t, uint64(0), clk.Ticks())
	assert.Equal(t, time.Duration(0), clk.Now())
	assert.Equal(t, 0.0, clk.Seconds())
}

func TestClockSteps(t *testing.T) {
	clk := New(10 * time.Millisecond)
	for i := 0; i < 100; i++ {
		clk.Step()
	}
	assert.Equal(t, uint64(100), clk.Ticks())
	assert.Equal(t, time.Second, clk.Now())
	assert.Equal(t, 1.0, clk.Seconds())
}

func TestClockNoDrift(t *testing.T) {
	// Logical time is exact even after many ticks.
	clk := New(time.Millisecond)
	for i := 0; i < 1_000_000; i++ {
		clk.Step()
	}
	assert.Equal(t, 1000*time.Second, clk.Now())
}

func TestClockDT(t *testing.T) {
	clk := New(10 * time.Millisecond)
	assert.Equal(t, 0.01, clk.DT())
	assert.Equal(t, 10*time.Millisecond, clk.Interval())
}
