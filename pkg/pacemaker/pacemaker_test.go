package pacemaker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// countingKeepalive counts emergency writes.
type countingKeepalive struct {
	mu      sync.Mutex
	syncs   int
	flushes int
}

func (k *countingKeepalive) EmitSync() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.syncs++
	return nil
}

func (k *countingKeepalive) FlushOutbound() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.flushes++
	return nil
}

func (k *countingKeepalive) counts() (int, int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.syncs, k.flushes
}

func TestPacemakerStaysQuietWithRegularPulses(t *testing.T) {
	keepalive := &countingKeepalive{}
	p := New(keepalive, 50*time.Millisecond)
	p.Start()
	defer p.Stop()

	for i := 0; i < 20; i++ {
		p.Tick()
		time.Sleep(10 * time.Millisecond)
	}

	syncs, flushes := keepalive.counts()
	assert.Equal(t, 0, syncs)
	assert.Equal(t, 0, flushes)
}

func TestPacemakerStepsInOnMissedPulse(t *testing.T) {
	keepalive := &countingKeepalive{}
	p := New(keepalive, 20*time.Millisecond)
	p.Start()
	defer p.Stop()

	// Silence for several windows, roughly one emission per window.
	time.Sleep(110 * time.Millisecond)

	syncs, flushes := keepalive.counts()
	assert.GreaterOrEqual(t, syncs, 3)
	assert.LessOrEqual(t, syncs, 7)
	assert.Equal(t, syncs, flushes)
}

func TestPacemakerStepsOutWhenPulsesResume(t *testing.T) {
	keepalive := &countingKeepalive{}
	p := New(keepalive, 20*time.Millisecond)
	p.Start()
	defer p.Stop()

	time.Sleep(50 * time.Millisecond)
	before, _ := keepalive.counts()
	assert.Greater(t, before, 0)

	// Cycle comes back, the watchdog must go quiet again.
	for i := 0; i < 10; i++ {
		p.Tick()
		time.Sleep(5 * time.Millisecond)
	}
	after, _ := keepalive.counts()
	assert.LessOrEqual(t, after-before, 1)
}

func TestTickNeverBlocks(t *testing.T) {
	p := New(&countingKeepalive{}, time.Hour)
	// Not started, nobody drains the pulse channel.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			p.Tick()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Tick blocked")
	}
}
