// Package cycle runs the fixed interval execution loop : blocks are
// ticked in topological order once per interval, framed by the bus
// synchronization and outbound flush. The loop is single threaded and
// non reentrant.
package cycle

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rauc-lab/being/pkg/block"
	"github.com/rauc-lab/being/pkg/clock"
	"github.com/rauc-lab/being/pkg/graph"
)

// SyncBus is the per-tick bus surface of the cycle.
type SyncBus interface {
	EmitSync() error
	FlushOutbound() error
}

// Pinger is pulsed once per tick, normally the pacemaker watchdog.
type Pinger interface {
	Tick()
}

type Cycle struct {
	clock     *clock.Clock
	bus       SyncBus
	pacemaker Pinger
	order     []block.Block
	logger    *log.Entry
}

func New(clk *clock.Clock, bus SyncBus, pacemaker Pinger) *Cycle {
	return &Cycle{
		clock:     clk,
		bus:       bus,
		pacemaker: pacemaker,
		logger:    log.WithField("service", "[CYCLE]"),
	}
}

// SetBlocks rebuilds the execution order from the given starting
// blocks. Called at wiring time, not per tick.
func (c *Cycle) SetBlocks(starting ...block.Block) {
	g := graph.Discover(starting...)
	c.order = graph.TopologicalSort(g)
	names := make([]string, 0, len(c.order))
	for _, b := range c.order {
		names = append(names, b.Name())
	}
	c.logger.Infof("execution order : %v", names)
}

// ExecutionOrder returns the current topological block order.
func (c *Cycle) ExecutionOrder() []block.Block {
	return c.order
}

// Clock returns the cycle's logical clock.
func (c *Cycle) Clock() *clock.Clock {
	return c.clock
}

// Single performs exactly one tick : emit SYNC, signal liveness, update
// every block in topological order, flush pending outbound frames and
// step the logical clock by one interval.
func (c *Cycle) Single() {
	if err := c.bus.EmitSync(); err != nil {
		c.logger.Errorf("sync emission failed : %v", err)
	}
	if c.pacemaker != nil {
		c.pacemaker.Tick()
	}
	for _, b := range c.order {
		b.Update()
	}
	if err := c.bus.FlushOutbound(); err != nil {
		c.logger.Errorf("outbound flush failed : %v", err)
	}
	c.clock.Step()
}

// Run ticks the cycle at its interval until the context is cancelled.
// Overruns are logged, the pacemaker covers the bus meanwhile.
func (c *Cycle) Run(ctx context.Context) {
	interval := c.clock.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	c.logger.Infof("starting with interval %v", interval)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("stopped")
			return
		case <-ticker.C:
			start := time.Now()
			c.Single()
			if elapsed := time.Since(start); elapsed > interval {
				c.logger.Warnf("cycle overrun : %v > %v", elapsed, interval)
			}
		}
	}
}
