// Package pacemaker keeps the bus alive when the control cycle stalls.
// CAN receivers time out and fault when no synchronization traffic
// arrives within a bounded window, so a background thread watches for
// the cycle's pulse and steps in with compensating writes when it
// misses its deadline. This is the only genuinely concurrent component
// of the system.
package pacemaker

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Keepalive is the emergency write surface shared with the main cycle.
// Implementations must serialize sends internally.
type Keepalive interface {
	EmitSync() error
	FlushOutbound() error
}

type Pacemaker struct {
	bus       Keepalive
	maxWait   time.Duration
	pulse     chan struct{}
	stop      chan struct{}
	wg        sync.WaitGroup
	logger    *log.Entry
	steppedIn bool
}

// New creates a pacemaker. maxWait must be longer than one control
// interval, otherwise the watchdog fires during normal operation.
func New(bus Keepalive, maxWait time.Duration) *Pacemaker {
	return &Pacemaker{
		bus:     bus,
		maxWait: maxWait,
		pulse:   make(chan struct{}, 1),
		stop:    make(chan struct{}),
		logger:  log.WithField("service", "[PACEMAKER]"),
	}
}

// Tick signals that the main cycle is alive. Never blocks.
func (p *Pacemaker) Tick() {
	select {
	case p.pulse <- struct{}{}:
	default:
	}
}

// Start launches the watchdog goroutine.
func (p *Pacemaker) Start() {
	p.wg.Add(1)
	go p.run()
}

// Stop terminates the watchdog and waits for it to exit.
func (p *Pacemaker) Stop() {
	close(p.stop)
	p.wg.Wait()
}

func (p *Pacemaker) run() {
	defer p.wg.Done()
	timer := time.NewTimer(p.maxWait)
	defer timer.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-p.pulse:
			if p.steppedIn {
				p.logger.Warn("main cycle is back, stepping out")
				p.steppedIn = false
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(p.maxWait)
		case <-timer.C:
			if !p.steppedIn {
				p.logger.Warnf("no pulse within %v, stepping in for main cycle", p.maxWait)
				p.steppedIn = true
			}
			if err := p.bus.EmitSync(); err != nil {
				p.logger.Errorf("emergency sync failed : %v", err)
			}
			if err := p.bus.FlushOutbound(); err != nil {
				p.logger.Errorf("emergency flush failed : %v", err)
			}
			timer.Reset(p.maxWait)
		}
	}
}
