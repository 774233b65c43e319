package drive

import (
	"sync"

	"github.com/rauc-lab/being/pkg/can"
)

// BusSync owns the SYNC producer side of the bus and the queue of
// outbound periodic frames. Both the control cycle and the pacemaker
// watchdog write through it, all sends are serialized here.
type BusSync struct {
	mu      sync.Mutex
	bus     can.Bus
	pending []can.Frame
}

func NewBusSync(bus can.Bus) *BusSync {
	return &BusSync{bus: bus}
}

// EmitSync sends one bus synchronization frame. Receivers use it as
// keep-alive, drives fault when no SYNC arrives within their window.
func (b *BusSync) EmitSync() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bus.Send(can.NewFrame(can.CobIdSYNC, 0, 0))
}

// Defer queues an outbound frame for the next flush.
func (b *BusSync) Defer(frame can.Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, frame)
}

// FlushOutbound transmits all queued periodic frames.
func (b *BusSync) FlushOutbound() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, frame := range b.pending {
		if err := b.bus.Send(frame); err != nil {
			return err
		}
	}
	b.pending = b.pending[:0]
	return nil
}
