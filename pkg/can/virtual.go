package can

import (
	"sync"
)

func init() {
	RegisterInterface("virtual", NewVirtualCanBus)
}

// In-process virtual CAN bus used for testing.
// Frames sent on the bus are looped back synchronously to the subscribed
// listener, which is enough to emulate a single node talking to itself.
type VirtualCanBus struct {
	mu           sync.Mutex
	channel      string
	framehandler FrameListener
	tx           []Frame
}

func NewVirtualCanBus(channel string) (Bus, error) {
	return &VirtualCanBus{channel: channel}, nil
}

// "Connect" implementation of Bus interface
func (b *VirtualCanBus) Connect(...any) error {
	return nil
}

// "Disconnect" implementation of Bus interface
func (b *VirtualCanBus) Disconnect() error {
	return nil
}

// "Send" implementation of Bus interface
func (b *VirtualCanBus) Send(frame Frame) error {
	b.mu.Lock()
	handler := b.framehandler
	b.tx = append(b.tx, frame)
	b.mu.Unlock()
	if handler != nil {
		handler.Handle(frame)
	}
	return nil
}

// "Subscribe" implementation of Bus interface
func (b *VirtualCanBus) Subscribe(framehandler FrameListener) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.framehandler = framehandler
	return nil
}

// Sent returns a copy of all frames sent so far, test helper.
func (b *VirtualCanBus) Sent() []Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Frame, len(b.tx))
	copy(out, b.tx)
	return out
}
