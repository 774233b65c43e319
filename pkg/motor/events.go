package motor

// Event is a typed motor notification. Multiple independent listeners
// may subscribe per event, no ordering between them is guaranteed.
type Event int

const (
	EventStateChanged Event = iota
	EventHomingChanged
	EventError
)

type publisher struct {
	listeners map[Event][]func()
}

func newPublisher() *publisher {
	return &publisher{listeners: map[Event][]func(){}}
}

// Subscribe adds a listener for an event.
func (p *publisher) Subscribe(event Event, listener func()) {
	p.listeners[event] = append(p.listeners[event], listener)
}

func (p *publisher) publish(event Event) {
	for _, listener := range p.listeners[event] {
		listener()
	}
}
