package block

import (
	"errors"
)

var (
	ErrIncompatiblePorts = errors.New("ports are not of the same kind, only value-value and message-message connections are allowed")
	ErrAlreadyConnected  = errors.New("input port already has an incoming connection")
	ErrNotOutputInput    = errors.New("connection must go from an output port to an input port")
)

// Port kind. Value ports hold a continuously propagated scalar,
// message ports hold a bounded queue of discrete events.
type Kind int

const (
	KindValue Kind = iota
	KindMessage
)

// A Port belongs to exactly one block. Outputs may fan out to many
// inputs, an input accepts at most one incoming connection.
type Port interface {
	Owner() Block
	Kind() Kind
}

type port struct {
	owner Block
	kind  Kind
}

func (p *port) Owner() Block { return p.owner }
func (p *port) Kind() Kind   { return p.kind }

// Source side of a value connection. Implemented by ValueOutput and
// ValueRelay so that inputs read through relays transparently.
type ValueSource interface {
	Port
	Get() float64
	addReceiver(sink ValueSink)
}

// Sink side of a value connection.
type ValueSink interface {
	Port
	source() ValueSource
	setSource(src ValueSource)
}

// Source side of a message connection.
type MessageSource interface {
	Port
	addReceiver(sink MessageSink)
}

// Sink side of a message connection.
type MessageSink interface {
	Port
	push(msg any)
	source() MessageSource
	setSource(src MessageSource)
}

// ValueOutput holds the current scalar value of a block output.
type ValueOutput struct {
	port
	value     float64
	receivers []ValueSink
}

func NewValueOutput(owner Block) *ValueOutput {
	return &ValueOutput{port: port{owner: owner, kind: KindValue}}
}

func (o *ValueOutput) Set(value float64) { o.value = value }
func (o *ValueOutput) Get() float64      { return o.value }

func (o *ValueOutput) Receivers() []ValueSink   { return o.receivers }
func (o *ValueOutput) addReceiver(sink ValueSink) { o.receivers = append(o.receivers, sink) }

// ValueInput reads the current value through its incoming connection.
type ValueInput struct {
	port
	src ValueSource
}

func NewValueInput(owner Block) *ValueInput {
	return &ValueInput{port: port{owner: owner, kind: KindValue}}
}

// Get returns the connected source's value, or zero when unconnected.
func (i *ValueInput) Get() float64 {
	if i.src == nil {
		return 0
	}
	return i.src.Get()
}

func (i *ValueInput) Connected() bool          { return i.src != nil }
func (i *ValueInput) Source() ValueSource      { return i.src }
func (i *ValueInput) source() ValueSource      { return i.src }
func (i *ValueInput) setSource(s ValueSource)  { i.src = s }

// MessageOutput distributes discrete messages to all connected inputs.
type MessageOutput struct {
	port
	receivers []MessageSink
}

func NewMessageOutput(owner Block) *MessageOutput {
	return &MessageOutput{port: port{owner: owner, kind: KindMessage}}
}

func (o *MessageOutput) Send(msg any) {
	for _, receiver := range o.receivers {
		receiver.push(msg)
	}
}

func (o *MessageOutput) Receivers() []MessageSink     { return o.receivers }
func (o *MessageOutput) addReceiver(sink MessageSink) { o.receivers = append(o.receivers, sink) }

// MessageInput buffers incoming messages in a bounded queue,
// oldest messages are dropped on overflow.
type MessageInput struct {
	port
	src   MessageSource
	queue *Queue
}

func NewMessageInput(owner Block) *MessageInput {
	return &MessageInput{
		port:  port{owner: owner, kind: KindMessage},
		queue: NewQueue(DefaultQueueSize),
	}
}

// Receive pops the oldest pending message.
func (i *MessageInput) Receive() (any, bool) { return i.queue.Pop() }

// ReceiveAll drains the queue.
func (i *MessageInput) ReceiveAll() []any {
	var msgs []any
	for {
		msg, ok := i.queue.Pop()
		if !ok {
			return msgs
		}
		msgs = append(msgs, msg)
	}
}

func (i *MessageInput) Pending() int              { return i.queue.Len() }
func (i *MessageInput) Connected() bool           { return i.src != nil }
func (i *MessageInput) Source() MessageSource     { return i.src }
func (i *MessageInput) push(msg any)              { i.queue.Push(msg) }
func (i *MessageInput) source() MessageSource     { return i.src }
func (i *MessageInput) setSource(s MessageSource) { i.src = s }

// Connect wires an output port to an input port.
// Value sources connect to value sinks, message sources to message
// sinks, anything else is rejected. An input can only be connected once.
func Connect(src Port, dst Port) error {
	if src.Kind() != dst.Kind() {
		return ErrIncompatiblePorts
	}
	if src.Kind() == KindValue {
		output, ok := src.(ValueSource)
		if !ok {
			return ErrNotOutputInput
		}
		input, ok := dst.(ValueSink)
		if !ok {
			return ErrNotOutputInput
		}
		if input.source() != nil {
			return ErrAlreadyConnected
		}
		input.setSource(output)
		output.addReceiver(input)
		return nil
	}
	output, ok := src.(MessageSource)
	if !ok {
		return ErrNotOutputInput
	}
	input, ok := dst.(MessageSink)
	if !ok {
		return ErrNotOutputInput
	}
	if input.source() != nil {
		return ErrAlreadyConnected
	}
	input.setSource(output)
	output.addReceiver(input)
	return nil
}
