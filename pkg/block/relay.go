package block

// Relay ports bridge composite block boundaries. A relay is an input
// and an output at the same time : upstream connections terminate on
// its sink side, downstream connections read through its source side.

// ValueRelay forwards the value of its incoming connection.
type ValueRelay struct {
	port
	src       ValueSource
	receivers []ValueSink
}

func NewValueRelay(owner Block) *ValueRelay {
	return &ValueRelay{port: port{owner: owner, kind: KindValue}}
}

// Get reads through the relay to the original output.
func (r *ValueRelay) Get() float64 {
	if r.src == nil {
		return 0
	}
	return r.src.Get()
}

func (r *ValueRelay) Connected() bool            { return r.src != nil }
func (r *ValueRelay) Receivers() []ValueSink     { return r.receivers }
func (r *ValueRelay) addReceiver(sink ValueSink) { r.receivers = append(r.receivers, sink) }
func (r *ValueRelay) source() ValueSource        { return r.src }
func (r *ValueRelay) setSource(s ValueSource)    { r.src = s }

// MessageRelay forwards incoming messages to all its receivers without
// buffering them.
type MessageRelay struct {
	port
	src       MessageSource
	receivers []MessageSink
}

func NewMessageRelay(owner Block) *MessageRelay {
	return &MessageRelay{port: port{owner: owner, kind: KindMessage}}
}

func (r *MessageRelay) push(msg any) {
	for _, receiver := range r.receivers {
		receiver.push(msg)
	}
}

func (r *MessageRelay) Connected() bool              { return r.src != nil }
func (r *MessageRelay) Receivers() []MessageSink     { return r.receivers }
func (r *MessageRelay) addReceiver(sink MessageSink) { r.receivers = append(r.receivers, sink) }
func (r *MessageRelay) source() MessageSource        { return r.src }
func (r *MessageRelay) setSource(s MessageSource)    { r.src = s }
