// Package block implements the dataflow primitives of the control core :
// typed ports, connections between them and the Block unit of computation
// that is ticked once per cycle by the scheduler.
package block

// Block is the unit of computation in the dataflow graph. Blocks are
// created once at wiring time and updated every tick. Identity is
// reference identity, two blocks are the same vertex only if they are
// the same pointer.
type Block interface {
	// Update advances the block by one tick. It must not block.
	Update()
	Name() string
	Inputs() []Port
	Outputs() []Port
}

// Base carries the port bookkeeping shared by all block implementations.
// Concrete blocks embed Base and register their ports through it :
//
//	type Gain struct {
//		block.Base
//		in  *block.ValueInput
//		out *block.ValueOutput
//	}
//
//	func NewGain() *Gain {
//		g := &Gain{}
//		g.Init("gain", g)
//		g.in = g.AddValueInput()
//		g.out = g.AddValueOutput()
//		return g
//	}
type Base struct {
	name    string
	self    Block
	inputs  []Port
	outputs []Port
}

// Init must be called once with the embedding block itself, ports
// created afterwards are owned by that block.
func (b *Base) Init(name string, self Block) {
	b.name = name
	b.self = self
}

func (b *Base) Name() string    { return b.name }
func (b *Base) Inputs() []Port  { return b.inputs }
func (b *Base) Outputs() []Port { return b.outputs }

// Update is a no-op by default, blocks without per-tick work keep it.
func (b *Base) Update() {}

func (b *Base) AddValueInput() *ValueInput {
	input := NewValueInput(b.self)
	b.inputs = append(b.inputs, input)
	return input
}

func (b *Base) AddValueOutput() *ValueOutput {
	output := NewValueOutput(b.self)
	b.outputs = append(b.outputs, output)
	return output
}

func (b *Base) AddMessageInput() *MessageInput {
	input := NewMessageInput(b.self)
	b.inputs = append(b.inputs, input)
	return input
}

func (b *Base) AddMessageOutput() *MessageOutput {
	output := NewMessageOutput(b.self)
	b.outputs = append(b.outputs, output)
	return output
}

// AddValueRelay registers a relay on both port lists, it is an input
// and an output of the composite block at the same time.
func (b *Base) AddValueRelay() *ValueRelay {
	relay := NewValueRelay(b.self)
	b.inputs = append(b.inputs, relay)
	b.outputs = append(b.outputs, relay)
	return relay
}

func (b *Base) AddMessageRelay() *MessageRelay {
	relay := NewMessageRelay(b.self)
	b.inputs = append(b.inputs, relay)
	b.outputs = append(b.outputs, relay)
	return relay
}

// Successors returns the owners of all sinks connected to the block's
// outputs, in connection order, with duplicates preserved for the graph
// builder to dedupe.
func Successors(b Block) []Block {
	var successors []Block
	for _, output := range b.Outputs() {
		switch o := output.(type) {
		case *ValueOutput:
			for _, sink := range o.Receivers() {
				successors = append(successors, sink.Owner())
			}
		case *ValueRelay:
			for _, sink := range o.Receivers() {
				successors = append(successors, sink.Owner())
			}
		case *MessageOutput:
			for _, sink := range o.Receivers() {
				successors = append(successors, sink.Owner())
			}
		case *MessageRelay:
			for _, sink := range o.Receivers() {
				successors = append(successors, sink.Owner())
			}
		}
	}
	return successors
}

// Predecessors returns the owners of all sources feeding the block's
// inputs, in port order.
func Predecessors(b Block) []Block {
	var predecessors []Block
	for _, input := range b.Inputs() {
		switch i := input.(type) {
		case *ValueInput:
			if i.Connected() {
				predecessors = append(predecessors, i.Source().Owner())
			}
		case *ValueRelay:
			if i.Connected() {
				predecessors = append(predecessors, i.source().Owner())
			}
		case *MessageInput:
			if i.Connected() {
				predecessors = append(predecessors, i.Source().Owner())
			}
		case *MessageRelay:
			if i.Connected() {
				predecessors = append(predecessors, i.source().Owner())
			}
		}
	}
	return predecessors
}
