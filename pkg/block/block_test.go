package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// testBlock is a minimal block with one value input / output and one
// message input / output.
type testBlock struct {
	Base
	valueIn    *ValueInput
	valueOut   *ValueOutput
	messageIn  *MessageInput
	messageOut *MessageOutput
}

func newTestBlock(name string) *testBlock {
	b := &testBlock{}
	b.Init(name, b)
	b.valueIn = b.AddValueInput()
	b.valueOut = b.AddValueOutput()
	b.messageIn = b.AddMessageInput()
	b.messageOut = b.AddMessageOutput()
	return b
}

func TestQueueDropsOldestOnOverflow(t *testing.T) {
	q := NewQueue(3)
	q.Push(1)
	q.Push(2)
	q.Push(3)
	q.Push(4)
	assert.Equal(t, 3, q.Len())

	msg, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, 2, msg)
	msg, _ = q.Pop()
	assert.Equal(t, 3, msg)
	msg, _ = q.Pop()
	assert.Equal(t, 4, msg)
	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestConnectValuePorts(t *testing.T) {
	a := newTestBlock("a")
	b := newTestBlock("b")

	err := Connect(a.valueOut, b.valueIn)
	assert.Nil(t, err)

	a.valueOut.Set(13.37)
	assert.Equal(t, 13.37, b.valueIn.Get())
}

func TestConnectRejectsMixedKinds(t *testing.T) {
	a := newTestBlock("a")
	b := newTestBlock("b")

	err := Connect(a.valueOut, b.messageIn)
	assert.Equal(t, ErrIncompatiblePorts, err)

	err = Connect(a.messageOut, b.valueIn)
	assert.Equal(t, ErrIncompatiblePorts, err)
}

func TestInputAcceptsSingleConnection(t *testing.T) {
	a := newTestBlock("a")
	b := newTestBlock("b")
	c := newTestBlock("c")

	assert.Nil(t, Connect(a.valueOut, c.valueIn))
	assert.Equal(t, ErrAlreadyConnected, Connect(b.valueOut, c.valueIn))
}

func TestOutputFansOut(t *testing.T) {
	a := newTestBlock("a")
	b := newTestBlock("b")
	c := newTestBlock("c")

	assert.Nil(t, Connect(a.valueOut, b.valueIn))
	assert.Nil(t, Connect(a.valueOut, c.valueIn))

	a.valueOut.Set(1.0)
	assert.Equal(t, 1.0, b.valueIn.Get())
	assert.Equal(t, 1.0, c.valueIn.Get())
}

func TestMessageDelivery(t *testing.T) {
	a := newTestBlock("a")
	b := newTestBlock("b")

	assert.Nil(t, Connect(a.messageOut, b.messageIn))

	a.messageOut.Send("hello")
	a.messageOut.Send("world")
	assert.Equal(t, 2, b.messageIn.Pending())
	assert.Equal(t, []any{"hello", "world"}, b.messageIn.ReceiveAll())
	assert.Equal(t, 0, b.messageIn.Pending())
}

// composite bridges an inner block through relay ports.
type composite struct {
	Base
	valueRelay   *ValueRelay
	messageRelay *MessageRelay
}

func newComposite() *composite {
	c := &composite{}
	c.Init("composite", c)
	c.valueRelay = c.AddValueRelay()
	c.messageRelay = c.AddMessageRelay()
	return c
}

func TestValueRelayReadsThrough(t *testing.T) {
	a := newTestBlock("a")
	bridge := newComposite()
	b := newTestBlock("b")

	assert.Nil(t, Connect(a.valueOut, bridge.valueRelay))
	assert.Nil(t, Connect(bridge.valueRelay, b.valueIn))

	a.valueOut.Set(42.0)
	assert.Equal(t, 42.0, b.valueIn.Get())
}

func TestMessageRelayForwards(t *testing.T) {
	a := newTestBlock("a")
	bridge := newComposite()
	b := newTestBlock("b")

	assert.Nil(t, Connect(a.messageOut, bridge.messageRelay))
	assert.Nil(t, Connect(bridge.messageRelay, b.messageIn))

	a.messageOut.Send(7)
	msg, ok := b.messageIn.Receive()
	assert.True(t, ok)
	assert.Equal(t, 7, msg)
}

func TestSuccessorsAndPredecessors(t *testing.T) {
	a := newTestBlock("a")
	b := newTestBlock("b")

	assert.Nil(t, Connect(a.valueOut, b.valueIn))
	assert.Nil(t, Connect(a.messageOut, b.messageIn))

	successors := Successors(a)
	assert.Len(t, successors, 2)
	assert.Same(t, b, successors[0])

	predecessors := Predecessors(b)
	assert.Len(t, predecessors, 2)
	assert.Same(t, a, predecessors[0])
}
