package block

// Bounded message queue used by message inputs.
// When full, the oldest message is dropped to make room for the new one.
type Queue struct {
	buffer   []any
	readPos  int
	writePos int
	occupied int
}

const DefaultQueueSize = 50

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{buffer: make([]any, size)}
}

func (q *Queue) Len() int {
	return q.occupied
}

func (q *Queue) Cap() int {
	return len(q.buffer)
}

// Push appends a message, dropping the oldest one on overflow.
func (q *Queue) Push(msg any) {
	if q.occupied == len(q.buffer) {
		q.readPos = (q.readPos + 1) % len(q.buffer)
		q.occupied--
	}
	q.buffer[q.writePos] = msg
	q.writePos = (q.writePos + 1) % len(q.buffer)
	q.occupied++
}

// Pop removes and returns the oldest message.
func (q *Queue) Pop() (any, bool) {
	if q.occupied == 0 {
		return nil, false
	}
	msg := q.buffer[q.readPos]
	q.buffer[q.readPos] = nil
	q.readPos = (q.readPos + 1) % len(q.buffer)
	q.occupied--
	return msg, true
}

func (q *Queue) Clear() {
	for i := range q.buffer {
		q.buffer[i] = nil
	}
	q.readPos = 0
	q.writePos = 0
	q.occupied = 0
}
