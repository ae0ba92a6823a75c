package event

// Queue is the pending-event work list for one drain pass.
//
// The dispatch driver pops from the head; handlers push derived events to
// the tail of the same Queue instance, so cascade events run after
// everything already batched. That FIFO contract is observable behavior:
// reordering changes which events each handler sees during a drain.
//
// Queue is not safe for concurrent use. A drain pass is strictly
// sequential, so no locking is needed; callers that introduce concurrency
// must synchronize externally.
type Queue struct {
	events []Event
}

// NewQueue creates a queue preloaded with the given events, in order.
func NewQueue(events ...Event) *Queue {
	q := &Queue{events: make([]Event, len(events))}
	copy(q.events, events)
	return q
}

// Push appends an event to the tail.
func (q *Queue) Push(evt Event) {
	q.events = append(q.events, evt)
}

// Pop removes and returns the head event. The second return is false when
// the queue is empty.
func (q *Queue) Pop() (Event, bool) {
	if len(q.events) == 0 {
		return Event{}, false
	}
	head := q.events[0]
	q.events = q.events[1:]
	return head, true
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.events)
}

// Snapshot returns a copy of the pending events without consuming them.
func (q *Queue) Snapshot() []Event {
	out := make([]Event, len(q.events))
	copy(out, q.events)
	return out
}
