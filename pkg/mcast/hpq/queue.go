package hpq

import (
	"github.com/jabolina/roomcast/pkg/mcast/types"
	"github.com/wangjia184/sortedset"
)

// Entry is a message held back by the total order agreement.
type Entry struct {
	// Identity of the message inside the room.
	Identity string

	// The proposed priority, or the agreed one after the agreement.
	Priority uint64

	// Replica that proposed the priority, used to break ties.
	Proposer types.ReplicaID

	// The message received its agreed priority.
	Deliverable bool

	Room    types.Room
	Content string
}

// Queue holds the messages of a single room waiting for their
// agreed priority. The head is always the message with the lowest
// (priority, proposer) pair.
type Queue interface {
	// Push adds a new entry, or replaces and re-sorts the entry
	// with the same identity.
	Push(entry Entry)

	// Get the entry with the given identity.
	Get(identity string) (Entry, bool)

	// PopDeliverable removes the head only if it is deliverable.
	PopDeliverable() (Entry, bool)

	// Len returns how many entries are held.
	Len() int

	// Values returns the entries in delivery order.
	Values() []Entry
}

// SortedQueue implements the Queue using a sorted set. The set
// guarantees a single element for each identity while keeping the
// queue behaviour, so only the head needs to be verified when
// delivering.
//
// The score packs the pair (priority, proposer) as
// priority * (width + 1) + proposer + 1, where width is the group
// size. An entry without the agreed priority uses zero in place of
// proposer + 1: its priority is only a lower bound of the agreed one,
// and the agreement may pick any proposer on a tie, so it must stay
// ahead of every agreed entry with the same priority.
type SortedQueue struct {
	set   *sortedset.SortedSet
	width int64
}

// NewQueue creates the queue for a group with the given size.
func NewQueue(groupSize int) *SortedQueue {
	return &SortedQueue{
		set:   sortedset.New(),
		width: int64(groupSize) + 1,
	}
}

func (q *SortedQueue) score(entry Entry) sortedset.SCORE {
	score := int64(entry.Priority) * q.width
	if entry.Deliverable {
		score += int64(entry.Proposer) + 1
	}
	return sortedset.SCORE(score)
}

func (q *SortedQueue) Push(entry Entry) {
	q.set.AddOrUpdate(entry.Identity, q.score(entry), entry)
}

func (q *SortedQueue) Get(identity string) (Entry, bool) {
	node := q.set.GetByKey(identity)
	if node == nil {
		return Entry{}, false
	}
	return node.Value.(Entry), true
}

func (q *SortedQueue) PopDeliverable() (Entry, bool) {
	head := q.set.PeekMin()
	if head == nil {
		return Entry{}, false
	}

	entry := head.Value.(Entry)
	if !entry.Deliverable {
		return Entry{}, false
	}

	q.set.Remove(head.Key())
	return entry, true
}

func (q *SortedQueue) Len() int {
	return q.set.GetCount()
}

func (q *SortedQueue) Values() []Entry {
	if q.set.GetCount() == 0 {
		return nil
	}

	var entries []Entry
	for _, node := range q.set.GetByRankRange(1, -1, false) {
		entries = append(entries, node.Value.(Entry))
	}
	return entries
}
