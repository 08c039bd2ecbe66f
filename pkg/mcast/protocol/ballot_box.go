package protocol

import (
	"sync"

	"github.com/jabolina/roomcast/pkg/mcast/types"
)

// An exchange object to be used when holding information
// about the proposed priorities.
type ballot struct {
	// Which replica proposed the priority.
	from types.ReplicaID

	// The proposed priority.
	priority uint64
}

// BallotBox holds the priorities proposed for the messages this
// replica originated. An election only exists after being opened
// and accepts a single vote from each replica.
type BallotBox struct {
	// Synchronization for operations.
	mutex *sync.Mutex

	// Holds the votes for each message identity.
	votes map[string][]ballot
}

func NewBallotBox() *BallotBox {
	return &BallotBox{
		mutex: &sync.Mutex{},
		votes: make(map[string][]ballot),
	}
}

// Open starts the election for the given key.
func (b *BallotBox) Open(key string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if _, exists := b.votes[key]; !exists {
		b.votes[key] = []ballot{}
	}
}

// IsOpen returns true if the election was opened and not removed.
func (b *BallotBox) IsOpen(key string) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	_, exists := b.votes[key]
	return exists
}

// Insert will add the vote to the given election. Returns false if
// the election is not open or the replica already voted.
func (b *BallotBox) Insert(key string, from types.ReplicaID, priority uint64) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	ballots, exists := b.votes[key]
	if !exists {
		return false
	}

	for _, bl := range ballots {
		if bl.from == from {
			return false
		}
	}

	b.votes[key] = append(ballots, ballot{from: from, priority: priority})
	return true
}

// ElectionSize returns the number of replicas that voted.
func (b *BallotBox) ElectionSize(key string) int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.votes[key])
}

// Elect returns the winner: the greatest priority, and on a tie
// the replica with the smaller identifier.
func (b *BallotBox) Elect(key string) (types.ReplicaID, uint64) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	var winner *ballot
	for i, bl := range b.votes[key] {
		if winner == nil || bl.priority > winner.priority ||
			(bl.priority == winner.priority && bl.from < winner.from) {
			winner = &b.votes[key][i]
		}
	}

	if winner == nil {
		return 0, 0
	}
	return winner.from, winner.priority
}

// Remove will remove the election from the ballot box.
func (b *BallotBox) Remove(key string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	delete(b.votes, key)
}
