package protocol

import "github.com/jabolina/roomcast/pkg/mcast/types"

// VectorClock counts, for each replica, how many of its messages
// were delivered in a room.
type VectorClock []uint64

func NewVectorClock(size int) VectorClock {
	return make(VectorClock, size)
}

// Copy returns a snapshot of the clock.
func (v VectorClock) Copy() VectorClock {
	return append(VectorClock{}, v...)
}

// Tick increments the entry of the given replica.
func (v VectorClock) Tick(id types.ReplicaID) {
	v[id]++
}

// CanDeliver verifies if a message stamped by sender can be
// delivered on top of v. It must be the next message from the
// sender, and every message the sender had seen from the others
// must be delivered already.
func (v VectorClock) CanDeliver(sender types.ReplicaID, stamp VectorClock) bool {
	if stamp[sender] != v[sender]+1 {
		return false
	}

	for i := range v {
		if types.ReplicaID(i) != sender && stamp[i] > v[i] {
			return false
		}
	}
	return true
}
