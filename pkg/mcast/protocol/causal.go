package protocol

import (
	"fmt"

	"github.com/jabolina/roomcast/pkg/mcast/types"
	"github.com/jabolina/roomcast/pkg/mcast/wire"
)

type causalEntry struct {
	stamp   VectorClock
	sender  types.ReplicaID
	content string
}

// The causal state of a single room.
type causalRoom struct {
	clock    VectorClock
	holdback []causalEntry
}

// A message is delivered only after every message that causally
// precedes it. Concurrent messages can be delivered in a different
// order by each replica. The origin delivers its own message when
// multicasting it and is not among the destinations.
type causal struct {
	*group
	state map[types.Room]*causalRoom
}

func newCausal(g *group) *causal {
	c := &causal{group: g, state: make(map[types.Room]*causalRoom)}
	g.eachRoom(func(room types.Room) {
		c.state[room] = &causalRoom{clock: NewVectorClock(g.size)}
	})
	return c
}

func (c *causal) Multicast(room types.Room, content string) (Result, error) {
	var result Result
	if err := c.verifyRoom(room); err != nil {
		return result, err
	}

	s := c.state[room]
	stamp := s.clock.Copy()
	stamp.Tick(c.self)
	data, err := wire.EncodeStamped(wire.Stamped{Clock: stamp, Sender: c.self, Room: room, Content: content})
	if err != nil {
		return result, err
	}

	// Delivered locally in the same step the clock counts it, so
	// nothing that depends on it is delivered first.
	s.clock.Tick(c.self)
	result.deliver(room, content)
	c.broadcastOthers(&result, data)
	return result, nil
}

func (c *causal) Receive(from types.ReplicaID, data []byte) (Result, error) {
	var result Result
	if err := c.verifyReplica(from); err != nil {
		return result, err
	}

	m, err := wire.DecodeStamped(data)
	if err != nil {
		return result, err
	}

	if len(m.Clock) != c.size {
		return result, fmt.Errorf("%w: clock of size %d in group of %d", wire.ErrMalformed, len(m.Clock), c.size)
	}

	if m.Sender != from {
		return result, fmt.Errorf("%w: message from %d stamped by %d", wire.ErrMalformed, from, m.Sender)
	}

	if err = c.verifyRoom(m.Room); err != nil {
		return result, err
	}

	// Already delivered when sent.
	if from == c.self {
		c.log.Debug("discarding own message", "room", m.Room, "clock", m.Clock)
		return result, nil
	}

	s := c.state[m.Room]
	stamp := VectorClock(m.Clock)
	if stamp[from] <= s.clock[from] || c.isHeld(s, from, stamp[from]) {
		c.log.Debug("discarding duplicated message", "room", m.Room, "from", from, "clock", stamp)
		return result, nil
	}

	s.holdback = append(s.holdback, causalEntry{stamp: stamp, sender: from, content: m.Content})
	c.stall.Hold(c.key(m.Room, from, stamp[from]), fmt.Sprintf("predecessors of %v", stamp))
	c.drain(&result, m.Room, s)
	return result, nil
}

// Deliver held messages until a whole pass makes no progress, since a
// single delivery can unblock others.
func (c *causal) drain(result *Result, room types.Room, s *causalRoom) {
	for progress := true; progress; {
		progress = false
		for i, entry := range s.holdback {
			if !s.clock.CanDeliver(entry.sender, entry.stamp) {
				continue
			}

			result.deliver(room, entry.content)
			s.clock.Tick(entry.sender)
			s.holdback = append(s.holdback[:i], s.holdback[i+1:]...)
			c.stall.Release(c.key(room, entry.sender, entry.stamp[entry.sender]))
			progress = true
			break
		}
	}
}

func (c *causal) isHeld(s *causalRoom, sender types.ReplicaID, position uint64) bool {
	for _, entry := range s.holdback {
		if entry.sender == sender && entry.stamp[sender] == position {
			return true
		}
	}
	return false
}

func (c *causal) key(room types.Room, sender types.ReplicaID, position uint64) string {
	return fmt.Sprintf("causal/%d/%d/%d", room, sender, position)
}
