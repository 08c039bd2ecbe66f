package protocol

import (
	"fmt"

	"github.com/jabolina/roomcast/pkg/mcast/types"
	"github.com/jabolina/roomcast/pkg/mcast/wire"
)

// The FIFO state of a single room.
type fifoRoom struct {
	// Last sequence this replica used in the room.
	sequence uint64

	// Last sequence delivered from each replica.
	delivered []uint64

	// Messages from each replica waiting for the previous sequences.
	holdback []map[uint64]string
}

// Messages from the same replica into the same room are delivered in
// the order they were sent. A missing sequence blocks that replica in
// that room until it arrives, there is no retransmission.
type fifo struct {
	*group
	state map[types.Room]*fifoRoom
}

func newFIFO(g *group) *fifo {
	f := &fifo{group: g, state: make(map[types.Room]*fifoRoom)}
	g.eachRoom(func(room types.Room) {
		s := &fifoRoom{
			delivered: make([]uint64, g.size),
			holdback:  make([]map[uint64]string, g.size),
		}
		for i := range s.holdback {
			s.holdback[i] = make(map[uint64]string)
		}
		f.state[room] = s
	})
	return f
}

func (f *fifo) Multicast(room types.Room, content string) (Result, error) {
	var result Result
	if err := f.verifyRoom(room); err != nil {
		return result, err
	}

	s := f.state[room]
	data, err := wire.EncodeSequenced(wire.Sequenced{Sequence: s.sequence + 1, Room: room, Content: content})
	if err != nil {
		return result, err
	}

	s.sequence++
	f.broadcast(&result, data)
	return result, nil
}

func (f *fifo) Receive(from types.ReplicaID, data []byte) (Result, error) {
	var result Result
	if err := f.verifyReplica(from); err != nil {
		return result, err
	}

	m, err := wire.DecodeSequenced(data)
	if err != nil {
		return result, err
	}

	if err = f.verifyRoom(m.Room); err != nil {
		return result, err
	}

	s := f.state[m.Room]
	held := s.holdback[from]
	if _, exists := held[m.Sequence]; exists || m.Sequence <= s.delivered[from] {
		f.log.Debug("discarding duplicated message", "room", m.Room, "from", from, "sequence", m.Sequence)
		return result, nil
	}

	held[m.Sequence] = m.Content
	f.stall.Hold(f.key(m.Room, from, m.Sequence), fmt.Sprintf("sequence %d", s.delivered[from]+1))

	for {
		next := s.delivered[from] + 1
		content, ok := held[next]
		if !ok {
			break
		}

		result.deliver(m.Room, content)
		delete(held, next)
		s.delivered[from] = next
		f.stall.Release(f.key(m.Room, from, next))
	}
	return result, nil
}

func (f *fifo) key(room types.Room, from types.ReplicaID, sequence uint64) string {
	return fmt.Sprintf("fifo/%d/%d/%d", room, from, sequence)
}
