package protocol

import (
	"fmt"
	"time"

	"github.com/jabolina/roomcast/pkg/mcast/helper"
	"github.com/jabolina/roomcast/pkg/mcast/hpq"
	"github.com/jabolina/roomcast/pkg/mcast/types"
	"github.com/jabolina/roomcast/pkg/mcast/wire"
)

// The NEW messages an origin sent into a room that were already seen.
// Numbers are mostly contiguous, only the ones above the first gap
// are kept individually.
type newWatermark struct {
	contiguous uint64
	above      map[uint64]bool
}

func (w *newWatermark) seen(number uint64) bool {
	return number <= w.contiguous || w.above[number]
}

func (w *newWatermark) mark(number uint64) {
	w.above[number] = true
	for w.above[w.contiguous+1] {
		delete(w.above, w.contiguous+1)
		w.contiguous++
	}
}

// The total order state of a single room.
type totalRoom struct {
	// Greatest priority this replica proposed in the room.
	proposed LogicalClock

	// Greatest agreed priority this replica has seen in the room.
	agreed LogicalClock

	// Number of the last NEW this replica sent in the room.
	sent uint64

	// NEW messages already received from each origin.
	received []*newWatermark

	// Messages waiting for the agreed priority, or for the messages
	// with lower priority to be delivered.
	holdback hpq.Queue
}

// Every replica delivers the messages of a room in the same order,
// decided with a three phase agreement. The origin sends NEW to every
// replica. Each replica holds the message back with a tentative
// priority, greater than anything it proposed or saw agreed, and
// answers the origin with a PROPOSAL. When the origin has exactly one
// proposal from each replica, it selects the greatest priority, on a
// tie the smaller proposer, and sends the AGREEMENT to every replica.
//
// When the agreement arrives the message becomes deliverable, and the
// head of the holdback queue is delivered while it is deliverable. A
// message is identified by its origin, room and content.
//
// Each origin numbers its NEW messages in a room, so a NEW that
// arrives again after its message was delivered is recognized and
// discarded. Otherwise it would become a tentative entry that no
// agreement ever resolves, blocking the room.
type total struct {
	*group
	state map[types.Room]*totalRoom

	// Elections for the messages this replica originated.
	ballots *BallotBox

	// Identities this replica recently had agreed as origin. Until
	// they expire the same content is refused, so late duplicated
	// proposals and agreements can not be confused with a new
	// message with the same identity.
	recent hpq.Purgatory
}

func newTotal(g *group, resolvedTTL time.Duration) *total {
	t := &total{
		group:   g,
		state:   make(map[types.Room]*totalRoom),
		ballots: NewBallotBox(),
		recent:  hpq.NewPurgatory(2 * resolvedTTL),
	}
	g.eachRoom(func(room types.Room) {
		s := &totalRoom{
			proposed: NewClock(),
			agreed:   NewClock(),
			received: make([]*newWatermark, g.size),
			holdback: hpq.NewQueue(g.size),
		}
		for i := range s.received {
			s.received[i] = &newWatermark{above: make(map[uint64]bool)}
		}
		t.state[room] = s
	})
	return t
}

func (t *total) identity(origin types.ReplicaID, room types.Room, content string) string {
	return fmt.Sprintf("%d|%d|%s", origin, room, content)
}

func (t *total) Multicast(room types.Room, content string) (Result, error) {
	var result Result
	if err := t.verifyRoom(room); err != nil {
		return result, err
	}

	s := t.state[room]
	id := t.identity(t.self, room, content)
	if t.ballots.IsOpen(id) || t.recent.Contains(id) {
		return result, ErrPendingContent
	}

	if _, live := s.holdback.Get(id); live {
		return result, ErrPendingContent
	}

	data, err := wire.EncodeOrdered(wire.Ordered{
		Kind:     wire.New,
		Proposer: t.self,
		Priority: s.sent + 1,
		Room:     room,
		Content:  content,
	})
	if err != nil {
		return result, err
	}

	s.sent++
	t.ballots.Open(id)
	t.broadcast(&result, data)
	return result, nil
}

func (t *total) Receive(from types.ReplicaID, data []byte) (Result, error) {
	var result Result
	if err := t.verifyReplica(from); err != nil {
		return result, err
	}

	m, err := wire.DecodeOrdered(data)
	if err != nil {
		return result, err
	}

	if err = t.verifyRoom(m.Room); err != nil {
		return result, err
	}

	if err = t.verifyReplica(m.Proposer); err != nil {
		return result, fmt.Errorf("%s proposer: %w", m.Kind, err)
	}

	if m.Kind != wire.Agreement && m.Proposer != from {
		return result, fmt.Errorf("%w: %s from %d carries proposer %d", wire.ErrMalformed, m.Kind, from, m.Proposer)
	}

	switch m.Kind {
	case wire.New:
		err = t.propose(&result, from, m)
	case wire.Proposal:
		err = t.collect(&result, m)
	case wire.Agreement:
		t.agree(&result, from, m)
	}
	return result, err
}

// Answer the origin of a NEW message with a priority. A duplicated NEW
// is answered with the priority proposed the first time, while the
// message is still held.
func (t *total) propose(result *Result, origin types.ReplicaID, m wire.Ordered) error {
	if m.Priority == 0 {
		return fmt.Errorf("%w: NEW from %d without number", wire.ErrMalformed, origin)
	}

	id := t.identity(origin, m.Room, m.Content)
	s := t.state[m.Room]
	entry, live := s.holdback.Get(id)
	if live && entry.Deliverable {
		t.log.Debug("discarding new message already agreed", "room", m.Room, "origin", origin)
		return nil
	}

	if !live {
		if s.received[origin].seen(m.Priority) {
			t.log.Debug("discarding new message already delivered", "room", m.Room, "origin", origin, "number", m.Priority)
			return nil
		}

		priority := helper.MaxValue(s.proposed.Tock(), s.agreed.Tock()) + 1
		s.proposed.Leap(priority)
		s.received[origin].mark(m.Priority)
		entry = hpq.Entry{
			Identity: id,
			Priority: priority,
			Proposer: t.self,
			Room:     m.Room,
			Content:  m.Content,
		}
		s.holdback.Push(entry)
		t.stall.Hold(id, fmt.Sprintf("agreement from replica %d", origin))
	}

	data, err := wire.EncodeOrdered(wire.Ordered{
		Kind:     wire.Proposal,
		Proposer: t.self,
		Priority: entry.Priority,
		Room:     m.Room,
		Content:  m.Content,
	})
	if err != nil {
		return err
	}

	result.send(origin, data)
	return nil
}

// Gather the proposal for a message this replica originated. The
// agreement is sent once, when every replica proposed.
func (t *total) collect(result *Result, m wire.Ordered) error {
	id := t.identity(t.self, m.Room, m.Content)
	if !t.ballots.IsOpen(id) {
		t.log.Debug("discarding proposal without election", "room", m.Room, "proposer", m.Proposer)
		return nil
	}

	if !t.ballots.Insert(id, m.Proposer, m.Priority) {
		t.log.Debug("discarding duplicated proposal", "room", m.Room, "proposer", m.Proposer)
		return nil
	}

	if t.ballots.ElectionSize(id) != t.size {
		return nil
	}

	proposer, priority := t.ballots.Elect(id)
	data, err := wire.EncodeOrdered(wire.Ordered{
		Kind:     wire.Agreement,
		Proposer: proposer,
		Priority: priority,
		Room:     m.Room,
		Content:  m.Content,
	})
	if err != nil {
		return err
	}

	t.ballots.Remove(id)
	t.recent.Set(id)
	t.broadcast(result, data)
	return nil
}

// Apply the agreed priority and deliver the head of the queue while it
// is deliverable. An agreement for an unknown or already agreed
// message changes nothing.
func (t *total) agree(result *Result, origin types.ReplicaID, m wire.Ordered) {
	id := t.identity(origin, m.Room, m.Content)
	s := t.state[m.Room]
	entry, live := s.holdback.Get(id)
	if !live || entry.Deliverable {
		t.log.Debug("ignoring agreement", "room", m.Room, "origin", origin, "known", live)
		return
	}

	entry.Priority = m.Priority
	entry.Proposer = m.Proposer
	entry.Deliverable = true
	s.holdback.Push(entry)
	s.agreed.Leap(m.Priority)

	for {
		head, ok := s.holdback.PopDeliverable()
		if !ok {
			break
		}

		t.stall.Release(head.Identity)
		result.deliver(head.Room, head.Content)
	}
}
