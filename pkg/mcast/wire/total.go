package wire

import (
	"math"

	"github.com/jabolina/roomcast/pkg/mcast/types"
)

// MaxPriority is the greatest priority accepted. Priorities are
// packed together with the proposer into a signed 64 bits score,
// anything above this could not be ordered.
const MaxPriority = math.MaxInt64 / (types.MaxReplicas + 1) / 2

// Kind identifies the step of the total order agreement.
type Kind uint8

const (
	// The origin asks every replica for a priority.
	New Kind = iota + 1

	// A replica answers the origin with its proposed priority.
	Proposal

	// The origin announces the final priority.
	Agreement
)

func (k Kind) String() string {
	switch k {
	case New:
		return "NEW"
	case Proposal:
		return "PROPOSAL"
	case Agreement:
		return "AGREEMENT"
	default:
		return "UNKNOWN"
	}
}

// Ordered is the message exchanged by the total order agreement.
// On a NEW message the proposer is the origin and the priority
// field carries the origin's NEW counter in the room. On a PROPOSAL it is the replica proposing the priority and
// on an AGREEMENT the replica that won the agreement.
type Ordered struct {
	Kind     Kind
	Proposer types.ReplicaID
	Priority uint64
	Room     types.Room
	Content  string
}

// EncodeOrdered writes the message as `kind+proposer+priority+room+content`.
func EncodeOrdered(m Ordered) ([]byte, error) {
	if m.Kind < New || m.Kind > Agreement {
		return nil, malformed("kind %d", m.Kind)
	}

	if m.Priority > MaxPriority {
		return nil, malformed("priority %d", m.Priority)
	}

	if err := verifyContent(m.Content); err != nil {
		return nil, err
	}
	return join(
		formatUint(uint64(m.Kind)),
		formatReplica(m.Proposer),
		formatUint(m.Priority),
		formatRoom(m.Room),
		m.Content), nil
}

// DecodeOrdered reads a message written by EncodeOrdered.
func DecodeOrdered(data []byte) (Ordered, error) {
	fields, err := split(data, 5)
	if err != nil {
		return Ordered{}, err
	}

	kind, err := parseUint(fields[0], "kind")
	if err != nil {
		return Ordered{}, err
	}

	if kind < uint64(New) || kind > uint64(Agreement) {
		return Ordered{}, malformed("kind %d", kind)
	}

	proposer, err := parseReplica(fields[1], "proposer")
	if err != nil {
		return Ordered{}, err
	}

	priority, err := parseUint(fields[2], "priority")
	if err != nil {
		return Ordered{}, err
	}

	if priority > MaxPriority {
		return Ordered{}, malformed("priority %d above %d", priority, uint64(MaxPriority))
	}

	room, err := parseRoom(fields[3])
	if err != nil {
		return Ordered{}, err
	}

	return Ordered{
		Kind:     Kind(kind),
		Proposer: proposer,
		Priority: priority,
		Room:     room,
		Content:  fields[4],
	}, nil
}
