package wire

import (
	"strings"

	"github.com/jabolina/roomcast/pkg/mcast/types"
)

const clockSeparator = ","

// Stamped is the causal message, carrying the vector clock
// snapshot of the sender.
type Stamped struct {
	Clock   []uint64
	Sender  types.ReplicaID
	Room    types.Room
	Content string
}

// EncodeStamped writes the message as `c0,c1,...+sender+room+content`.
func EncodeStamped(m Stamped) ([]byte, error) {
	if len(m.Clock) == 0 {
		return nil, malformed("empty vector clock")
	}

	if err := verifyContent(m.Content); err != nil {
		return nil, err
	}

	entries := make([]string, len(m.Clock))
	for i, value := range m.Clock {
		entries[i] = formatUint(value)
	}
	return join(
		strings.Join(entries, clockSeparator),
		formatReplica(m.Sender),
		formatRoom(m.Room),
		m.Content), nil
}

// DecodeStamped reads a message written by EncodeStamped.
func DecodeStamped(data []byte) (Stamped, error) {
	fields, err := split(data, 4)
	if err != nil {
		return Stamped{}, err
	}

	entries := strings.Split(fields[0], clockSeparator)
	clock := make([]uint64, len(entries))
	for i, entry := range entries {
		if clock[i], err = parseUint(entry, "clock entry"); err != nil {
			return Stamped{}, err
		}
	}

	sender, err := parseReplica(fields[1], "sender")
	if err != nil {
		return Stamped{}, err
	}

	if int(sender) >= len(clock) {
		return Stamped{}, malformed("sender %d outside clock of size %d", sender, len(clock))
	}

	room, err := parseRoom(fields[2])
	if err != nil {
		return Stamped{}, err
	}

	return Stamped{Clock: clock, Sender: sender, Room: room, Content: fields[3]}, nil
}
