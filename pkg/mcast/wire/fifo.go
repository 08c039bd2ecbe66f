package wire

import "github.com/jabolina/roomcast/pkg/mcast/types"

// Sequenced is the FIFO message, tagged with the per room
// sequence number of the sender.
type Sequenced struct {
	Sequence uint64
	Room     types.Room
	Content  string
}

// EncodeSequenced writes the message as `sequence+room+content`.
func EncodeSequenced(m Sequenced) ([]byte, error) {
	if err := verifyContent(m.Content); err != nil {
		return nil, err
	}
	return join(formatUint(m.Sequence), formatRoom(m.Room), m.Content), nil
}

// DecodeSequenced reads a message written by EncodeSequenced.
// Sequences start at 1, a zero sequence is malformed.
func DecodeSequenced(data []byte) (Sequenced, error) {
	fields, err := split(data, 3)
	if err != nil {
		return Sequenced{}, err
	}

	sequence, err := parseUint(fields[0], "sequence")
	if err != nil {
		return Sequenced{}, err
	}

	if sequence == 0 {
		return Sequenced{}, malformed("sequence must start at 1")
	}

	room, err := parseRoom(fields[1])
	if err != nil {
		return Sequenced{}, err
	}
	return Sequenced{Sequence: sequence, Room: room, Content: fields[2]}, nil
}
