package wire

import "github.com/jabolina/roomcast/pkg/mcast/types"

// Basic is the unordered message, only tagged with its room.
type Basic struct {
	Room    types.Room
	Content string
}

// EncodeBasic writes the message as `room+content`.
func EncodeBasic(m Basic) ([]byte, error) {
	if err := verifyContent(m.Content); err != nil {
		return nil, err
	}
	return join(formatRoom(m.Room), m.Content), nil
}

// DecodeBasic reads a message written by EncodeBasic.
func DecodeBasic(data []byte) (Basic, error) {
	fields, err := split(data, 2)
	if err != nil {
		return Basic{}, err
	}

	room, err := parseRoom(fields[0])
	if err != nil {
		return Basic{}, err
	}
	return Basic{Room: room, Content: fields[1]}, nil
}
