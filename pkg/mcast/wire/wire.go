// Package wire holds the text encoding exchanged between replicas.
//
// Every message is a list of fields joined by Delimiter, the chat
// content is always the last field. The content itself must not
// contain the delimiter, encoding such content fails with
// ErrDelimiterInContent.
package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jabolina/roomcast/pkg/mcast/types"
)

// Delimiter separates the fields of a message.
const Delimiter = "+"

var (
	ErrMalformed          = errors.New("malformed message")
	ErrDelimiterInContent = errors.New("content contains the field delimiter")
)

func malformed(format string, v ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, v...))
}

// Break the data into exactly the given number of fields. The last
// field takes whatever remains.
func split(data []byte, fields int) ([]string, error) {
	parts := strings.SplitN(string(data), Delimiter, fields)
	if len(parts) != fields {
		return nil, malformed("expected %d fields, found %d", fields, len(parts))
	}
	return parts, nil
}

func join(fields ...string) []byte {
	return []byte(strings.Join(fields, Delimiter))
}

func verifyContent(content string) error {
	if strings.Contains(content, Delimiter) {
		return ErrDelimiterInContent
	}
	return nil
}

func parseUint(field, name string) (uint64, error) {
	value, err := strconv.ParseUint(field, 10, 64)
	if err != nil {
		return 0, malformed("%s %q", name, field)
	}
	return value, nil
}

func parseRoom(field string) (types.Room, error) {
	value, err := strconv.Atoi(field)
	if err != nil || value <= 0 {
		return 0, malformed("room %q", field)
	}
	return types.Room(value), nil
}

func parseReplica(field, name string) (types.ReplicaID, error) {
	value, err := strconv.Atoi(field)
	if err != nil || value < 0 {
		return 0, malformed("%s %q", name, field)
	}
	return types.ReplicaID(value), nil
}

func formatRoom(room types.Room) string {
	return strconv.Itoa(int(room))
}

func formatReplica(id types.ReplicaID) string {
	return strconv.Itoa(int(id))
}

func formatUint(value uint64) string {
	return strconv.FormatUint(value, 10)
}
