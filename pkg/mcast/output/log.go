package output

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-msgpack/codec"
	"github.com/jabolina/roomcast/pkg/mcast/types"
)

// Entry is what the log keeps for each delivered message.
type Entry struct {
	// Position in the log, starting at 1.
	Sequence uint64

	Room    types.Room
	Content string
}

// Log abstraction for the messages delivered by a replica.
// This is an append only log, where every delivery is added
// at the tail.
//
// The log is the delivery order of the replica, so comparing the
// log of two replicas tells whether they agree. Using the total
// order every replica holds the same log for each room.
type Log interface {
	// Append add the delivery to the tail of the log. This is thread-safe.
	Append(delivery types.Delivery) error

	// Dump returns the deliveries of the given room in the order
	// they were appended, at the time of the request.
	Dump(room types.Room) ([]types.Delivery, error)

	// Size is the number of entries in the log.
	Size() uint64
}

// AppendOnlyLog is a Log implementation that encodes every entry
// with msgpack and writes it into a types.Storage, keyed by the
// entry sequence.
type AppendOnlyLog struct {
	// Synchronize operations.
	mutex *sync.Mutex

	// Where the encoded entries are written.
	storage types.Storage

	handle *codec.MsgpackHandle

	// Number of entries appended.
	size uint64
}

func NewLogStructure(storage types.Storage) Log {
	return &AppendOnlyLog{
		mutex:   &sync.Mutex{},
		storage: storage,
		handle:  &codec.MsgpackHandle{},
	}
}

func (a *AppendOnlyLog) key(sequence uint64) []byte {
	return []byte(fmt.Sprintf("log/%d", sequence))
}

func (a *AppendOnlyLog) Append(delivery types.Delivery) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	entry := Entry{
		Sequence: a.size + 1,
		Room:     delivery.Room,
		Content:  delivery.Content,
	}

	var data []byte
	if err := codec.NewEncoderBytes(&data, a.handle).Encode(entry); err != nil {
		return fmt.Errorf("failed encoding entry %d: %w", entry.Sequence, err)
	}

	if err := a.storage.Set(a.key(entry.Sequence), data); err != nil {
		return err
	}

	a.size = entry.Sequence
	return nil
}

func (a *AppendOnlyLog) Dump(room types.Room) ([]types.Delivery, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var deliveries []types.Delivery
	for sequence := uint64(1); sequence <= a.size; sequence++ {
		data, err := a.storage.Get(a.key(sequence))
		if err != nil {
			return nil, err
		}

		var entry Entry
		if err = codec.NewDecoderBytes(data, a.handle).Decode(&entry); err != nil {
			return nil, fmt.Errorf("failed decoding entry %d: %w", sequence, err)
		}

		if entry.Room == room {
			deliveries = append(deliveries, types.Delivery{Room: entry.Room, Content: entry.Content})
		}
	}
	return deliveries, nil
}

func (a *AppendOnlyLog) Size() uint64 {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.size
}
