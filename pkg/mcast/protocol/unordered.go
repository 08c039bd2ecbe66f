package protocol

import (
	"github.com/jabolina/roomcast/pkg/mcast/types"
	"github.com/jabolina/roomcast/pkg/mcast/wire"
)

// Messages are delivered as soon as they arrive, without any
// ordering guarantee and without any state.
type unordered struct {
	*group
}

func newUnordered(g *group) *unordered {
	return &unordered{group: g}
}

func (u *unordered) Multicast(room types.Room, content string) (Result, error) {
	var result Result
	if err := u.verifyRoom(room); err != nil {
		return result, err
	}

	data, err := wire.EncodeBasic(wire.Basic{Room: room, Content: content})
	if err != nil {
		return result, err
	}

	u.broadcast(&result, data)
	return result, nil
}

func (u *unordered) Receive(from types.ReplicaID, data []byte) (Result, error) {
	var result Result
	if err := u.verifyReplica(from); err != nil {
		return result, err
	}

	m, err := wire.DecodeBasic(data)
	if err != nil {
		return result, err
	}

	if err = u.verifyRoom(m.Room); err != nil {
		return result, err
	}

	result.deliver(m.Room, m.Content)
	return result, nil
}
