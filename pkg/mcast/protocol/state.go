package protocol

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/jabolina/roomcast/pkg/mcast/types"
)

// The state shared by every ordering: who we are, the size of the
// group and which rooms exist.
type group struct {
	self  types.ReplicaID
	size  int
	rooms int
	log   hclog.Logger
	stall StallDetector
}

func newGroup(configuration *types.Configuration) *group {
	log := configuration.Logger.Named(configuration.Ordering.String())
	return &group{
		self:  configuration.Self,
		size:  configuration.Size(),
		rooms: configuration.Rooms,
		log:   log,
		stall: NewStallDetector(configuration.StallTimeout, log),
	}
}

func (g *group) verifyRoom(room types.Room) error {
	if room < 1 || int(room) > g.rooms {
		return fmt.Errorf("%w %d, rooms go from 1 to %d", ErrUnknownRoom, room, g.rooms)
	}
	return nil
}

func (g *group) verifyReplica(id types.ReplicaID) error {
	if id < 0 || int(id) >= g.size {
		return fmt.Errorf("%w %d in group of %d", ErrUnknownReplica, id, g.size)
	}
	return nil
}

// Address the data to every replica, self included.
func (g *group) broadcast(result *Result, data []byte) {
	for i := 0; i < g.size; i++ {
		result.send(types.ReplicaID(i), data)
	}
}

// Address the data to every replica but self.
func (g *group) broadcastOthers(result *Result, data []byte) {
	for i := 0; i < g.size; i++ {
		if types.ReplicaID(i) != g.self {
			result.send(types.ReplicaID(i), data)
		}
	}
}

// Iterate the valid rooms.
func (g *group) eachRoom(f func(room types.Room)) {
	for i := 1; i <= g.rooms; i++ {
		f(types.Room(i))
	}
}

func (g *group) Close() error {
	g.stall.Close()
	return nil
}
