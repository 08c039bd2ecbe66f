// Package mcast starts the replicas of a chat group. Every replica
// accepts chat clients and multicasts their posts to the whole group,
// delivering them under the configured ordering.
package mcast

import (
	"fmt"
	"io"

	"github.com/jabolina/roomcast/pkg/mcast/core"
	"github.com/jabolina/roomcast/pkg/mcast/definition"
	"github.com/jabolina/roomcast/pkg/mcast/types"
)

// Replica is a running server of the group.
type Replica interface {
	io.Closer

	// Address the replica is bound to.
	Address() string

	// History returns the messages delivered in the room, in the
	// order this replica delivered them.
	History(room types.Room) ([]types.Delivery, error)
}

// NewReplica binds the UDP address of the configured replica and
// starts processing datagrams.
func NewReplica(configuration *types.Configuration) (Replica, error) {
	if err := types.ValidateConfiguration(configuration); err != nil {
		return nil, err
	}

	self := configuration.Group[configuration.Self]
	transport, err := core.NewUDPTransport(self.Bind, configuration.Logger.Named("transport"))
	if err != nil {
		return nil, fmt.Errorf("failed binding %s: %w", self.Bind, err)
	}

	peer, err := core.NewPeer(configuration, transport)
	if err != nil {
		transport.Close()
		return nil, err
	}
	return peer, nil
}

// DefaultConfiguration creates the configuration for the replica at
// the given position of the group. Messages are not ordered and the
// delivery log is kept in memory.
func DefaultConfiguration(group []types.Replica, self types.ReplicaID) *types.Configuration {
	return &types.Configuration{
		Self:     self,
		Group:    group,
		Rooms:    types.DefaultRooms,
		Ordering: types.Unordered,
		Storage:  definition.NewInMemoryStorage(),
		Logger:   types.NewDefaultLogger(fmt.Sprintf("replica-%d", self+1), false),
	}
}
