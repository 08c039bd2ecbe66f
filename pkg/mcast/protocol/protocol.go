// Package protocol holds the ordering engine. Each ordering is a state
// machine that receives the raw datagrams exchanged by the replicas and
// decides when a message is safe to be delivered to the local clients.
//
// The engine does not perform any I/O. Every call returns what must be
// sent to the other replicas and what must be delivered, so the caller
// decides how to dispatch. The engine is not safe for concurrent use,
// a replica feeds it from a single goroutine.
//
// The unordered, FIFO and total orderings send a multicast message to
// the whole group, the local replica included, and deliver locally when
// the replica receives its own datagram. The causal ordering delivers
// locally while multicasting, since its clock already counts the message,
// and sends only to the other replicas.
package protocol

import (
	"errors"
	"fmt"
	"io"

	"github.com/jabolina/roomcast/pkg/mcast/types"
)

var (
	ErrUnknownRoom    = errors.New("unknown room")
	ErrUnknownReplica = errors.New("unknown replica")
	ErrPendingContent = errors.New("identical content was multicast recently")
)

// Result is what must be done after the engine processed a message.
type Result struct {
	// Messages to be sent to the replicas.
	Sends []types.Outbound

	// Messages ready to be handed to the local clients.
	Deliveries []types.Delivery
}

func (r *Result) send(to types.ReplicaID, data []byte) {
	r.Sends = append(r.Sends, types.Outbound{To: to, Data: data})
}

func (r *Result) deliver(room types.Room, content string) {
	r.Deliveries = append(r.Deliveries, types.Delivery{Room: room, Content: content})
}

// The Protocol interface is the entry point to interact with the
// ordering engine.
type Protocol interface {
	io.Closer

	// Multicast tags the content with the ordering metadata and
	// returns the messages to send to every replica.
	Multicast(room types.Room, content string) (Result, error)

	// Receive processes a datagram sent by the given replica. This
	// must only be called for datagrams sent by replicas, client
	// content enters the engine only through Multicast.
	Receive(from types.ReplicaID, data []byte) (Result, error)
}

// NewProtocol creates the ordering engine selected in the configuration,
// with the state for every room allocated upfront.
func NewProtocol(configuration *types.Configuration) (Protocol, error) {
	if err := types.ValidateConfiguration(configuration); err != nil {
		return nil, err
	}

	g := newGroup(configuration)
	switch configuration.Ordering {
	case types.Unordered:
		return newUnordered(g), nil
	case types.FIFO:
		return newFIFO(g), nil
	case types.Total:
		return newTotal(g, configuration.ResolvedTTL), nil
	case types.Causal:
		return newCausal(g), nil
	default:
		return nil, fmt.Errorf("unknown %s", configuration.Ordering)
	}
}
