package types

import (
	"fmt"
	"strings"
)

// ReplicaID is the position of a replica inside the group,
// going from 0 up to N-1. The group order never changes.
type ReplicaID int

// Room is an independent multicast domain. Messages posted in
// different rooms have no ordering relation between them.
type Room int

// Ordering selects which delivery discipline the replicas use.
// Every replica in the group must be started with the same value.
type Ordering uint8

const (
	// Messages are delivered as soon as they arrive.
	Unordered Ordering = iota

	// Messages from the same replica into the same room are
	// delivered in the order they were sent.
	FIFO

	// Every replica delivers the messages of a room in the
	// same relative order.
	Total

	// Messages are delivered only after the messages that
	// causally precede them.
	Causal
)

var orderingNames = map[Ordering]string{
	Unordered: "unordered",
	FIFO:      "fifo",
	Total:     "total",
	Causal:    "causal",
}

func (o Ordering) String() string {
	if name, ok := orderingNames[o]; ok {
		return name
	}
	return fmt.Sprintf("ordering(%d)", uint8(o))
}

// ParseOrdering reads the ordering from its name, ignoring case.
func ParseOrdering(value string) (Ordering, error) {
	for ordering, name := range orderingNames {
		if strings.EqualFold(name, value) {
			return ordering, nil
		}
	}
	return Unordered, fmt.Errorf("invalid ordering %q", value)
}

// Replica holds the information about a single server in the group.
type Replica struct {
	// Position in the group.
	ID ReplicaID

	// Address other replicas use to reach this one.
	Forward string

	// Address the replica binds to, defaults to the forward address.
	Bind string
}

// Outbound is a raw message that must be sent to a single replica.
type Outbound struct {
	// Replica that will receive the message.
	To ReplicaID

	// Encoded message.
	Data []byte
}

// Delivery is a message certified to be handed to the
// local clients of a room.
type Delivery struct {
	Room    Room
	Content string
}
