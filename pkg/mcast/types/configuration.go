package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultRooms is the number of chat rooms available when
	// nothing is configured.
	DefaultRooms = 10

	// DefaultResolvedTTL is how long a delivered total order identity
	// stays reserved at its origin.
	DefaultResolvedTTL = 30 * time.Second

	// MaxReplicas is the greatest group supported.
	MaxReplicas = 1024
)

var (
	ErrEmptyGroup   = errors.New("group has no replicas")
	ErrSelfNotFound = errors.New("self is not part of the group")
	ErrNoRooms      = errors.New("at least one room is required")
	ErrGroupTooBig  = errors.New("group is too big")
)

// Configuration holds everything a replica needs to start
// processing messages.
type Configuration struct {
	// Which replica of the group this process is.
	Self ReplicaID

	// The ordered group of replicas, the index of each
	// replica is its identifier.
	Group []Replica

	// Number of rooms, valid rooms go from 1 up to Rooms.
	Rooms int

	// The delivery discipline used by the replicas.
	Ordering Ordering

	// When a message stays held back longer than this a warning is
	// logged. Zero disables the stall detection.
	StallTimeout time.Duration

	// How long the origin refuses to multicast again content it
	// just had agreed with the total order. Doubled when applied.
	ResolvedTTL time.Duration

	// Stable storage for the delivery log.
	Storage Storage

	// Logger to be used by the replica.
	Logger hclog.Logger
}

// Size returns the number of replicas in the group.
func (c *Configuration) Size() int {
	return len(c.Group)
}

// ValidateConfiguration verifies the configuration can be used and
// fills in the defaults for the optional values.
func ValidateConfiguration(c *Configuration) error {
	if len(c.Group) == 0 {
		return ErrEmptyGroup
	}

	if len(c.Group) > MaxReplicas {
		return fmt.Errorf("%w: %d replicas, at most %d", ErrGroupTooBig, len(c.Group), MaxReplicas)
	}

	if c.Self < 0 || int(c.Self) >= len(c.Group) {
		return fmt.Errorf("replica %d with group of %d: %w", c.Self, len(c.Group), ErrSelfNotFound)
	}

	if c.Rooms < 0 {
		return ErrNoRooms
	}

	if c.Rooms == 0 {
		c.Rooms = DefaultRooms
	}

	if c.Ordering > Causal {
		return fmt.Errorf("unknown %s", c.Ordering)
	}

	if c.ResolvedTTL <= 0 {
		c.ResolvedTTL = DefaultResolvedTTL
	}

	if c.Logger == nil {
		c.Logger = NewDefaultLogger(fmt.Sprintf("replica-%d", c.Self+1), false)
	}
	return nil
}
