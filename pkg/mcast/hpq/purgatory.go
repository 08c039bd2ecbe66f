package hpq

import (
	"time"

	"github.com/coocood/freecache"
)

var (
	defaultValue = []byte{0x1}
	cacheSize    = 1024 * 1024
)

// Purgatory remembers identities for a bounded time, so a repeated
// identity can be refused while it is still remembered.
type Purgatory interface {
	// Set will add a new entry to the purgatory.
	// Returns true if the value did not exists previously
	// and false otherwise.
	Set(id string) bool

	// Contains verify if the given value exists in purgatory.
	Contains(id string) bool
}

// TtlPurgatory is structure that implements the Purgatory interface.
// On this implementation, all added entries will have a TTL then
// they will be removed from the purgatory.
type TtlPurgatory struct {
	// delegate structure that will handle all entries.
	delegate *freecache.Cache

	// entry expiration in seconds.
	expiration int
}

// NewPurgatory creates a purgatory where entries live for the given
// duration, rounded up to one second at least.
func NewPurgatory(ttl time.Duration) Purgatory {
	expiration := int(ttl / time.Second)
	if expiration < 1 {
		expiration = 1
	}
	return &TtlPurgatory{
		delegate:   freecache.NewCache(cacheSize),
		expiration: expiration,
	}
}

func (t *TtlPurgatory) Set(id string) bool {
	if t.Contains(id) {
		return false
	}
	return t.delegate.Set([]byte(id), defaultValue, t.expiration) == nil
}

func (t *TtlPurgatory) Contains(id string) bool {
	_, err := t.delegate.Get([]byte(id))
	return err == nil
}
