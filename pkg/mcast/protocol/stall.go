package protocol

import (
	"sync/atomic"
	"time"

	"github.com/ReneKroon/ttlcache"
	"github.com/hashicorp/go-hclog"
)

// StallDetector warns about messages held back for too long.
// Messages are never retransmitted, a lost datagram blocks its
// chain forever, this only makes the situation visible.
type StallDetector interface {
	// Hold starts watching the message with the given key.
	Hold(key string, waiting string)

	// Release stops watching the message, it was delivered.
	Release(key string)

	// Close stops the detector.
	Close()
}

type heldMessage struct {
	waiting  string
	since    time.Time
	released int32
}

type ttlStallDetector struct {
	cache *ttlcache.Cache
}

// NewStallDetector creates a detector that logs a warning when a
// message is held for longer than the timeout. A zero timeout
// returns a detector that does nothing.
func NewStallDetector(timeout time.Duration, log hclog.Logger) StallDetector {
	if timeout <= 0 {
		return noStallDetector{}
	}

	cache := ttlcache.NewCache()
	cache.SetTTL(timeout)
	cache.SetExpirationCallback(func(key string, value interface{}) {
		held := value.(*heldMessage)
		if atomic.LoadInt32(&held.released) == 0 {
			log.Warn("message held back without progress",
				"key", key, "waiting", held.waiting, "held", time.Since(held.since))
		}
	})
	return &ttlStallDetector{cache: cache}
}

func (t *ttlStallDetector) Hold(key string, waiting string) {
	t.cache.Set(key, &heldMessage{waiting: waiting, since: time.Now()})
}

func (t *ttlStallDetector) Release(key string) {
	if value, ok := t.cache.Get(key); ok {
		atomic.StoreInt32(&value.(*heldMessage).released, 1)
	}
	t.cache.Remove(key)
}

func (t *ttlStallDetector) Close() {
	t.cache.Close()
}

type noStallDetector struct{}

func (noStallDetector) Hold(string, string) {}

func (noStallDetector) Release(string) {}

func (noStallDetector) Close() {}
