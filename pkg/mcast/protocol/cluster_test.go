package protocol

import (
	"math/rand"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/jabolina/roomcast/pkg/mcast/types"
)

type packet struct {
	from types.ReplicaID
	to   types.ReplicaID
	data []byte
}

// A group of engines connected by a simulated network, where the
// datagrams in flight can be delivered in any order.
type testCluster struct {
	t         *testing.T
	engines   []Protocol
	inflight  []packet
	delivered [][]types.Delivery
	rnd       *rand.Rand
}

func createConfiguration(ordering types.Ordering, self types.ReplicaID, size int) *types.Configuration {
	group := make([]types.Replica, size)
	for i := range group {
		group[i] = types.Replica{ID: types.ReplicaID(i)}
	}
	return &types.Configuration{
		Self:     self,
		Group:    group,
		Ordering: ordering,
		Logger:   hclog.NewNullLogger(),
	}
}

func createTestingProtocol(t *testing.T, ordering types.Ordering, self types.ReplicaID, size int) Protocol {
	p, err := NewProtocol(createConfiguration(ordering, self, size))
	if err != nil {
		t.Fatalf("failed creating protocol. %v", err)
	}
	return p
}

func newTestCluster(t *testing.T, ordering types.Ordering, size int, seed int64) *testCluster {
	c := &testCluster{
		t:         t,
		delivered: make([][]types.Delivery, size),
		rnd:       rand.New(rand.NewSource(seed)),
	}
	for i := 0; i < size; i++ {
		c.engines = append(c.engines, createTestingProtocol(t, ordering, types.ReplicaID(i), size))
	}
	return c
}

func (c *testCluster) absorb(at types.ReplicaID, result Result) {
	for _, send := range result.Sends {
		c.inflight = append(c.inflight, packet{from: at, to: send.To, data: send.Data})
	}
	c.delivered[at] = append(c.delivered[at], result.Deliveries...)
}

func (c *testCluster) multicast(from types.ReplicaID, room types.Room, content string) {
	result, err := c.engines[from].Multicast(room, content)
	if err != nil {
		c.t.Fatalf("failed multicast %s from %d. %v", content, from, err)
	}
	c.absorb(from, result)
}

// Deliver up to the given number of packets, picked at random.
func (c *testCluster) step(packets int) {
	for ; packets > 0 && len(c.inflight) > 0; packets-- {
		i := c.rnd.Intn(len(c.inflight))
		p := c.inflight[i]
		c.inflight = append(c.inflight[:i], c.inflight[i+1:]...)

		result, err := c.engines[p.to].Receive(p.from, p.data)
		if err != nil {
			c.t.Fatalf("failed receiving %s at %d. %v", string(p.data), p.to, err)
		}
		c.absorb(p.to, result)
	}
}

func (c *testCluster) run() {
	c.step(len(c.inflight) * 1000)
	if len(c.inflight) > 0 {
		c.t.Fatalf("packets still in flight %d", len(c.inflight))
	}
}

func (c *testCluster) contents(at types.ReplicaID, room types.Room) []string {
	var values []string
	for _, d := range c.delivered[at] {
		if d.Room == room {
			values = append(values, d.Content)
		}
	}
	return values
}

func (c *testCluster) close() {
	for _, engine := range c.engines {
		if err := engine.Close(); err != nil {
			c.t.Errorf("failed closing engine. %v", err)
		}
	}
}
