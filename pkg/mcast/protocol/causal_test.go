package protocol

import (
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/jabolina/roomcast/pkg/mcast/types"
)

func Test_CausalHoldsUntilPredecessorArrives(t *testing.T) {
	p := createTestingProtocol(t, types.Causal, 2, 3)
	defer p.Close()

	// B was sent by replica 1 after delivering A from replica 0.
	result, err := p.Receive(1, []byte("1,1,0+1+1+B"))
	if err != nil {
		t.Fatalf("failed receiving B. %v", err)
	}

	if len(result.Deliveries) != 0 {
		t.Fatalf("B should be held, found %#v", result.Deliveries)
	}

	result, err = p.Receive(0, []byte("1,0,0+0+1+A"))
	if err != nil {
		t.Fatalf("failed receiving A. %v", err)
	}

	expected := []types.Delivery{{Room: 1, Content: "A"}, {Room: 1, Content: "B"}}
	if !reflect.DeepEqual(result.Deliveries, expected) {
		t.Errorf("Expected %#v found %#v", expected, result.Deliveries)
	}

	// Both are duplicates now.
	result, _ = p.Receive(1, []byte("1,1,0+1+1+B"))
	if len(result.Deliveries) != 0 {
		t.Errorf("duplicated message delivered %#v", result.Deliveries)
	}
}

func Test_CausalOwnMessageDeliveredImmediately(t *testing.T) {
	p := createTestingProtocol(t, types.Causal, 1, 3)
	defer p.Close()

	result, err := p.Multicast(4, "mine")
	if err != nil {
		t.Fatalf("failed multicast. %v", err)
	}

	if len(result.Deliveries) != 1 || result.Deliveries[0].Content != "mine" {
		t.Errorf("Expected own delivery, found %#v", result.Deliveries)
	}

	if len(result.Sends) != 2 {
		t.Fatalf("Expected sends to the other 2 replicas, found %#v", result.Sends)
	}

	for _, send := range result.Sends {
		if send.To == 1 || string(send.Data) != "0,1,0+1+4+mine" {
			t.Errorf("unexpected send %#v", send)
		}
	}

	// Our own datagram, if it ever comes back, is not delivered again.
	again, err := p.Receive(1, result.Sends[0].Data)
	if err != nil || len(again.Deliveries) != 0 {
		t.Errorf("own message delivered twice %#v. %v", again.Deliveries, err)
	}

	// The next message carries the causal history.
	if _, err = p.Receive(0, []byte("1,0,0+0+4+other")); err != nil {
		t.Fatalf("failed receiving. %v", err)
	}

	result, _ = p.Multicast(4, "reply")
	if string(result.Sends[0].Data) != "1,2,0+1+4+reply" {
		t.Errorf("unexpected stamp %s", result.Sends[0].Data)
	}
}

// A reply that depends on our own message can only arrive after the
// message was sent, and so after it was delivered locally.
func Test_CausalReplyToOwnMessage(t *testing.T) {
	p := createTestingProtocol(t, types.Causal, 0, 2)
	defer p.Close()

	var delivered []string
	result, _ := p.Multicast(1, "question")
	for _, d := range result.Deliveries {
		delivered = append(delivered, d.Content)
	}

	result, err := p.Receive(1, []byte("1,1+1+1+answer"))
	if err != nil {
		t.Fatalf("failed receiving. %v", err)
	}
	for _, d := range result.Deliveries {
		delivered = append(delivered, d.Content)
	}

	if !reflect.DeepEqual(delivered, []string{"question", "answer"}) {
		t.Errorf("unexpected order %v", delivered)
	}
}

func Test_CausalSingleReplica(t *testing.T) {
	c := newTestCluster(t, types.Causal, 1, 1)
	defer c.close()

	c.multicast(0, 2, "one")
	c.multicast(0, 2, "two")
	if len(c.inflight) != 0 {
		t.Errorf("nothing should be sent in a group of one, found %d", len(c.inflight))
	}

	if actual := c.contents(0, 2); !reflect.DeepEqual(actual, []string{"one", "two"}) {
		t.Errorf("unexpected deliveries %v", actual)
	}
}

func Test_CausalRejectsWrongClockWidth(t *testing.T) {
	p := createTestingProtocol(t, types.Causal, 0, 3)
	defer p.Close()

	if _, err := p.Receive(1, []byte("0,1+1+1+short")); err == nil {
		t.Errorf("Expected error for clock with wrong width")
	}

	if _, err := p.Receive(1, []byte("0,0,1+2+1+spoofed")); err == nil {
		t.Errorf("Expected error for sender different from source")
	}
}

// Each replica answers the messages it delivers, so every answer
// causally depends on the message that triggered it. The answer is
// named after the message, so the dependency is visible in the content.
func Test_CausalClusterRespectsHappensBefore(t *testing.T) {
	for seed := int64(1); seed <= 15; seed++ {
		c := newTestCluster(t, types.Causal, 3, seed)
		c.multicast(0, 1, "r")
		c.multicast(1, 1, "s")

		for len(c.inflight) > 0 {
			before := make([]int, 3)
			for i := range before {
				before[i] = len(c.delivered[i])
			}

			c.step(1)
			for i := range before {
				for _, d := range c.delivered[i][before[i]:] {
					if strings.Count(d.Content, ".") < 2 {
						c.multicast(types.ReplicaID(i), 1, d.Content+"."+strconv.Itoa(i))
					}
				}
			}
		}

		for at := types.ReplicaID(0); at < 3; at++ {
			verifyCausalOrder(t, seed, at, c.contents(at, 1))
		}
		c.close()
	}
}

// A message named "x.y" can only be delivered after "x".
func verifyCausalOrder(t *testing.T, seed int64, at types.ReplicaID, contents []string) {
	seen := make(map[string]bool)
	for _, content := range contents {
		if i := strings.LastIndex(content, "."); i >= 0 {
			parent := content[:i]
			if !seen[parent] {
				t.Errorf("seed %d replica %d: %s delivered before %s", seed, at, content, parent)
			}
		}
		seen[content] = true
	}
}
