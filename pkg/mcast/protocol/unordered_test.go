package protocol

import (
	"errors"
	"testing"

	"github.com/jabolina/roomcast/pkg/mcast/types"
	"github.com/jabolina/roomcast/pkg/mcast/wire"
)

func Test_UnorderedBroadcastIncludesSelf(t *testing.T) {
	p := createTestingProtocol(t, types.Unordered, 1, 3)
	defer p.Close()

	result, err := p.Multicast(4, "<bob> hi")
	if err != nil {
		t.Fatalf("failed multicast. %v", err)
	}

	if len(result.Sends) != 3 {
		t.Fatalf("Expected 3 sends found %d", len(result.Sends))
	}

	for i, send := range result.Sends {
		if send.To != types.ReplicaID(i) || string(send.Data) != "4+<bob> hi" {
			t.Errorf("unexpected send %d: %#v", i, send)
		}
	}

	if len(result.Deliveries) != 0 {
		t.Errorf("Multicast must not deliver locally, found %#v", result.Deliveries)
	}
}

func Test_UnorderedDeliversImmediately(t *testing.T) {
	p := createTestingProtocol(t, types.Unordered, 0, 2)
	defer p.Close()

	result, err := p.Receive(1, []byte("2+hello"))
	if err != nil {
		t.Fatalf("failed receiving. %v", err)
	}

	expected := types.Delivery{Room: 2, Content: "hello"}
	if len(result.Deliveries) != 1 || result.Deliveries[0] != expected {
		t.Errorf("Expected %#v found %#v", expected, result.Deliveries)
	}
}

func Test_RejectInvalidInput(t *testing.T) {
	for _, ordering := range []types.Ordering{types.Unordered, types.FIFO, types.Total, types.Causal} {
		p := createTestingProtocol(t, ordering, 0, 2)

		if _, err := p.Multicast(11, "hello"); !errors.Is(err, ErrUnknownRoom) {
			t.Errorf("%s: expected unknown room, found %v", ordering, err)
		}

		if _, err := p.Multicast(1, "a+b"); !errors.Is(err, wire.ErrDelimiterInContent) {
			t.Errorf("%s: expected delimiter error, found %v", ordering, err)
		}

		if _, err := p.Receive(5, []byte("1+hello")); !errors.Is(err, ErrUnknownReplica) {
			t.Errorf("%s: expected unknown replica, found %v", ordering, err)
		}

		if _, err := p.Receive(1, []byte("garbage")); !errors.Is(err, wire.ErrMalformed) {
			t.Errorf("%s: expected malformed, found %v", ordering, err)
		}

		if err := p.Close(); err != nil {
			t.Errorf("%s: failed closing. %v", ordering, err)
		}
	}
}
