package mcast

import (
	"net"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/jabolina/roomcast/pkg/mcast/types"
	"go.uber.org/goleak"
)

func Test_ReplicaOverUDP(t *testing.T) {
	defer goleak.VerifyNone(t)

	group := []types.Replica{{ID: 0, Forward: "127.0.0.1:0", Bind: "127.0.0.1:0"}}
	configuration := DefaultConfiguration(group, 0)
	configuration.Ordering = types.FIFO
	configuration.Logger = hclog.NewNullLogger()

	replica, err := NewReplica(configuration)
	if err != nil {
		t.Fatalf("failed creating replica. %v", err)
	}
	defer replica.Close()

	server, err := net.ResolveUDPAddr("udp", replica.Address())
	if err != nil {
		t.Fatalf("failed resolving. %v", err)
	}

	client, err := net.DialUDP("udp", nil, server)
	if err != nil {
		t.Fatalf("failed dialing. %v", err)
	}
	defer client.Close()

	if _, err = client.Write([]byte("/join 1")); err != nil {
		t.Fatalf("failed writing. %v", err)
	}

	buffer := make([]byte, 1024)
	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	n, err := client.Read(buffer)
	if err != nil {
		t.Fatalf("failed reading. %v", err)
	}

	if reply := string(buffer[:n]); reply != "+OK You are now in chat room #1" {
		t.Errorf("unexpected reply %s", reply)
	}
}

func Test_DefaultConfiguration(t *testing.T) {
	configuration := DefaultConfiguration([]types.Replica{{ID: 0}, {ID: 1}}, 1)
	if err := types.ValidateConfiguration(configuration); err != nil {
		t.Fatalf("default configuration is invalid. %v", err)
	}

	if configuration.Rooms != types.DefaultRooms || configuration.Storage == nil {
		t.Errorf("unexpected configuration %#v", configuration)
	}
}
