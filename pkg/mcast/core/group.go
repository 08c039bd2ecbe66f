package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/jabolina/roomcast/pkg/mcast/types"
)

var ErrInvalidGroup = errors.New("invalid group configuration")

// ParseGroup reads the group configuration, one replica for each
// line in the format `forward[,bind]`. The line order gives the
// replica identifier, starting at 0. Blank lines are ignored and the
// bind address defaults to the forward address.
func ParseGroup(r io.Reader) ([]types.Replica, error) {
	var group []types.Replica
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		fields := strings.Split(text, ",")
		if len(fields) > 2 {
			return nil, fmt.Errorf("%w: line %d has %d addresses", ErrInvalidGroup, line, len(fields))
		}

		replica := types.Replica{ID: types.ReplicaID(len(group))}
		replica.Forward = strings.TrimSpace(fields[0])
		replica.Bind = replica.Forward
		if len(fields) == 2 {
			replica.Bind = strings.TrimSpace(fields[1])
		}

		for _, address := range []string{replica.Forward, replica.Bind} {
			if _, _, err := net.SplitHostPort(address); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidGroup, line, err)
			}
		}
		group = append(group, replica)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(group) == 0 {
		return nil, fmt.Errorf("%w: no replicas", ErrInvalidGroup)
	}
	return group, nil
}

// LoadGroup reads the group configuration file at the path.
func LoadGroup(path string) ([]types.Replica, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseGroup(file)
}

// GroupOracle implements the types.Oracle for a static group.
// Datagrams from a replica can carry either its forward or its bind
// address as source, both identify the replica.
type GroupOracle struct {
	forward  map[types.ReplicaID]string
	replicas map[string]types.ReplicaID
}

func NewGroupOracle(group []types.Replica) *GroupOracle {
	o := &GroupOracle{
		forward:  make(map[types.ReplicaID]string),
		replicas: make(map[string]types.ReplicaID),
	}
	for _, replica := range group {
		o.forward[replica.ID] = replica.Forward
		for _, address := range []string{replica.Forward, replica.Bind} {
			o.replicas[address] = replica.ID
			o.replicas[canonical(address)] = replica.ID
		}
	}
	return o
}

// Resolve implements the types.Oracle interface.
func (o *GroupOracle) Resolve(id types.ReplicaID) (string, bool) {
	address, ok := o.forward[id]
	return address, ok
}

// Identify implements the types.Oracle interface.
func (o *GroupOracle) Identify(address string) (types.ReplicaID, bool) {
	if id, ok := o.replicas[address]; ok {
		return id, true
	}
	id, ok := o.replicas[canonical(address)]
	return id, ok
}

// Size implements the types.Oracle interface.
func (o *GroupOracle) Size() int {
	return len(o.forward)
}

// Host names are resolved, so `localhost:5000` matches the source
// `127.0.0.1:5000` of a datagram.
func canonical(address string) string {
	resolved, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return address
	}
	return resolved.String()
}
