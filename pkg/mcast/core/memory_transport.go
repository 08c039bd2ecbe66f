package core

import (
	"errors"
	"sync"

	"github.com/jabolina/roomcast/pkg/mcast/helper"
)

var ErrAddressInUse = errors.New("address already in use")

const memoryBufferSize = 1024

// MemoryNetwork connects MemoryTransport endpoints inside the same
// process. Datagrams to unknown addresses, or to endpoints with a
// full buffer, are dropped like on a real network.
type MemoryNetwork struct {
	mutex     *sync.Mutex
	endpoints map[string]*MemoryTransport
}

func NewMemoryNetwork() *MemoryNetwork {
	return &MemoryNetwork{
		mutex:     &sync.Mutex{},
		endpoints: make(map[string]*MemoryTransport),
	}
}

// Endpoint creates the transport bound to the address.
func (m *MemoryNetwork) Endpoint(address string) (*MemoryTransport, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, exists := m.endpoints[address]; exists {
		return nil, ErrAddressInUse
	}

	t := &MemoryTransport{
		network:  m,
		address:  address,
		producer: make(chan Datagram, memoryBufferSize),
	}
	m.endpoints[address] = t
	return t, nil
}

func (m *MemoryNetwork) route(from, to string, data []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	destination, ok := m.endpoints[to]
	if !ok {
		return
	}

	select {
	case destination.producer <- Datagram{From: from, Data: append([]byte(nil), data...)}:
	default:
	}
}

func (m *MemoryNetwork) remove(address string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if t, ok := m.endpoints[address]; ok {
		delete(m.endpoints, address)
		close(t.producer)
	}
}

// MemoryTransport is an instance of the Transport interface
// exchanging datagrams through a MemoryNetwork.
type MemoryTransport struct {
	network  *MemoryNetwork
	address  string
	producer chan Datagram
	flag     helper.Flag
}

func (t *MemoryTransport) Send(address string, data []byte) error {
	if !t.flag.IsActive() {
		return errors.New("transport is closed")
	}

	if len(data) > MaxDatagramSize {
		data = data[:MaxDatagramSize]
	}
	t.network.route(t.address, address, data)
	return nil
}

func (t *MemoryTransport) Listen() <-chan Datagram {
	return t.producer
}

func (t *MemoryTransport) LocalAddr() string {
	return t.address
}

func (t *MemoryTransport) Close() error {
	if t.flag.Inactivate() {
		t.network.remove(t.address)
	}
	return nil
}
