package core

// MaxDatagramSize is the greatest datagram read from the network,
// anything longer is truncated.
const MaxDatagramSize = 1024

// Datagram is a message received from the network.
type Datagram struct {
	// Source address.
	From string

	Data []byte
}

// Transport is an unreliable datagram primitive. Messages can be
// lost, duplicated or reordered, nothing is retransmitted.
type Transport interface {
	// Send the data to the given address.
	Send(address string, data []byte) error

	// Listen for datagrams that arrive on the transport.
	Listen() <-chan Datagram

	// LocalAddr is the address the transport is bound to.
	LocalAddr() string

	// Close the transport for sending and receiving messages.
	Close() error
}
