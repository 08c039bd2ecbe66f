package core

import (
	"net"

	"github.com/hashicorp/go-hclog"
	"github.com/jabolina/roomcast/pkg/mcast/helper"
)

// UDPTransport is an instance of the Transport interface on top of
// a single UDP socket, used both to receive and to send.
type UDPTransport struct {
	conn *net.UDPConn

	// Channel to publish the received data.
	producer chan Datagram

	// Closed when the transport is closing.
	done chan struct{}

	flag    helper.Flag
	invoker helper.Invoker
	log     hclog.Logger
}

// NewUDPTransport binds the address and start reading datagrams.
func NewUDPTransport(bind string, log hclog.Logger) (*UDPTransport, error) {
	address, err := net.ResolveUDPAddr("udp", bind)
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenUDP("udp", address)
	if err != nil {
		return nil, err
	}

	u := &UDPTransport{
		conn:     conn,
		producer: make(chan Datagram),
		done:     make(chan struct{}),
		invoker:  helper.NewInvoker(),
		log:      log,
	}
	u.invoker.Spawn(u.poll)
	return u, nil
}

func (u *UDPTransport) Send(address string, data []byte) error {
	destination, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return err
	}

	_, err = u.conn.WriteToUDP(data, destination)
	return err
}

func (u *UDPTransport) Listen() <-chan Datagram {
	return u.producer
}

func (u *UDPTransport) LocalAddr() string {
	return u.conn.LocalAddr().String()
}

func (u *UDPTransport) Close() error {
	if !u.flag.Inactivate() {
		return nil
	}

	close(u.done)
	err := u.conn.Close()
	u.invoker.Stop()
	return err
}

func (u *UDPTransport) poll() {
	buffer := make([]byte, MaxDatagramSize)
	for {
		n, source, err := u.conn.ReadFromUDP(buffer)
		if err != nil {
			if !u.flag.IsActive() {
				return
			}
			u.log.Warn("failed reading datagram", "error", err)
			continue
		}

		datagram := Datagram{
			From: source.String(),
			Data: append([]byte(nil), buffer[:n]...),
		}

		select {
		case <-u.done:
			return
		case u.producer <- datagram:
		}
	}
}
