package core

import (
	"errors"

	"github.com/hashicorp/go-hclog"
	"github.com/jabolina/roomcast/pkg/mcast/definition"
	"github.com/jabolina/roomcast/pkg/mcast/helper"
	"github.com/jabolina/roomcast/pkg/mcast/output"
	"github.com/jabolina/roomcast/pkg/mcast/protocol"
	"github.com/jabolina/roomcast/pkg/mcast/room"
	"github.com/jabolina/roomcast/pkg/mcast/types"
	"github.com/jabolina/roomcast/pkg/mcast/wire"
)

const (
	postWithDelimiter = "-ERR Messages can not contain '" + wire.Delimiter + "'."
	postRepeated      = "-ERR You just sent this message, wait before repeating it."
	postRefused       = "-ERR Message not sent."
)

// Peer is a single replica of the chat group. A single goroutine
// reads the transport and processes one datagram at a time, so the
// ordering protocol is never accessed concurrently.
//
// Datagrams coming from an address of the group are protocol
// messages, anything else comes from a chat client.
type Peer struct {
	// Used to spawn and control all go routines.
	invoker helper.Invoker

	configuration *types.Configuration

	oracle types.Oracle

	// Transport shared by replicas and clients.
	transport Transport

	protocol protocol.Protocol

	// Clients connected to this replica.
	directory *room.Directory

	deliver output.Deliverable

	log hclog.Logger

	flag helper.Flag

	// Closed to finish the peer processing.
	done chan struct{}
}

// NewPeer creates the replica using the given transport and
// start polling for new datagrams.
func NewPeer(configuration *types.Configuration, transport Transport) (*Peer, error) {
	if err := types.ValidateConfiguration(configuration); err != nil {
		return nil, err
	}

	if configuration.Storage == nil {
		configuration.Storage = definition.NewInMemoryStorage()
	}

	p, err := protocol.NewProtocol(configuration)
	if err != nil {
		return nil, err
	}

	peer := &Peer{
		invoker:       helper.NewInvoker(),
		configuration: configuration,
		oracle:        NewGroupOracle(configuration.Group),
		transport:     transport,
		protocol:      p,
		directory:     room.NewDirectory(configuration.Rooms, configuration.Logger.Named("rooms")),
		log:           configuration.Logger,
		done:          make(chan struct{}),
	}
	peer.deliver = output.NewDeliver(output.NewLogStructure(configuration.Storage), peer, configuration.Logger)
	peer.invoker.Spawn(peer.poll)
	return peer, nil
}

// Address where the replica receives datagrams.
func (p *Peer) Address() string {
	return p.transport.LocalAddr()
}

// History returns the messages delivered in the room, in the order
// this replica delivered them.
func (p *Peer) History(room types.Room) ([]types.Delivery, error) {
	return p.deliver.History(room)
}

// Close stops processing and release the transport.
func (p *Peer) Close() error {
	if !p.flag.Inactivate() {
		return nil
	}

	close(p.done)
	p.invoker.Stop()
	if err := p.protocol.Close(); err != nil {
		return err
	}
	return p.transport.Close()
}

// Publish implements the output.Publisher interface, sending the
// delivered message to every client in the room.
func (p *Peer) Publish(delivery types.Delivery) {
	for _, address := range p.directory.Members(delivery.Room) {
		p.reply(address, delivery.Content)
	}
}

func (p *Peer) poll() {
	defer p.log.Debug("closing the peer", "address", p.Address())
	for {
		select {
		case <-p.done:
			return
		case datagram, ok := <-p.transport.Listen():
			if !ok {
				return
			}
			p.process(datagram)
		}
	}
}

func (p *Peer) process(datagram Datagram) {
	if id, ok := p.oracle.Identify(datagram.From); ok {
		result, err := p.protocol.Receive(id, datagram.Data)
		if err != nil {
			p.log.Warn("dropping replica message", "from", id, "data", string(datagram.Data), "error", err)
			return
		}
		p.apply(result)
		return
	}

	action := p.directory.Handle(datagram.From, string(datagram.Data))
	if action.Reply != "" {
		p.reply(datagram.From, action.Reply)
	}

	if !action.Post {
		return
	}

	result, err := p.protocol.Multicast(action.Room, action.Content)
	if err != nil {
		p.log.Warn("dropping client post", "from", datagram.From, "room", action.Room, "error", err)
		p.reply(datagram.From, rejection(err))
		return
	}
	p.apply(result)
}

// Send what the protocol produced and deliver what became
// deliverable.
func (p *Peer) apply(result protocol.Result) {
	for _, send := range result.Sends {
		address, ok := p.oracle.Resolve(send.To)
		if !ok {
			p.log.Error("unknown replica", "replica", send.To)
			continue
		}

		if err := p.transport.Send(address, send.Data); err != nil {
			p.log.Warn("failed sending", "replica", send.To, "error", err)
		}
	}

	for _, delivery := range result.Deliveries {
		// Failures are logged by the deliver.
		_ = p.deliver.Commit(delivery)
	}
}

// The answer for a post the protocol refused.
func rejection(err error) string {
	switch {
	case errors.Is(err, wire.ErrDelimiterInContent):
		return postWithDelimiter
	case errors.Is(err, protocol.ErrPendingContent):
		return postRepeated
	default:
		return postRefused
	}
}

func (p *Peer) reply(address string, content string) {
	if err := p.transport.Send(address, []byte(content)); err != nil {
		p.log.Warn("failed answering client", "address", address, "error", err)
	}
}
