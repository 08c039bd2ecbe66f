package output

import (
	"github.com/hashicorp/go-hclog"
	"github.com/jabolina/roomcast/pkg/mcast/types"
)

// Publisher hands a delivered message to the clients of its room.
type Publisher interface {
	Publish(delivery types.Delivery)
}

// Deliverable interface to deliver messages.
type Deliverable interface {
	// Commit the delivery into the log and publish it.
	Commit(delivery types.Delivery) error

	// History returns the deliveries of the room, in order.
	History(room types.Room) ([]types.Delivery, error)
}

// Deliver is the last step of a message. It is appended to the
// replica log and then published to the clients. A message that
// could not be logged is still published, clients must not lose
// messages because of the log.
type Deliver struct {
	log       Log
	publisher Publisher
	logger    hclog.Logger
}

// NewDeliver creates a new instance of the Deliverable interface.
func NewDeliver(log Log, publisher Publisher, logger hclog.Logger) Deliverable {
	return &Deliver{
		log:       log,
		publisher: publisher,
		logger:    logger,
	}
}

func (d *Deliver) Commit(delivery types.Delivery) error {
	err := d.log.Append(delivery)
	if err != nil {
		d.logger.Error("failed appending delivery", "room", delivery.Room, "error", err)
	}

	d.logger.Debug("delivering", "room", delivery.Room, "content", delivery.Content)
	d.publisher.Publish(delivery)
	return err
}

func (d *Deliver) History(room types.Room) ([]types.Delivery, error) {
	return d.log.Dump(room)
}
