// Package room keeps the chat clients connected to a replica and
// answers their commands. Clients are identified by the address their
// datagrams come from.
package room

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/jabolina/roomcast/pkg/mcast/types"
)

const (
	joinOK    = "+OK You are now in chat room #%d"
	partOK    = "+OK You have left chat room #%d"
	nickOK    = "+OK Nick name set to %s"
	byeOK     = "+OK Bye!"
	needJoin  = "-ERR You need to join a room."
	alreadyIn = "-ERR You are already in room #%d"
	needArg   = "-ERR An argument is needed."
	unknown   = "-ERR Unknown command."
	noRoom    = "-ERR There are only %d chat rooms."
)

// Session is a client talking to this replica.
type Session struct {
	ID      uuid.UUID
	Address string
	Nick    string

	// Zero while outside of every room.
	Room types.Room
}

// Name used to sign the posts, the client address when no nick
// was chosen.
func (s *Session) Name() string {
	if s.Nick == "" {
		return s.Address
	}
	return s.Nick
}

// Action is what must be done after a client datagram.
type Action struct {
	// Answer sent back to the client, empty for posts.
	Reply string

	// When true, Content must be multicast into Room.
	Post    bool
	Room    types.Room
	Content string
}

// Directory holds the sessions of a replica.
type Directory struct {
	mutex    *sync.Mutex
	rooms    int
	sessions map[string]*Session
	log      hclog.Logger
}

func NewDirectory(rooms int, log hclog.Logger) *Directory {
	return &Directory{
		mutex:    &sync.Mutex{},
		rooms:    rooms,
		sessions: make(map[string]*Session),
		log:      log,
	}
}

// Handle processes a single line sent by the client at the address.
// A session is created the first time an address is seen.
func (d *Directory) Handle(address string, line string) Action {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	line = strings.TrimRight(line, "\r\n")
	session, ok := d.sessions[address]
	if !ok {
		session = &Session{ID: uuid.New(), Address: address}
		d.sessions[address] = session
		d.log.Debug("new client", "session", session.ID, "address", address)
	}

	if !strings.HasPrefix(line, "/") {
		if session.Room == 0 {
			return Action{Reply: needJoin}
		}
		return Action{
			Post:    true,
			Room:    session.Room,
			Content: fmt.Sprintf("<%s> %s", session.Name(), line),
		}
	}

	command, argument := line, ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		command, argument = line[:i], strings.TrimSpace(line[i+1:])
	}

	switch strings.ToLower(command) {
	case "/join":
		return Action{Reply: d.join(session, argument)}
	case "/part":
		if session.Room == 0 {
			return Action{Reply: needJoin}
		}
		left := session.Room
		session.Room = 0
		return Action{Reply: fmt.Sprintf(partOK, left)}
	case "/nick":
		if argument == "" {
			return Action{Reply: needArg}
		}
		session.Nick = argument
		return Action{Reply: fmt.Sprintf(nickOK, argument)}
	case "/quit":
		delete(d.sessions, address)
		d.log.Debug("client left", "session", session.ID, "address", address)
		return Action{Reply: byeOK}
	default:
		return Action{Reply: unknown}
	}
}

func (d *Directory) join(session *Session, argument string) string {
	if argument == "" {
		return needArg
	}

	if session.Room != 0 {
		return fmt.Sprintf(alreadyIn, session.Room)
	}

	room, err := strconv.Atoi(argument)
	if err != nil || room < 1 || room > d.rooms {
		return fmt.Sprintf(noRoom, d.rooms)
	}

	session.Room = types.Room(room)
	return fmt.Sprintf(joinOK, room)
}

// Members returns the address of every client in the room, sorted.
func (d *Directory) Members(room types.Room) []string {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	var addresses []string
	for address, session := range d.sessions {
		if session.Room == room {
			addresses = append(addresses, address)
		}
	}
	sort.Strings(addresses)
	return addresses
}

// Session returns a copy of the session for the address.
func (d *Directory) Session(address string) (Session, bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	session, ok := d.sessions[address]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// Len is the number of known clients.
func (d *Directory) Len() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return len(d.sessions)
}
