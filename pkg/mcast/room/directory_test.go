package room

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

const alice = "127.0.0.1:40001"

func Test_DirectoryCommands(t *testing.T) {
	d := NewDirectory(10, hclog.NewNullLogger())
	steps := []struct {
		line  string
		reply string
	}{
		{"hello", "-ERR You need to join a room."},
		{"/part", "-ERR You need to join a room."},
		{"/join", "-ERR An argument is needed."},
		{"/join eleven", "-ERR There are only 10 chat rooms."},
		{"/join 11", "-ERR There are only 10 chat rooms."},
		{"/join 0", "-ERR There are only 10 chat rooms."},
		{"/JOIN 5", "+OK You are now in chat room #5"},
		{"/join 3", "-ERR You are already in room #5"},
		{"/nick", "-ERR An argument is needed."},
		{"/Nick alice", "+OK Nick name set to alice"},
		{"/dance", "-ERR Unknown command."},
		{"/part", "+OK You have left chat room #5"},
		{"/quit", "+OK Bye!"},
	}

	for _, step := range steps {
		action := d.Handle(alice, step.line)
		if action.Post || action.Reply != step.reply {
			t.Errorf("%q: expected %q found %#v", step.line, step.reply, action)
		}
	}

	if d.Len() != 0 {
		t.Errorf("Expected session removed after quit, found %d", d.Len())
	}
}

func Test_DirectoryPosts(t *testing.T) {
	d := NewDirectory(10, hclog.NewNullLogger())
	d.Handle(alice, "/join 2")

	action := d.Handle(alice, "hi there\n")
	if !action.Post || action.Room != 2 || action.Content != "<127.0.0.1:40001> hi there" {
		t.Errorf("unexpected post %#v", action)
	}

	d.Handle(alice, "/nick alice")
	action = d.Handle(alice, "again")
	if action.Content != "<alice> again" {
		t.Errorf("unexpected post %#v", action)
	}

	session, ok := d.Session(alice)
	if !ok || session.ID == uuid.Nil || session.Name() != "alice" {
		t.Errorf("unexpected session %#v", session)
	}
}

func Test_DirectoryMembers(t *testing.T) {
	d := NewDirectory(10, hclog.NewNullLogger())
	d.Handle("127.0.0.1:3", "/join 1")
	d.Handle("127.0.0.1:1", "/join 1")
	d.Handle("127.0.0.1:2", "/join 4")
	d.Handle("127.0.0.1:4", "nothing")

	expected := []string{"127.0.0.1:1", "127.0.0.1:3"}
	if members := d.Members(1); !reflect.DeepEqual(members, expected) {
		t.Errorf("Expected %v found %v", expected, members)
	}

	if d.Len() != 4 {
		t.Errorf("Expected 4 sessions, found %d", d.Len())
	}

	first, _ := d.Session("127.0.0.1:1")
	second, _ := d.Session("127.0.0.1:3")
	if first.ID == second.ID {
		t.Errorf("sessions share the identifier %s", first.ID)
	}
}
