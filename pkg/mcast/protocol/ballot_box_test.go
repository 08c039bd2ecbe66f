package protocol

import (
	"testing"

	"github.com/jabolina/roomcast/pkg/mcast/types"
)

func Test_BallotBoxElection(t *testing.T) {
	box := NewBallotBox()
	if box.Insert("m", 0, 1) {
		t.Fatalf("Vote accepted without election")
	}

	box.Open("m")
	votes := []struct {
		from     types.ReplicaID
		priority uint64
	}{{2, 5}, {1, 5}, {0, 3}}
	for _, v := range votes {
		if !box.Insert("m", v.from, v.priority) {
			t.Errorf("Vote from %d rejected", v.from)
		}
	}

	if box.Insert("m", 1, 9) {
		t.Errorf("Second vote from the same replica accepted")
	}

	if box.ElectionSize("m") != 3 {
		t.Errorf("Expected 3 votes, found %d", box.ElectionSize("m"))
	}

	from, priority := box.Elect("m")
	if from != 1 || priority != 5 {
		t.Errorf("Expected replica 1 with 5, found %d with %d", from, priority)
	}

	box.Remove("m")
	if box.IsOpen("m") {
		t.Errorf("Election should be closed")
	}
}
