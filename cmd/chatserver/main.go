package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jabolina/roomcast/pkg/mcast"
	"github.com/jabolina/roomcast/pkg/mcast/core"
	"github.com/jabolina/roomcast/pkg/mcast/types"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app     = kingpin.New("chatserver", "A replica of the chat group.")
	verbose = app.Flag("verbose", "Log every step of the replica.").Short('v').Bool()
	order   = app.Flag("order", "Delivery ordering used by the group.").
		Short('o').Default("unordered").Enum("unordered", "fifo", "total", "causal")
	stall  = app.Flag("stall", "Warn about messages held back for longer than this, zero disables.").Default("0s").Duration()
	config = app.Arg("config", "File with one `forward[,bind]` address per replica.").Required().ExistingFile()
	index  = app.Arg("index", "Position of this replica in the file, starting at 1.").Required().Int()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	group, err := core.LoadGroup(*config)
	app.FatalIfError(err, "loading %s", *config)

	if *index < 1 || *index > len(group) {
		app.Fatalf("index must go from 1 to %d, found %d", len(group), *index)
	}

	ordering, err := types.ParseOrdering(*order)
	app.FatalIfError(err, "")

	self := types.ReplicaID(*index - 1)
	configuration := mcast.DefaultConfiguration(group, self)
	configuration.Ordering = ordering
	configuration.StallTimeout = *stall
	configuration.Logger = types.NewDefaultLogger(fmt.Sprintf("replica-%d", *index), *verbose)

	replica, err := mcast.NewReplica(configuration)
	app.FatalIfError(err, "starting replica %d", *index)

	configuration.Logger.Info("replica started", "address", replica.Address(), "ordering", ordering, "group", len(group))

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	<-signals

	if err = replica.Close(); err != nil {
		configuration.Logger.Error("failed closing replica", "error", err)
		os.Exit(1)
	}
}
