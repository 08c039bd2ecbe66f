package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"

	"github.com/jabolina/roomcast/pkg/mcast/core"
	"github.com/jabolina/roomcast/pkg/mcast/types"
	"gopkg.in/alecthomas/kingpin.v2"
)

const quit = "/quit"

var (
	app    = kingpin.New("chatclient", "Talks to a replica of the chat group.")
	server = app.Arg("server", "Replica address, as ip:port.").Required().TCP()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))
	log := types.NewDefaultLogger("chatclient", false)

	destination := &net.UDPAddr{IP: (*server).IP, Port: (*server).Port}
	conn, err := net.ListenUDP("udp", nil)
	app.FatalIfError(err, "opening socket")
	defer conn.Close()

	fmt.Printf("+OK New Connection!\r\nip: %s, port: %d\n", destination.IP, destination.Port)

	send := func(line string) {
		if _, err := conn.WriteToUDP([]byte(line), destination); err != nil {
			log.Error("failed sending", "error", err)
		}
	}

	go func() {
		buffer := make([]byte, core.MaxDatagramSize)
		for {
			n, _, err := conn.ReadFromUDP(buffer)
			if err != nil {
				return
			}
			fmt.Println(string(buffer[:n]))
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)
	go func() {
		<-signals
		send(quit)
		conn.Close()
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		send(line)
		if strings.HasPrefix(line, quit) {
			fmt.Println("+OK Bye!")
			return
		}
	}
}
