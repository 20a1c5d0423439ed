// Command viewer is a headless viewer client: it connects to a hub
// and prints FORWARD_LOG events as they arrive, each prefixed with the
// originating sniffer's SSID. The operator-facing UI shell spec.md
// places out of scope would consume the same event stream
// (internal/viewerclient) in place of this printer.
//
// Usage: viewer <host> <port>
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"netspectra/internal/viewerclient"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <host> <port>\n", os.Args[0])
		os.Exit(1)
	}

	port, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid port %q: %v\n", os.Args[2], err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", os.Args[1], port)
	hostname, _ := os.Hostname()

	client, err := viewerclient.Dial(addr, hostname)
	if err != nil {
		log.Printf("viewer: failed to connect: %v", err)
		os.Exit(1)
	}
	defer client.Close()

	log.Printf("viewer: connected, assigned ssid=%d", client.SSID)

	events, errs := client.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			fmt.Printf("[ssid=%d] %s %s -> %s proto=%s len=%d\n",
				ev.SSID, ev.Log.Timestamp, ev.Log.Src, ev.Log.Dst, ev.Log.Protocol, ev.Log.Length)
		case err := <-errs:
			log.Printf("viewer: connection ended: %v", err)
			return
		}
	}
}
