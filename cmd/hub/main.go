// Command hub runs the aggregation hub: it accepts sniffer and viewer
// connections, registers sessions, and fans out traffic records.
//
// Usage: hub <port>
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"netspectra/internal/adminapi"
	"netspectra/internal/config"
	"netspectra/internal/hub"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <port>\n", os.Args[0])
		os.Exit(1)
	}

	port, err := strconv.Atoi(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid port %q: %v\n", os.Args[1], err)
		os.Exit(1)
	}

	cfg := config.DefaultHubConfig()
	cfg.ListenPort = port

	server := hub.NewServer()

	go func() {
		api := adminapi.New(server.Registry)
		if err := api.ListenAndServe(cfg.AdminAddr); err != nil {
			log.Printf("hub: admin API stopped: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.ListenPort)
	if err := server.ListenAndServe(addr); err != nil {
		log.Fatalf("hub: fatal: %v", err)
	}
}
