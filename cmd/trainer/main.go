// cmd/trainer/main.go
//
// Terminal client for the Symbient Academy training server. The session lives
// entirely in this process; quitting discards it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ashureev/symbient-academy/internal/client"
	"github.com/ashureev/symbient-academy/internal/training"
	"github.com/ashureev/symbient-academy/internal/tui"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "training server base URL")
	flag.Parse()

	c := client.New(*server)

	// The stage list doubles as a reachability check. Fall back to the
	// embedded catalog so the UI still renders stage titles.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	stages, err := c.Stages(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not reach %s: %v\n", *server, err)
		stages = training.MustLoadCatalog().StageList()
	}

	p := tea.NewProgram(tui.New(c, stages), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running trainer: %v\n", err)
		os.Exit(1)
	}
}
