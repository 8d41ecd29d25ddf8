package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/badri/runq/internal/config"
	"github.com/badri/runq/internal/doctor"
	"github.com/badri/runq/internal/history"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := os.Args[1:]
	configPath := config.DefaultFile

	var rest []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-c", "--config":
			if i+1 >= len(args) {
				return fmt.Errorf("usage: runq [-c config.yaml] [history|doctor]")
			}
			configPath = args[i+1]
			i++
		default:
			rest = append(rest, args[i])
		}
	}

	if len(rest) == 0 {
		return cmdRun(configPath)
	}
	switch rest[0] {
	case "run":
		return cmdRun(configPath)
	case "history":
		return cmdHistory()
	case "doctor":
		return doctor.Run(configPath)
	default:
		return fmt.Errorf("unknown command %q (expected run, history or doctor)", rest[0])
	}
}

func cmdHistory() error {
	dataDir, err := config.DataDir()
	if err != nil {
		return fmt.Errorf("locating data dir: %w", err)
	}
	store, err := history.Open(filepath.Join(dataDir, "history.db"))
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	runs, err := store.Recent(20)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	for _, r := range runs {
		failed := 0
		for _, c := range r.Commands {
			if c.ExitStatus == nil || *c.ExitStatus != 0 {
				failed++
			}
		}
		fmt.Printf("%-12s  %-11s  %2d commands  %2d failed  %s\n",
			humanize.Time(r.StartedAt),
			r.Outcome,
			len(r.Commands),
			failed,
			shortID(r.ID))
		for _, c := range r.Commands {
			status := "-"
			if c.ExitStatus != nil {
				status = fmt.Sprintf("%d", *c.ExitStatus)
			}
			fmt.Printf("    [%s] %s\n", status, c.Line)
		}
	}
	return nil
}

func shortID(id string) string {
	if i := strings.Index(id, "-"); i > 0 {
		return id[:i]
	}
	return id
}
