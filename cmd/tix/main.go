package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jvasco/tix/internal/advice"
	"github.com/jvasco/tix/internal/api"
	"github.com/jvasco/tix/internal/config"
	"github.com/jvasco/tix/internal/persist"
	"github.com/jvasco/tix/internal/session"
	"github.com/jvasco/tix/internal/store"
	"github.com/jvasco/tix/internal/tui"
	"github.com/jvasco/tix/internal/workflow"
)

var (
	// CLI flags
	serverFlag  string
	projectFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tix",
		Short: "Terminal UI for the tix ticket tracker",
		Long: `tix is a terminal user interface for the tix ticket tracker.

Kanban board, ranked backlog and timeline over the same project, with
edits auto-persisted to the tracker server as you type.

Server resolution:
  1. --server flag
  2. TIX_SERVER environment variable
  3. http://localhost:3333

Set TIX_API_KEY to enable hive-mind consultations.`,
		RunE: run,
	}

	// Define CLI flags
	rootCmd.Flags().StringVar(&serverFlag, "server", "", "Tracker server URL. Overrides TIX_SERVER.")
	rootCmd.Flags().StringVar(&projectFlag, "project", "", "Project ID or name. Skips the project picker.")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	serverURL, err := config.ResolveServerURL(serverFlag)
	if err != nil {
		return fmt.Errorf("failed to resolve server URL: %w", err)
	}

	client := api.New(serverURL)
	s := store.New()

	// Persist results flow back into the TUI through this channel; the
	// scheduler's callback runs on its own goroutine.
	results := make(chan persist.Result, 16)
	scheduler := persist.NewScheduler(client, persist.WithResultFunc(func(r persist.Result) {
		results <- r
	}))

	sess := session.New(s, scheduler, client)
	flow := workflow.New(s, client)
	consultant := advice.New("", os.Getenv("TIX_API_KEY"))

	ctx := context.Background()

	app := tui.NewAppModel(client, s, sess, flow, consultant, results, ctx, projectFlag)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}

	return nil
}
