package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scrobbled/scrobbled/internal/logging"
	"github.com/scrobbled/scrobbled/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the scrobbler with a live dashboard",
	Long: `Run the scrobbler with an interactive terminal dashboard.

The dashboard shows every speaker with its playing track, a progress bar
with the scrobble point marked, and a feed of recent scrobbles and
speaker changes. Scrobbling behaves exactly as in 'scrobbled run'.

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  Tab          Switch panel
  j/k          Scroll`,
	RunE: runWatch,
}

func init() {
	addDaemonFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("watch needs a terminal; use 'scrobbled run' or 'scrobbled tail' instead")
	}

	// The dashboard owns the terminal, so logs go to the file core only.
	log, err := logging.NewFileOnly(cfg.Log, Verbose())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	d, err := newDaemon(log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d.warmup(ctx, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.monitor.Run(ctx)
	}()

	uiErr := tui.Run(d.monitor.Events())

	// Quitting the dashboard stops the poll loop as well.
	cancel()
	runErr := <-errCh
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return uiErr
}
