package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scrobbled/scrobbled/internal/logging"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scrobbler",
	Long: `Poll every Sonos speaker on the network and scrobble what they play.

A track is scrobbled once it has played past the configured threshold of
its length (or past four minutes, whichever comes first). The same track
is not reported again within thirty minutes, and state survives restarts.

Runs until interrupted.`,
	RunE: runRun,
}

func init() {
	addDaemonFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	log, err := logging.New(cfg.Log, Verbose(), JSONOutput())
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

	log.Info("scrobbler starting",
		zap.Int("interval_seconds", cfg.Poll.IntervalSeconds),
		zap.Int("threshold_percent", cfg.Poll.ThresholdPercent),
		zap.String("state_dir", d.store.Dir()),
		zap.Bool("log_only", daemonLogOnly))

	err = d.monitor.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("scrobbler stopped")
	return nil
}
