package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scrobbled/scrobbled/internal/logging"
	"github.com/scrobbled/scrobbled/internal/tail"
)

var (
	tailNoEmoji   bool
	tailTimestamp bool
	tailFormat    string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Run the scrobbler and print events as they happen",
	Long: `Run the scrobbler and print one line per event, suitable for piping.

Events printed:
  - Track changes (new song started)
  - Scrobbles, failed reports and skipped repeats
  - Pause/Resume
  - Speakers appearing, disappearing or becoming unreachable

Custom templates see the fields Type, Emoji, Time, Timestamp, Artist,
Title, Album, Device and Error:

  scrobbled tail --format '{{.Time}} {{.Type}} {{.Artist}} - {{.Title}}'`,
	RunE: runTail,
}

func init() {
	addDaemonFlags(tailCmd)
	tailCmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	tailCmd.Flags().BoolVar(&tailTimestamp, "timestamp", false, "show timestamps")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom format template")
	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	// Lines go to stdout; logs stay out of the stream.
	log, err := logging.NewFileOnly(cfg.Log, Verbose())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	d, err := newDaemon(log)
	if err != nil {
		return err
	}

	formatter := tail.NewFormatter(
		tail.WithEmoji(!tailNoEmoji),
		tail.WithTimestamp(tailTimestamp),
		tail.WithTemplate(tailFormat),
	)
	translator := tail.NewTranslator()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d.warmup(ctx, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.monitor.Run(ctx)
	}()

	// Print events as they arrive
	for {
		select {
		case ev, ok := <-d.monitor.Events():
			if !ok {
				return nil
			}
			for _, line := range translator.Translate(ev) {
				fmt.Println(formatter.Format(line))
			}

		case err := <-errCh:
			if err == nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}
