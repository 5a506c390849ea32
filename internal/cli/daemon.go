package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scrobbled/scrobbled/internal/errors"
	"github.com/scrobbled/scrobbled/internal/lastfm"
	"github.com/scrobbled/scrobbled/internal/monitor"
	"github.com/scrobbled/scrobbled/internal/scrobble"
	"github.com/scrobbled/scrobbled/internal/sonos"
	"github.com/scrobbled/scrobbled/internal/store"
)

// Flags shared by the commands that run the poll loop.
var (
	daemonInterval    int
	daemonRediscovery int
	daemonThreshold   int
	daemonLogOnly     bool
)

func addDaemonFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&daemonInterval, "interval", "i", 0, "poll interval in seconds (default from config)")
	cmd.Flags().IntVar(&daemonRediscovery, "rediscovery", 0, "speaker rediscovery interval in seconds")
	cmd.Flags().IntVarP(&daemonThreshold, "threshold", "t", 0, "scrobble threshold percent")
	cmd.Flags().BoolVar(&daemonLogOnly, "log-only", false, "record scrobbles to a local log instead of Last.fm")
}

// applyDaemonFlags folds flag overrides into the loaded config. Defaults run
// again afterwards so out-of-range flag values fall back like file values do.
func applyDaemonFlags() {
	if daemonInterval > 0 {
		cfg.Poll.IntervalSeconds = daemonInterval
	}
	if daemonRediscovery > 0 {
		cfg.Poll.RediscoverySeconds = daemonRediscovery
	}
	if daemonThreshold > 0 {
		cfg.Poll.ThresholdPercent = daemonThreshold
	}
	cfg.ApplyDefaults()
}

// daemon bundles the wired-up poll loop and its collaborators.
type daemon struct {
	store   *store.Store
	engine  *scrobble.Engine
	monitor *monitor.Monitor
	lastfm  *lastfm.Reporter // nil in log-only mode
}

// newDaemon builds the full reporting stack from the loaded config.
func newDaemon(log *zap.Logger) (*daemon, error) {
	applyDaemonFlags()

	stateDir := cfg.State.Path()
	st := store.New(stateDir, log)

	var (
		reporter scrobble.Reporter
		remote   *lastfm.Reporter
	)
	if daemonLogOnly {
		reporter = scrobble.NewLogbook(filepath.Join(stateDir, "scribbles.jsonl"), log)
	} else {
		if !cfg.Lastfm.Complete() {
			return nil, errors.WithSuggestion(errors.ErrNoCredentials,
				"Run 'scrobbled setup' to enter your Last.fm credentials, or pass --log-only to record scrobbles locally")
		}
		remote = lastfm.New(lastfm.Config{
			Username:  cfg.Lastfm.Username,
			Password:  cfg.Lastfm.Password,
			APIKey:    cfg.Lastfm.APIKey,
			APISecret: cfg.Lastfm.APISecret,
			Timeout:   cfg.Lastfm.Timeout(),
		}, log)
		reporter = remote
	}

	engine := scrobble.NewEngine(st, reporter, cfg.Poll.ThresholdPercent, log)

	system := sonos.NewSystem(cfg.Sonos.DiscoveryTimeout(), cfg.Sonos.RequestTimeout())

	mon := monitor.New(system, engine, monitor.Config{
		Interval:       cfg.Poll.Interval(),
		Rediscovery:    cfg.Poll.Rediscovery(),
		RequestTimeout: cfg.Sonos.RequestTimeout(),
	}, log)

	return &daemon{
		store:   st,
		engine:  engine,
		monitor: mon,
		lastfm:  remote,
	}, nil
}

// warmup authenticates with Last.fm ahead of the first scrobble. Failure is
// only logged; reporting retries authentication on demand.
func (d *daemon) warmup(ctx context.Context, log *zap.Logger) {
	if d.lastfm == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Lastfm.Timeout())
	defer cancel()
	if err := d.lastfm.Connect(ctx); err != nil {
		log.Warn("last.fm authentication failed, will retry when reporting", zap.Error(err))
	}
}
