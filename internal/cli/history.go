package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/scrobbled/scrobbled/internal/logging"
	"github.com/scrobbled/scrobbled/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently scrobbled tracks",
	Long:  `Shows the tracks most recently reported to Last.fm, newest first.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	log, err := logging.New(cfg.Log, Verbose(), JSONOutput())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st := store.New(cfg.State.Path(), log)
	reported := st.LoadLastReported()

	records := make([]store.ReportRecord, 0, len(reported))
	for _, rec := range reported {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ReportedAt.After(records[j].ReportedAt)
	})

	if historyLimit > 0 && len(records) > historyLimit {
		records = records[:historyLimit]
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No scrobbles yet")
		return nil
	}

	table := NewTable("TRACK", "ALBUM", "WHEN")
	for _, rec := range records {
		track := TruncateString(fmt.Sprintf("%s - %s", rec.Artist, rec.Title), 60)
		table.Row(track, TruncateString(rec.Album, 30), humanize.Time(rec.ReportedAt))
	}
	table.Flush()

	return nil
}
