package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/storage"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

var (
	historyWeek bool
	historyDate string
	historyDir  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived attendance records",
	Long: `List attendance records archived with "export --archive" or "export --dir".
Defaults to today; --week shows the current ISO week.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&historyWeek, "week", false, "Show this week's records")
	historyCmd.Flags().StringVar(&historyDate, "date", "", "Show a specific date (YYYY-MM-DD)")
	historyCmd.Flags().StringVar(&historyDir, "dir", "", "Archive directory (default ~/.tat/attendance)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := cfg.Attendance.Location()
	if err != nil {
		return err
	}
	now := time.Now().In(loc)

	base := historyDir
	if base == "" {
		if base, err = storage.BaseDir(); err != nil {
			return err
		}
	}

	var from, to time.Time
	switch {
	case historyDate != "":
		d, err := timecalc.ParseDay(historyDate, loc)
		if err != nil {
			return fmt.Errorf("invalid --date value %q: %w", historyDate, err)
		}
		from, to = d, timecalc.EndOfDay(d)
	case historyWeek:
		from, to = timecalc.WeekRange(now)
	default:
		from, to = timecalc.StartOfDay(now), timecalc.EndOfDay(now)
	}

	records, err := storage.LoadRange(base, from, to)
	if err != nil {
		return err
	}
	printRecords(cmd.OutOrStdout(), records, nil)
	return nil
}
