package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/storage"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

func newExportCmd(e *env) *cobra.Command {
	var (
		format  string
		dir     string
		archive bool
		all     bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export this week's attendance to stdout or a day-file archive",
		Long: `Export this week's attendance records. By default they are printed in
--format; --dir (or --archive for ~/.tat/attendance) writes them into
<dir>/YYYY/MM/DD.json instead, merging with what is already there.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := e.now()
			from, to := timecalc.WeekRange(now)
			var records []model.AttendanceRecord
			if all {
				from = time.Time{}
			}
			for _, r := range e.app.Attendance() {
				if timecalc.InRange(r.Date, from, to) {
					records = append(records, r)
				}
			}

			if archive && dir == "" {
				base, err := storage.BaseDir()
				if err != nil {
					return err
				}
				dir = base
			}
			if dir != "" {
				days, err := storage.WriteRecords(dir, records, e.loc)
				if err != nil {
					return err
				}
				fmt.Fprintf(e.out, "Archived %d records into %d day files under %s.\n", len(records), days, dir)
				return nil
			}

			switch format {
			case "json":
				data, err := json.MarshalIndent(records, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding JSON: %w", err)
				}
				fmt.Fprintln(e.out, string(data))
			case "md":
				printRecords(e.out, records, e.userNames())
			default: // csv
				printCSV(e.out, records, e.userNames())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv, json, md")
	cmd.Flags().StringVar(&dir, "dir", "", "Archive directory for day files")
	cmd.Flags().BoolVar(&archive, "archive", false, "Write day files to ~/.tat/attendance")
	cmd.Flags().BoolVar(&all, "all", false, "Export every record up to the end of this week")
	return cmd
}

func printCSV(w io.Writer, records []model.AttendanceRecord, names map[string]string) {
	fmt.Fprintln(w, "date,user,location,status,check_in,check_out,duration_minutes,segments,early_exit_reason")
	for _, r := range records {
		checkOut := ""
		durMin := int64(0)
		if r.CheckOutTime != nil {
			checkOut = r.CheckOutTime.Format(time.RFC3339)
			durMin = int64(r.CheckOutTime.Sub(r.CheckInTime).Minutes())
		}
		segs := make([]string, 0, len(r.Segments))
		for _, s := range r.Segments {
			segs = append(segs, fmt.Sprintf("%s:%d", s.LocationType, s.DurationMinutes))
		}
		user := names[r.UserID]
		if user == "" {
			user = r.UserID
		}
		fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s,%d,%s,%s\n",
			csvEscape(r.Date),
			csvEscape(user),
			csvEscape(string(r.LocationType)),
			csvEscape(string(r.Status)),
			csvEscape(r.CheckInTime.Format(time.RFC3339)),
			csvEscape(checkOut),
			durMin,
			csvEscape(strings.Join(segs, ";")),
			csvEscape(r.EarlyExitReason),
		)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
