package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

func newListCmd(e *env) *cobra.Command {
	var (
		week     bool
		everyone bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List attendance records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := e.app.CurrentUser()
			if err != nil {
				return err
			}
			now := e.now()
			from, to := timecalc.StartOfDay(now), timecalc.EndOfDay(now)
			if week {
				from, to = timecalc.WeekRange(now)
			}

			var records []model.AttendanceRecord
			for _, r := range e.app.Attendance() {
				if (everyone || r.UserID == u.ID) && timecalc.InRange(r.Date, from, to) {
					records = append(records, r)
				}
			}
			printRecords(e.out, records, e.userNames())
			return nil
		},
	}
	cmd.Flags().BoolVar(&week, "week", false, "Show this week's records")
	cmd.Flags().BoolVar(&everyone, "all", false, "Show every user's records")
	return cmd
}

func (e *env) userNames() map[string]string {
	names := map[string]string{}
	for _, u := range e.app.Users() {
		names[u.ID] = u.Name
	}
	return names
}

// printRecords groups records by date and prints them. names maps user IDs
// to display names; missing entries print the ID.
func printRecords(w io.Writer, records []model.AttendanceRecord, names map[string]string) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records found.")
		return
	}
	sorted := make([]model.AttendanceRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CheckInTime.Before(sorted[j].CheckInTime)
	})

	var currentDay string
	for _, r := range sorted {
		if r.Date != currentDay {
			fmt.Fprintln(w, titleStyle.Render(r.Date))
			currentDay = r.Date
		}

		endStr := "ongoing"
		durStr := ""
		if r.CheckOutTime != nil {
			endStr = r.CheckOutTime.Format("15:04")
			durStr = fmt.Sprintf(" (%s)", timecalc.FormatDuration(int64(r.CheckOutTime.Sub(r.CheckInTime).Seconds())))
		}
		who := names[r.UserID]
		if who == "" {
			who = r.UserID
		}

		fmt.Fprintf(w, "%s–%s  %-14s %-14s %s%s\n",
			r.CheckInTime.Format("15:04"), endStr, who, r.LocationType, attendanceBadge(r.Status), durStr)
		for _, s := range r.Segments {
			fmt.Fprintf(w, "    %-14s %s  %s\n", s.LocationType, timecalc.FormatMinutes(s.DurationMinutes), s.Notes)
		}
		if r.EarlyExitReason != "" {
			fmt.Fprintf(w, "    early exit: %s\n", r.EarlyExitReason)
		}
	}
}
