package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

func newStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current attendance status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := e.app.CurrentUser()
			if err != nil {
				return err
			}
			now := e.now()

			if active, ok := e.app.ActiveRecord(); ok {
				elapsed := int64(now.Sub(active.CheckInTime).Seconds())
				fmt.Fprintf(e.out, "%s %s\n", u.Name, okStyle.Render("checked in"))
				fmt.Fprintf(e.out, "  Location: %s (%s)\n", active.LocationType, attendanceBadge(active.Status))
				fmt.Fprintf(e.out, "  Since: %s\n", active.CheckInTime.Format("15:04"))
				fmt.Fprintf(e.out, "  Elapsed: %s\n", timecalc.FormatDurationHHMMSS(elapsed))
				return nil
			}

			var minutes int
			for _, r := range e.app.TodayRecords() {
				minutes += r.SegmentMinutes()
			}
			fmt.Fprintf(e.out, "%s %s\n", u.Name, dimStyle.Render("not checked in"))
			fmt.Fprintf(e.out, "Today: %s logged.\n", timecalc.FormatMinutes(minutes))
			fmt.Fprintf(e.out, "Present %d days this month.\n", e.app.PresentDays(u.ID, now))
			return nil
		},
	}
}
