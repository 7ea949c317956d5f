package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/app"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
)

func newCheckoutCmd(e *env) *cobra.Command {
	var (
		segments []string
		reason   string
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Check out, splitting the session across locations",
		Long: `Check out of the active session. Each --segment is location:minutes[:note],
e.g. --segment office:240 --segment "site:180:Client visit". Without segments
the whole session is attributed to the check-in location.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			active, ok := e.app.ActiveRecord()
			in := app.CheckOutInput{Reason: reason}
			for _, s := range segments {
				seg, err := parseSegment(s)
				if err != nil {
					return err
				}
				in.Segments = append(in.Segments, seg)
			}
			if len(in.Segments) == 0 && ok {
				in.Segments = []model.AttendanceSegment{{
					LocationType:    active.LocationType,
					DurationMinutes: max(1, int(e.now().Sub(active.CheckInTime).Minutes())),
				}}
			}

			res, err := e.app.CheckOut(in)
			if err != nil {
				return err
			}
			rec := res.Record
			elapsed := int64(rec.CheckOutTime.Sub(rec.CheckInTime).Seconds())
			fmt.Fprintf(e.out, "Checked out at %s. Elapsed: %s\n", rec.CheckOutTime.Format("15:04"), formatElapsed(elapsed))
			for _, s := range rec.Segments {
				fmt.Fprintf(e.out, "  %-14s %4dm  %s\n", s.LocationType, s.DurationMinutes, s.Notes)
			}
			if d := res.Early; d != nil {
				fmt.Fprintf(e.out, "  %s: shift ends %s (%s)\n", warnStyle.Render(string(d.Kind)), d.Expected.Format("15:04"), rec.EarlyExitReason)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&segments, "segment", nil, "Segment as location:minutes[:note] (repeatable)")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason for leaving before the end of the shift")
	return cmd
}

// parseSegment parses "location:minutes[:note]".
func parseSegment(s string) (model.AttendanceSegment, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return model.AttendanceSegment{}, fmt.Errorf("segment %q: want location:minutes[:note]", s)
	}
	loc, err := model.ParseLocationType(parts[0])
	if err != nil {
		return model.AttendanceSegment{}, fmt.Errorf("segment %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return model.AttendanceSegment{}, fmt.Errorf("segment %q: minutes must be a number", s)
	}
	seg := model.AttendanceSegment{LocationType: loc, DurationMinutes: minutes}
	if len(parts) == 3 {
		seg.Notes = strings.TrimSpace(parts[2])
	}
	return seg, nil
}

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
