package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/msgraph"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

func newOutlookCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outlook",
		Short: "Outlook calendar integration",
	}
	cmd.AddCommand(newOutlookSyncCmd(e))
	return cmd
}

func newOutlookSyncCmd(e *env) *cobra.Command {
	var (
		from, to, date, timezone string
		dryRun                   bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "File requests for out-of-office and working-elsewhere events",
		Long: `Import the current user's Outlook absences: out-of-office events become
Leave or Permission requests, working-elsewhere events become Location
Exception requests. Defaults to the next 30 days. Re-running is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := syncRange(e.now(), e.loc, from, to, date)
			if err != nil {
				return err
			}
			if timezone == "" {
				timezone = e.cfg.Outlook.Timezone
			}

			dryTag := ""
			if dryRun {
				dryTag = " [dry-run]"
			}
			fmt.Fprintf(e.out, "Syncing Outlook events (%s → %s)%s...\n", timecalc.DayKey(start), timecalc.DayKey(end), dryTag)

			ctx := cmd.Context()
			oc := msgraph.OAuthConfig(e.cfg.Outlook.TenantID, e.cfg.Outlook.ClientID)
			store, err := msgraph.DefaultTokenStore()
			if err != nil {
				return err
			}
			graphLog := e.log.With().Str("component", "msgraph").Logger()
			tok, err := msgraph.Authenticate(ctx, oc, store, e.out, graphLog)
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			client := msgraph.NewClient(ctx, tok, oc, store)
			events, err := client.GetCalendarView(ctx, start, end, timezone)
			if err != nil {
				return fmt.Errorf("failed to fetch calendar events: %w", err)
			}

			result := msgraph.ImportEvents(e.app, events, msgraph.ImportOptions{
				Timezone: timezone,
				DryRun:   dryRun,
				Out:      e.out,
			})
			fmt.Fprintln(e.out, "Summary:")
			fmt.Fprintf(e.out, "  %d imported\n", result.Imported)
			fmt.Fprintf(e.out, "  %d updated\n", result.Updated)
			fmt.Fprintf(e.out, "  %d skipped\n", result.Skipped)
			if result.Errors > 0 {
				return fmt.Errorf("%d events could not be imported", result.Errors)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&date, "date", "", "Sync a specific date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print planned operations without filing requests")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone for event times (default from config)")
	return cmd
}

// syncRange resolves the sync flags into a [start, end] window. Without
// flags it covers today and the next 30 days.
func syncRange(now time.Time, loc *time.Location, from, to, date string) (time.Time, time.Time, error) {
	switch {
	case date != "":
		d, err := timecalc.ParseDay(date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --date value %q: %w", date, err)
		}
		return d, timecalc.EndOfDay(d), nil

	case from != "" || to != "":
		if from == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--from is required when --to is specified")
		}
		start, err := timecalc.ParseDay(from, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from value %q: %w", from, err)
		}
		end := timecalc.EndOfDay(start.AddDate(0, 0, 30))
		if to != "" {
			t, err := timecalc.ParseDay(to, loc)
			if err != nil {
				return time.Time{}, time.Time{}, fmt.Errorf("invalid --to value %q: %w", to, err)
			}
			end = timecalc.EndOfDay(t)
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", to, from)
		}
		return start, end, nil
	}
	return timecalc.StartOfDay(now), timecalc.EndOfDay(now.AddDate(0, 0, 30)), nil
}
