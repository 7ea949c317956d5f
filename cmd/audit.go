package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newAuditCmd(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit trail, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := e.app.AuditLogs()
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			now := e.now()
			for _, l := range entries {
				fmt.Fprintf(e.out, "%-14s %-16s %-24s %s\n",
					dimStyle.Render(humanize.RelTime(l.Timestamp, now, "ago", "from now")),
					l.Action,
					fmt.Sprintf("%s (%s)", l.PerformedBy, l.Role),
					l.Details)
			}
			fmt.Fprintf(e.out, "%s entries\n", humanize.Comma(int64(len(e.app.AuditLogs()))))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Show at most this many entries (0 for all)")
	return cmd
}
