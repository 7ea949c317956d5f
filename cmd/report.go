package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

type locationTotal struct {
	Location model.LocationType `json:"location"`
	Minutes  int                `json:"duration_minutes"`
}

type weeklyReport struct {
	Week         string          `json:"week"`
	User         string          `json:"user"`
	Locations    []locationTotal `json:"locations"`
	TotalMinutes int             `json:"total_minutes"`
	PresentDays  int             `json:"present_days_this_month"`
	Team         model.TeamStats `json:"team_today"`
}

func newReportCmd(e *env) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show this week's minutes per location and today's team stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := e.app.CurrentUser()
			if err != nil {
				return err
			}
			now := e.now()
			from, to := timecalc.WeekRange(now)

			rep := weeklyReport{
				Week:        timecalc.ISOWeekLabel(now),
				User:        u.Name,
				PresentDays: e.app.PresentDays(u.ID, now),
				Team:        e.app.TeamStats(now),
			}
			for loc, minutes := range e.app.LocationMinutes(u.ID, from, to) {
				rep.Locations = append(rep.Locations, locationTotal{Location: loc, Minutes: minutes})
				rep.TotalMinutes += minutes
			}
			sort.Slice(rep.Locations, func(i, j int) bool {
				return rep.Locations[i].Location < rep.Locations[j].Location
			})

			switch format {
			case "csv":
				fmt.Fprintln(e.out, "location,duration_minutes")
				for _, l := range rep.Locations {
					fmt.Fprintf(e.out, "%s,%d\n", csvEscape(string(l.Location)), l.Minutes)
				}
			case "json":
				data, err := json.MarshalIndent(rep, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding report: %w", err)
				}
				fmt.Fprintln(e.out, string(data))
			default: // md
				fmt.Fprintf(e.out, "Week %s, %s\n", rep.Week, rep.User)
				fmt.Fprintln(e.out, "--------------------------------")
				for _, l := range rep.Locations {
					fmt.Fprintf(e.out, "%-20s%s\n", l.Location, timecalc.FormatMinutes(l.Minutes))
				}
				fmt.Fprintln(e.out, "--------------------------------")
				fmt.Fprintf(e.out, "%-20s%s\n", "Total", timecalc.FormatMinutes(rep.TotalMinutes))
				fmt.Fprintf(e.out, "Present %d days this month.\n", rep.PresentDays)
				t := rep.Team
				fmt.Fprintf(e.out, "Team today: %d total, %d present, %d WFH, %d on leave, %d absent\n",
					t.Total, t.Present, t.WFH, t.Leave, t.Absent)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "md", "Output format: md, csv, json")
	return cmd
}
