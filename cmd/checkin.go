package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/app"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
)

func newCheckinCmd(e *env) *cobra.Command {
	var (
		lat, lng float64
		override bool
	)
	cmd := &cobra.Command{
		Use:   "checkin <office|home|site|other>",
		Short: "Check in at a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := model.ParseLocationType(args[0])
			if err != nil {
				return err
			}
			in := app.CheckInInput{Location: loc, Override: override}
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
				in.Coordinates = &model.Coordinates{Lat: lat, Lng: lng}
			}

			res, err := e.app.CheckIn(in)
			if err != nil {
				return err
			}
			rec := res.Record
			fmt.Fprintf(e.out, "Checked in at %s (%s) at %s.\n",
				rec.LocationType, attendanceBadge(rec.Status), rec.CheckInTime.Format("15:04"))
			if g := res.Geofence; g != nil {
				fmt.Fprintf(e.out, "  Distance from %s: %.0fm (limit %.0fm)\n", rec.LocationType, g.DistanceMeters, g.RadiusMeters)
			}
			if d := res.Late; d != nil {
				fmt.Fprintf(e.out, "  %s: expected %s, %s late\n",
					warnStyle.Render(string(d.Kind)), d.Expected.Format("15:04"), formatElapsed(int64(d.Delta().Seconds())))
			}
			for _, r := range res.Requests {
				fmt.Fprintf(e.out, "  Filed %s request %s for approval.\n", r.Type, r.ID)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Detected latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Detected longitude")
	cmd.Flags().BoolVar(&override, "override", false, "Check in outside the geo-fence and file a location exception")
	return cmd
}
