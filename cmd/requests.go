package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/request"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

// draftFlags collects the request fields shared by create and update.
type draftFlags struct {
	from, to, reason string
	duration         string
	start, end       string
	location         string
	checkIn          string
	checkOut         string
	shift            string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.from, "from", "", "Start date YYYY-MM-DD (default today)")
	fl.StringVar(&f.to, "to", "", "End date YYYY-MM-DD")
	fl.StringVar(&f.reason, "reason", "", "Reason for the request")
	fl.StringVar(&f.duration, "duration", "", `Leave or exception duration (default "Full Day")`)
	fl.StringVar(&f.start, "start", "", "Permission start time HH:MM")
	fl.StringVar(&f.end, "end", "", "Permission end time HH:MM")
	fl.StringVar(&f.location, "location", "office", "Location for regularization or exception requests")
	fl.StringVar(&f.checkIn, "check-in", "", "Regularized check-in time HH:MM, or actual time for a late check-in")
	fl.StringVar(&f.checkOut, "check-out", "", "Regularized check-out time HH:MM")
	fl.StringVar(&f.shift, "shift", "", "Requested shift: template name or HH:MM-HH:MM")
}

func (f *draftFlags) draft(typeArg string, e *env) (request.Draft, error) {
	typ, err := model.ParseRequestType(typeArg)
	if err != nil {
		return request.Draft{}, err
	}
	d := request.Draft{Type: typ, StartDate: f.from, EndDate: f.to, Reason: f.reason}
	if d.StartDate == "" {
		d.StartDate = timecalc.DayKey(e.now())
	}
	duration := f.duration
	if duration == "" {
		duration = model.FullDay
	}

	switch typ {
	case model.RequestLeave:
		d.Details = model.LeaveDetails{Duration: duration}
	case model.RequestPermission:
		d.Details = model.PermissionDetails{StartTime: f.start, EndTime: f.end}
	case model.RequestRegularization, model.RequestLocationException, model.RequestLateCheckIn:
		loc, err := model.ParseLocationType(f.location)
		if err != nil {
			return request.Draft{}, err
		}
		switch typ {
		case model.RequestRegularization:
			d.Details = model.RegularizationDetails{CheckInTime: f.checkIn, CheckOutTime: f.checkOut, Location: loc}
		case model.RequestLocationException:
			d.Details = model.LocationExceptionDetails{LocationType: loc, Duration: duration}
		default:
			u, err := e.app.CurrentUser()
			if err != nil {
				return request.Draft{}, err
			}
			det := model.LateCheckInDetails{ActualTime: f.checkIn, Location: loc}
			if u.Shift != nil {
				det.ExpectedTime = u.Shift.StartTime
			}
			d.Details = det
		}
	case model.RequestShiftChange:
		if f.shift == "" {
			return request.Draft{}, fmt.Errorf("a shift change needs --shift")
		}
		shift, err := findShift(f.shift)
		if err != nil {
			return request.Draft{}, err
		}
		d.Details = model.ShiftChangeDetails{RequestedShift: shift}
	}
	return d, nil
}

func newRequestCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "request",
		Aliases: []string{"requests"},
		Short:   "Create, edit and list requests",
	}
	cmd.AddCommand(newRequestCreateCmd(e), newRequestUpdateCmd(e), newRequestDeleteCmd(e), newRequestListCmd(e))
	return cmd
}

func newRequestCreateCmd(e *env) *cobra.Command {
	var (
		f   draftFlags
		key string
	)
	cmd := &cobra.Command{
		Use:   "create <leave|regularization|permission|location|shift-change|late>",
		Short: "File a new request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := f.draft(args[0], e)
			if err != nil {
				return err
			}
			item, err := e.app.CreateRequest(d, request.CreateOptions{IdempotencyKey: key})
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Filed %s request %s (%s).\n", item.Type, item.ID, requestBadge(item.Status))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&key, "key", "", "Idempotency key; repeating it returns the first request")
	return cmd
}

func newRequestUpdateCmd(e *env) *cobra.Command {
	var (
		f       draftFlags
		version int
	)
	cmd := &cobra.Command{
		Use:   "update <id> <type>",
		Short: "Edit a pending request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := f.draft(args[1], e)
			if err != nil {
				return err
			}
			item, err := e.app.UpdateRequest(args[0], d, version)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Updated request %s (version %d).\n", item.ID, item.Version)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&version, "version", 0, "Expected request version (0 skips the check)")
	return cmd
}

func newRequestDeleteCmd(e *env) *cobra.Command {
	var version int
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Withdraw a pending request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := e.app.DeleteRequest(args[0], version)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Deleted %s request %s.\n", item.Type, item.ID)
			return nil
		},
	}
	cmd.Flags().IntVar(&version, "version", 0, "Expected request version (0 skips the check)")
	return cmd
}

func newRequestListCmd(e *env) *cobra.Command {
	var mine, pending bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List requests, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := e.app.Requests()
			switch {
			case mine:
				items = e.app.MyRequests()
			case pending:
				items = e.app.PendingRequests()
			}
			if len(items) == 0 {
				fmt.Fprintln(e.out, "No requests found.")
				return nil
			}
			for _, r := range items {
				printRequest(e.out, r)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&mine, "mine", false, "Only the current user's requests")
	cmd.Flags().BoolVar(&pending, "pending", false, "Only requests awaiting a decision")
	return cmd
}

func printRequest(w io.Writer, r model.RequestItem) {
	dates := r.StartDate
	if r.EndDate != "" && r.EndDate != r.StartDate {
		dates += ".." + r.EndDate
	}
	fmt.Fprintf(w, "%-10s %-18s %-16s %-22s %-14s v%d\n",
		r.ID, r.Type, requestBadge(r.Status), dates, r.UserName, r.Version)
	fmt.Fprintf(w, "    %s\n", r.Reason)
	if d := describeDetails(r.Details); d != "" {
		fmt.Fprintf(w, "    %s\n", dimStyle.Render(d))
	}
	if r.ManagerNotes != "" {
		fmt.Fprintf(w, "    manager: %s\n", r.ManagerNotes)
	}
	if r.EmployeeResponse != "" {
		fmt.Fprintf(w, "    employee: %s\n", r.EmployeeResponse)
	}
}

func describeDetails(d model.RequestDetails) string {
	switch d := d.(type) {
	case model.LeaveDetails:
		return d.Duration
	case model.PermissionDetails:
		return d.StartTime + "-" + d.EndTime
	case model.RegularizationDetails:
		return fmt.Sprintf("%s-%s at %s", d.CheckInTime, d.CheckOutTime, d.Location)
	case model.LocationExceptionDetails:
		return fmt.Sprintf("%s, %s", d.LocationType, d.Duration)
	case model.ShiftChangeDetails:
		return "to " + d.RequestedShift.String()
	case model.LateCheckInDetails:
		return fmt.Sprintf("expected %s, arrived %s at %s", d.ExpectedTime, d.ActualTime, d.Location)
	}
	return ""
}

// newDecisionCmd builds a command that moves one request through the
// approval flow. With withNote the remaining arguments form a note.
func newDecisionCmd(use, short string, withNote bool, run func(id, note string, version int) (model.RequestItem, error), e *env) *cobra.Command {
	var version int
	args := cobra.ExactArgs(1)
	if withNote {
		args = cobra.MinimumNArgs(2)
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := run(args[0], strings.Join(args[1:], " "), version)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%s request %s is now %s.\n", item.Type, item.ID, requestBadge(item.Status))
			return nil
		},
	}
	cmd.Flags().IntVar(&version, "version", 0, "Expected request version (0 skips the check)")
	return cmd
}

func newApproveCmd(e *env) *cobra.Command {
	return newDecisionCmd("approve <id>", "Approve a pending or manager-approved request", false,
		func(id, _ string, v int) (model.RequestItem, error) { return e.app.ApproveRequest(id, v) }, e)
}

func newRejectCmd(e *env) *cobra.Command {
	return newDecisionCmd("reject <id>", "Reject a request", false,
		func(id, _ string, v int) (model.RequestItem, error) { return e.app.RejectRequest(id, v) }, e)
}

func newInfoCmd(e *env) *cobra.Command {
	return newDecisionCmd("info <id> <question...>", "Ask the employee for more information", true,
		e.app.RequestInformation, e)
}

func newReplyCmd(e *env) *cobra.Command {
	return newDecisionCmd("reply <id> <answer...>", "Answer an information request", true,
		e.app.ReplyToInfoRequest, e)
}

func newRecommendCmd(e *env) *cobra.Command {
	return newDecisionCmd("recommend <id>", "Recommend a shift change to HR (manager approval)", false,
		func(id, _ string, v int) (model.RequestItem, error) { return e.app.ManagerApproveShiftChange(id, v) }, e)
}

func newFinalizeCmd(e *env) *cobra.Command {
	return newDecisionCmd("finalize <id>", "Apply a recommended shift change (HR)", false,
		func(id, _ string, v int) (model.RequestItem, error) { return e.app.FinalizeShiftChange(id, v) }, e)
}
