package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/app"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := e.app.CurrentUser()
			if err != nil {
				return err
			}
			state := okStyle.Render("logged in")
			if !e.app.LoggedIn() {
				state = dimStyle.Render("logged out")
			}
			fmt.Fprintf(e.out, "%s (%s), %s, %s [%s]\n", u.Name, u.ID, u.Role, u.Department, state)
			if u.Shift != nil {
				fmt.Fprintf(e.out, "  Shift: %s\n", u.Shift)
			}
			b := u.LeaveBalance
			fmt.Fprintf(e.out, "  Leave: %d casual, %d sick, %d earned\n", b.Casual, b.Sick, b.Earned)
			return nil
		},
	}
}

func newLoginCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "login <role>",
		Short: "Log in as the first user with a role (employee, manager, hr)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := model.ParseRole(args[0])
			if err != nil {
				return err
			}
			u, err := e.app.Login(role)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Logged in as %s (%s).\n", u.Name, u.Role)
			return nil
		},
	}
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e.app.Logout()
			fmt.Fprintln(e.out, "Logged out.")
			return nil
		},
	}
}

func newSwitchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <user-id>",
		Short: "Act as another user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := e.app.SwitchUser(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Now acting as %s (%s).\n", u.Name, u.Role)
			return nil
		},
	}
}

func newUsersCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, u := range e.app.Users() {
				shift := "-"
				if u.Shift != nil {
					shift = u.Shift.String()
				}
				fmt.Fprintf(e.out, "%-4s %-16s %-9s %-12s %-8s %s\n",
					u.ID, u.Name, u.Role, u.Department, userBadge(u.Status), shift)
			}
			return nil
		},
	}
}

// findShift resolves a template name prefix ("night") or a custom
// "HH:MM-HH:MM" window.
func findShift(arg string) (model.ShiftConfig, error) {
	want := strings.ToLower(strings.TrimSpace(arg))
	for _, t := range app.ShiftTemplates() {
		if strings.HasPrefix(strings.ToLower(t.Name), want) {
			return t, nil
		}
	}
	if start, end, ok := strings.Cut(arg, "-"); ok {
		for _, c := range []string{start, end} {
			if _, _, err := timecalc.ParseClock(c); err != nil {
				return model.ShiftConfig{}, fmt.Errorf("custom shift %q: %w", arg, err)
			}
		}
		return model.ShiftConfig{Name: "Custom Shift", StartTime: start, EndTime: end}, nil
	}
	return model.ShiftConfig{}, fmt.Errorf("unknown shift %q: use a template name or HH:MM-HH:MM", arg)
}

func newShiftCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shift <user-id> <template|HH:MM-HH:MM>",
		Short: "Assign a shift to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shift, err := findShift(args[1])
			if err != nil {
				return err
			}
			u, err := e.app.UpdateUserShift(args[0], shift)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%s now works %s.\n", u.Name, u.Shift)
			return nil
		},
	}
	var names []string
	for _, t := range app.ShiftTemplates() {
		names = append(names, t.String())
	}
	cmd.Long = "Templates: " + strings.Join(names, ", ")
	return cmd
}

func newBlockCmd(e *env, verb string) *cobra.Command {
	status, short, done := model.UserBlocked, "Block a user", "Blocked"
	if verb == "unblock" {
		status, short, done = model.UserActive, "Reactivate a blocked user", "Unblocked"
	}
	return &cobra.Command{
		Use:   verb + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := e.app.ToggleUserStatus(args[0], status)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%s %s.\n", done, u.Name)
			return nil
		},
	}
}
