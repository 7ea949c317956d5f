package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/clock"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/logger"
)

// errExit ends the shell loop.
var errExit = errors.New("exit")

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive attendance session",
	Long: `Start an in-memory attendance session seeded with demo data (or --seed).
Commands are read line by line, so a script can be piped in:

  printf 'checkin office\nstatus\n' | tat shell`,
	Args: cobra.NoArgs,
	RunE: runShellCmd,
}

func runShellCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := cfg.Attendance.Location()
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Component: "tat"})

	e, err := newEnv(cmd.Context(), cfg, clock.Real(loc), log, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Fprintln(e.out, `tat attendance shell. Type "help" for commands, "exit" to quit.`)
	}
	return runShell(e, cmd.InOrStdin(), interactive)
}

// runShell executes one command per input line until EOF or exit. Command
// errors are printed and the loop continues.
func runShell(e *env, in io.Reader, prompt bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(e.out, promptFor(e))
		}
		if !scanner.Scan() {
			break
		}
		args, err := words(scanner.Text())
		if err != nil {
			printError(e.out, err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if err := e.exec(args); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			printError(e.out, err)
		}
	}
	return scanner.Err()
}

// exec runs args against a fresh command tree so flag values never leak
// from one line into the next.
func (e *env) exec(args []string) error {
	root := newSessionRoot(e)
	root.SetArgs(args)
	root.SetOut(e.out)
	root.SetErr(e.out)
	return root.ExecuteContext(e.ctx)
}

func promptFor(e *env) string {
	user, err := e.app.CurrentUser()
	if err != nil {
		return "tat> "
	}
	if !e.app.LoggedIn() {
		return fmt.Sprintf("tat (%s, logged out)> ", user.Name)
	}
	return fmt.Sprintf("tat (%s)> ", user.Name)
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, errStyle.Render("error:"), err)
}

// newSessionRoot builds the command tree available inside the shell.
func newSessionRoot(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "tat",
		Short:         "Attendance session commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newWhoamiCmd(e),
		newLoginCmd(e),
		newLogoutCmd(e),
		newSwitchCmd(e),
		newUsersCmd(e),
		newShiftCmd(e),
		newBlockCmd(e, "block"),
		newBlockCmd(e, "unblock"),
		newCheckinCmd(e),
		newCheckoutCmd(e),
		newStatusCmd(e),
		newListCmd(e),
		newRequestCmd(e),
		newApproveCmd(e),
		newRejectCmd(e),
		newInfoCmd(e),
		newReplyCmd(e),
		newRecommendCmd(e),
		newFinalizeCmd(e),
		newAuditCmd(e),
		newReportCmd(e),
		newExportCmd(e),
		newAskCmd(e),
		newOutlookCmd(e),
		&cobra.Command{
			Use:     "exit",
			Aliases: []string{"quit"},
			Short:   "Leave the shell",
			Args:    cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return errExit
			},
		},
	)
	return root
}
