package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message...>",
		Short: "Talk to the attendance assistant",
		Long: `Send a message to the assistant. It can check you in or out and report
your attendance, e.g. ask "check me in from home".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answer := e.assistant.Handle(cmd.Context(), strings.Join(args, " "))
			fmt.Fprintf(e.out, "%s %s\n", infoStyle.Render("assistant:"), answer)
			return nil
		},
	}
}
