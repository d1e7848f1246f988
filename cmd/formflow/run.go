package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/internal/cli"
	"github.com/aretw0/formflow/internal/presentation/tui"
)

var runCmd = &cobra.Command{
	Use:   "run <form-id>",
	Short: "Answer a form in the terminal",
	Long: `Asks the form's questions one at a time and records the response when the form is complete.

With --session the session is saved after every answer, and running the same
command again resumes where it stopped. Type exit or quit to stop early.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		headless, _ := cmd.Flags().GetBool("headless")
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")

		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		opts := cli.RunOptions{
			FormID:    args[0],
			SessionID: sessionID,
			Fresh:     fresh,
			Headless:  headless,
			Input:     cmd.InOrStdin(),
			Output:    cmd.OutOrStdout(),
		}
		if !headless && tui.IsInteractive(os.Stdout) {
			tui.PrintBanner(opts.Output, formflow.Version)
			if render, err := tui.NewRenderer(); err == nil {
				opts.Renderer = render
			} else {
				app.Logger.Warn("Markdown rendering disabled", "err", err)
			}
		}

		_, err = cli.RunSession(cmd.Context(), app, opts)
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Plain output without banner, hints or status lines")
	runCmd.Flags().String("session", "", "Save the session under this id and resume it on later runs")
	runCmd.Flags().Bool("fresh", false, "Discard the saved session before starting")
}
