package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/formflow/internal/cli"
	"github.com/aretw0/formflow/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph <form-id>",
	Short: "Export the form as a Mermaid flowchart",
	Long: `Outputs a Mermaid diagram (graph TD) of the form's questions and transitions.
With --session, the questions that session visited and its current question are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		ctx := cmd.Context()

		if sessionID == "" {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			forms, closeForms, err := cli.OpenForms(cfg)
			if err != nil {
				return err
			}
			defer closeForms()

			form, err := forms.GetForm(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(form, nil))
			return nil
		}

		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		form, err := app.Engine.Inspect(ctx, args[0])
		if err != nil {
			return err
		}
		state, err := app.Sessions.Load(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", sessionID, err)
		}
		if state.FormID != form.ID {
			return fmt.Errorf("session %s belongs to form %s", sessionID, state.FormID)
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(form, graph.OverlayFromState(state)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the path of this saved session")
}
