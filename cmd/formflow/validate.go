package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/formflow/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [form-id...]",
	Short: "Check forms for consistency",
	Long: `Lints the given forms, or every form, and reports broken edges, loops,
duplicate variables, unreachable questions and suspicious conditions.
Exits non-zero when any form has errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		forms, closeForms, err := cli.OpenForms(cfg)
		if err != nil {
			return err
		}
		defer closeForms()

		return cli.LintForms(cmd.Context(), forms, args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
