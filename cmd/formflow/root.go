package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/formflow/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "formflow",
	Short: "FormFlow runs conditional forms",
	Long: `FormFlow builds and runs forms whose next question depends on earlier answers.

Forms are read from --dir as Markdown documents (default) or YAML files, or
from the SQLite database. Sessions and completed responses are kept in SQLite
(--sqlite) or Redis (--redis).

Environment:
  OPENAI_API_KEY, OPENAI_MODEL        used with --phrase
  FORMFLOW_MAX_INPUT_SIZE             longest accepted text answer
  FORMFLOW_ENCRYPTION_KEY             hex AES-256 key for stored sessions
  FORMFLOW_ENCRYPTION_FALLBACK_KEYS   older keys still accepted for decryption
  FORMFLOW_PII_KEYS                   variable name patterns masked in responses`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("dir", ".", "Directory containing the forms")
	flags.String("forms", cli.FormsMarkdown, "Form source: markdown, yaml or sqlite")
	flags.String("sqlite", ".formflow/formflow.db", "SQLite database for sessions and responses (empty keeps them in memory)")
	flags.String("redis", "", "Redis address for sessions and locks, e.g. localhost:6379")
	flags.Duration("session-ttl", 0, "Expire idle Redis sessions after this long (0 keeps them)")
	flags.Bool("phrase", false, "Phrase transitions between questions with OpenAI")
	flags.String("openai-model", "", "OpenAI model used with --phrase")
	flags.String("log-level", "warn", "Log level: debug, info, warn or error")
}

// loadConfig collects the persistent flags and the environment.
func loadConfig(cmd *cobra.Command) (cli.Config, error) {
	flags := cmd.Flags()
	cfg := cli.Config{}
	cfg.Dir, _ = flags.GetString("dir")
	cfg.Forms, _ = flags.GetString("forms")
	cfg.SQLitePath, _ = flags.GetString("sqlite")
	cfg.RedisAddr, _ = flags.GetString("redis")
	cfg.SessionTTL, _ = flags.GetDuration("session-ttl")
	cfg.Phrase, _ = flags.GetBool("phrase")
	cfg.OpenAIModel, _ = flags.GetString("openai-model")
	cfg.LogLevel, _ = flags.GetString("log-level")
	if err := cfg.LoadEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// buildApp wires the engine and stores from flags.
func buildApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := cli.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return cli.Build(cfg, logger)
}
