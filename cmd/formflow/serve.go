package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/formflow/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the form editor, response sessions and Prometheus metrics over HTTP.

The editor endpoints are only mounted when the form source is writable
(--forms yaml or --forms sqlite). The OpenAPI document is at /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")

		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Starting FormFlow Server on %s\n", ln.Addr())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := cli.Serve(ctx, app, ln); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "FormFlow Server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
