package main

import (
	"github.com/spf13/cobra"

	"github.com/metersplit/metersplit/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the metersplit server.

The server will:
  - Load configuration from metersplit.yaml (or --config)
  - Or load configuration from METERSPLIT_* environment variables
  - Connect to the database and run migrations
  - Serve the JSON API, /metrics, and Swagger docs

Environment variables (for Docker deployments):
  METERSPLIT_DATABASE_DSN    - Database path (default: metersplit.db)
  METERSPLIT_SERVER_PORT     - Server port (default: 8080)
  METERSPLIT_ADMIN_API_KEY   - Admin API key (empty disables auth)
  METERSPLIT_LOG_LEVEL       - Log level: debug, info, warn, error

Examples:
  metersplit serve
  metersplit serve --config /etc/metersplit/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New(cfgFile)
	if err != nil {
		return err
	}
	return app.Run()
}
