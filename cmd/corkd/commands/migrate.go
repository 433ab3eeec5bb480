package commands

import (
	"github.com/spf13/cobra"

	"github.com/corkboard/corkd/internal/config"
	"github.com/corkboard/corkd/internal/printer"
	"github.com/corkboard/corkd/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update the corkd database schema.

The serve command also applies the schema on startup; migrate exists so
deployments can run schema changes separately from serving traffic.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return printer.Error("Invalid configuration", err.Error(), []string{
			"Fix corkd.yml",
			"Override settings with CORKD_* environment variables",
		})
	}

	st, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return printer.Error("Migration failed", err.Error(), []string{
			"Check database.driver and database.dsn in corkd.yml",
		})
	}
	defer st.Close()

	printer.Success("Schema is up to date (%s)\n", cfg.Database.Driver)
	return nil
}
