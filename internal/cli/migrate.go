package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/platewise/platewise/internal/daemon"
	"github.com/platewise/platewise/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  `Open the configured database and apply all schema migrations. Safe to run repeatedly.`,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.Load(configPath)
	if err != nil {
		return err
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Printf("database ready at %s (%d statements applied)\n",
		cfg.Database.Path, len(sqlite.Migrations()))
	return nil
}
