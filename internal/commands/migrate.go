package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carson-networks/bank-server/internal/config"
	"github.com/carson-networks/bank-server/internal/logging"
	"github.com/carson-networks/bank-server/internal/storage/migrations"
	"github.com/carson-networks/bank-server/internal/storage/sqlconfig"
)

func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Store != config.StorePostgres {
				return errors.New("migrate: store is not postgres")
			}
			logging.SetupLogging(cfg.Log.Level)

			store, err := sqlconfig.NewStorage(cfg.Postgres)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := migrations.Up(store.DB())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d -> %d\n", result.PreMigrationVersion, result.PostMigrationVersion)
			return err
		},
	}
}
