package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stackable-labs/stackable-backend/service/store"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "create mongodb indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := loadServerConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := cfg.Log.Build()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync()

			ctx := context.Background()
			mc, err := connectMongo(ctx, cfg.MongoDB)
			if err != nil {
				return err
			}
			defer mc.Disconnect(context.Background())

			return ensureIndexes(ctx, store.NewService(cfg.MongoDB, mc), logger)
		},
	}
	return cmd
}
