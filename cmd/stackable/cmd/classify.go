package cmd

import (
	"context"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/stackable-labs/stackable-backend/schema"
)

func ClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [prompt]",
		Short: "classify the intent of a prompt",
		Args:  cobra.MinimumNArgs(1),
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
			cls, _, rp, err := newClassifier(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if rp != nil {
				defer rp.Close()
			}

			res, err := cls.Classify(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(schema.ParseResponse{
				Intent:   res.Intent,
				Entities: res.Entities,
				Raw:      res.Raw,
			}, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	return cmd
}
