package cmd

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stackable-labs/stackable-backend/schema"
	"github.com/stackable-labs/stackable-backend/service/gamification"
	"github.com/stackable-labs/stackable-backend/service/store"
)

const profileStatsColumns = 6

func ImportStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-stats [csv file]",
		Short: "import trading statistics into user profiles",
		Long: "Imports rows of address,tokensCreated,totalVolume,streak,holdDays,largestTrade " +
			"into the users collection. An optional header row is skipped.",
		Args: cobra.ExactArgs(1),
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

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()
			stats, skipped, err := parseProfileStats(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			logger.Info("importing profile stats", zap.Int("rows", len(stats)), zap.Int("skipped", skipped))

			ctx := context.Background()
			mc, err := connectMongo(ctx, cfg.MongoDB)
			if err != nil {
				return err
			}
			defer mc.Disconnect(context.Background())

			gs := gamification.NewService(nil)
			res, err := store.NewService(cfg.MongoDB, mc).ImportProfileStats(ctx, stats, func(address string) schema.UserProfile {
				return gs.DefaultProfile(address, 0)
			})
			if err != nil {
				return err
			}
			logger.Info("imported profile stats",
				zap.Int64("matched", res.MatchedCount),
				zap.Int64("upserted", res.UpsertedCount))
			return nil
		},
	}
	return cmd
}

// parseProfileStats reads profile stats rows. Rows with the wrong number of
// columns are skipped and counted.
func parseProfileStats(r io.Reader) (stats []schema.ProfileStats, skipped int, err error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true
	for line := 1; ; line++ {
		row, err := rd.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, skipped, fmt.Errorf("read row: %w", err)
		}
		if line == 1 && strings.EqualFold(row[0], schema.UserAddressKey) {
			continue
		}
		if len(row) != profileStatsColumns || row[0] == "" {
			skipped++
			continue
		}
		st := schema.ProfileStats{
			Address:      row[0],
			TotalVolume:  row[2],
			LargestTrade: row[5],
		}
		for _, x := range []struct {
			dst *int64
			col int
		}{
			{&st.TokensCreated, 1},
			{&st.Streak, 3},
			{&st.HoldDays, 4},
		} {
			v, err := strconv.ParseInt(row[x.col], 10, 64)
			if err != nil {
				return nil, skipped, fmt.Errorf("line %d column %d: %w", line, x.col+1, err)
			}
			*x.dst = v
		}
		stats = append(stats, st)
	}
	return stats, skipped, nil
}
