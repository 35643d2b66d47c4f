package cmd

import (
	"context"
	"fmt"

	"github.com/gomodule/redigo/redis"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/stackable-labs/stackable-backend/config"
	"github.com/stackable-labs/stackable-backend/service/cache"
	"github.com/stackable-labs/stackable-backend/service/intent"
	"github.com/stackable-labs/stackable-backend/service/llm"
)

func loadServerConfig(cmd *cobra.Command) (config.ServerConfig, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.ServerConfig{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.ServerConfig{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Server.Validate(); err != nil {
		return config.ServerConfig{}, fmt.Errorf("validate server config: %w", err)
	}
	return cfg.Server, nil
}

func connectMongo(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, error) {
	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	return mc, nil
}

type indexEnsurer interface {
	EnsureDBIndexes(ctx context.Context) ([]string, error)
}

// ensureIndexes creates the indexes lazy seeding relies on. Existing
// indexes are left untouched.
func ensureIndexes(ctx context.Context, ix indexEnsurer, logger *zap.Logger) error {
	names, err := ix.EnsureDBIndexes(ctx)
	if err != nil {
		return fmt.Errorf("ensure db indexes: %w", err)
	}
	logger.Info("ensured indexes", zap.Strings("names", names))
	return nil
}

// newClassifier builds the classifier and the provider it talks to.
// The returned pool is nil when no redis cache is configured.
func newClassifier(ctx context.Context, cfg config.ServerConfig, logger *zap.Logger) (*intent.Classifier, llm.Provider, *redis.Pool, error) {
	p, err := llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("new llm provider: %w", err)
	}
	if !cfg.Redis.Enabled() {
		return intent.NewClassifier(p, nil, logger), p, nil, nil
	}
	rp := cache.NewPool(cfg.Redis)
	cs := cache.NewService(cfg.Redis, rp)
	return intent.NewClassifier(p, cs, logger), p, rp, nil
}
