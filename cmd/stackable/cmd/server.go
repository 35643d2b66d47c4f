package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stackable-labs/stackable-backend/server"
	"github.com/stackable-labs/stackable-backend/service/gamification"
	"github.com/stackable-labs/stackable-backend/service/intent"
	"github.com/stackable-labs/stackable-backend/service/launchpad"
	"github.com/stackable-labs/stackable-backend/service/rag"
	"github.com/stackable-labs/stackable-backend/service/store"
)

func ServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "run web server",
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

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mc, err := connectMongo(ctx, cfg.MongoDB)
			if err != nil {
				return err
			}
			defer mc.Disconnect(context.Background())

			ss := store.NewService(cfg.MongoDB, mc)
			if err := ensureIndexes(ctx, ss, logger); err != nil {
				return err
			}

			cls, p, rp, err := newClassifier(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if rp != nil {
				defer rp.Close()
			}

			s := server.New(cfg, server.Services{
				Classifier:   cls,
				Responder:    intent.NewResponder(p),
				RAG:          rag.NewClient(cfg.RAG),
				Gamification: gamification.NewService(ss),
				Launchpad:    launchpad.NewService(ss),
				DB:           ss,
				LLMProvider:  p.Name(),
			}, logger)

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				logger.Info("starting server",
					zap.String("addr", cfg.BindAddr),
					zap.String("llm_provider", p.Name()),
					zap.Bool("intent_cache", rp != nil))
				if err := s.Start(cfg.BindAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("start server: %w", err)
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				logger.Info("gracefully shutting down")
				if err := s.ShutdownWithTimeout(10 * time.Second); err != nil {
					return fmt.Errorf("shutdown server: %w", err)
				}
				return nil
			})
			return eg.Wait()
		},
	}
	return cmd
}
