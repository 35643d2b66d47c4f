package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/stackable-labs/stackable-backend/apperr"
	"github.com/stackable-labs/stackable-backend/config"
	"github.com/stackable-labs/stackable-backend/schema"
	"github.com/stackable-labs/stackable-backend/service/intent"
	"github.com/stackable-labs/stackable-backend/service/rag"
)

type Classifier interface {
	Classify(ctx context.Context, prompt string) (intent.Classification, error)
}

type Responder interface {
	Reply(ctx context.Context, history []schema.ChatMessage, message string) (string, error)
}

type QuestionAnswerer interface {
	Ask(ctx context.Context, question string) (rag.Answer, error)
}

type Gamification interface {
	Profile(ctx context.Context, address string, xp int64) (*schema.UserProfile, error)
	Achievements(ctx context.Context, address string, xp int64) ([]schema.Achievement, error)
	Quests(ctx context.Context, address string, xp int64) ([]schema.Quest, error)
	Activity(ctx context.Context, address string, xp int64) ([]schema.Activity, error)
}

type Launchpad interface {
	Launch(ctx context.Context, req schema.LaunchTokenRequest) (*schema.LaunchTokenResponse, error)
	Buy(ctx context.Context, req schema.BuyTokenRequest) (*schema.TradeTokenResponse, error)
	Sell(ctx context.Context, req schema.SellTokenRequest) (*schema.TradeTokenResponse, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the process-scoped dependencies shared by all requests.
type Services struct {
	Classifier   Classifier
	Responder    Responder
	RAG          QuestionAnswerer
	Gamification Gamification
	Launchpad    Launchpad
	DB           Pinger
	LLMProvider  string
}

type Server struct {
	*echo.Echo
	cfg    config.ServerConfig
	svc    Services
	logger *zap.Logger
}

func New(cfg config.ServerConfig, svc Services, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Debug
	s := &Server{e, cfg, svc, logger}
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch,
			http.MethodPost, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{"*"},
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID))
			return nil
		},
	}))
	s.registerRoutes()
	return s
}

func (s *Server) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// handleError renders every error as {"message": ...}. Validation errors
// map to 400 and anything unclassified to 500.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		msg = fmt.Sprint(he.Message)
	case apperr.IsValidation(err):
		code = http.StatusBadRequest
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("uri", c.Request().RequestURI),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err))
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"message": msg})
	}
	if err != nil {
		s.logger.Error("failed to write error response", zap.Error(err))
	}
}
