package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/stackable-labs/stackable-backend/schema"
	"github.com/stackable-labs/stackable-backend/service/intent"
)

// Chat classifies the message and answers it according to its intent.
// Trading commands are not executed here; they come back as an action
// for the client to run.
func (s *Server) Chat(c echo.Context) error {
	var req schema.ChatRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	cls, err := s.svc.Classifier.Classify(ctx, req.Message)
	if err != nil {
		return fmt.Errorf("classify message: %w", err)
	}
	if cls.ParseErr != nil {
		s.logger.Debug("chat message classified as unknown", zap.Error(cls.ParseErr))
	}

	var resp schema.ChatResponse
	switch {
	case cls.Intent == intent.IntentAsk:
		a, err := s.svc.RAG.Ask(ctx, req.Message)
		if err != nil {
			return fmt.Errorf("ask: %w", err)
		}
		resp.Response = a.Answer
	case intent.IsAction(cls.Intent):
		token := ""
		if v, ok := cls.Entities["token"]; ok && v != nil {
			token = fmt.Sprint(v)
		}
		resp.Response = fmt.Sprintf("Okay, running %s for %s...", cls.Intent, token)
		resp.Action = &schema.ChatAction{
			Type:   cls.Intent,
			Params: cls.Entities,
		}
	default:
		reply, err := s.svc.Responder.Reply(ctx, req.History, req.Message)
		if err != nil {
			return fmt.Errorf("reply: %w", err)
		}
		resp.Response = reply
	}

	resp.History = make([]schema.ChatMessage, 0, len(req.History)+2)
	resp.History = append(resp.History, req.History...)
	resp.History = append(resp.History,
		schema.ChatMessage{Role: schema.ChatRoleUser, Content: req.Message},
		schema.ChatMessage{Role: schema.ChatRoleAssistant, Content: resp.Response},
	)
	return c.JSON(http.StatusOK, resp)
}
