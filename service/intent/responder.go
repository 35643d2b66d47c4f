package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/stackable-labs/stackable-backend/schema"
	"github.com/stackable-labs/stackable-backend/service/llm"
	"github.com/stackable-labs/stackable-backend/util"
)

type Responder struct {
	p llm.Provider
}

func NewResponder(p llm.Provider) *Responder {
	return &Responder{p}
}

func (r *Responder) Reply(ctx context.Context, history []schema.ChatMessage, message string) (string, error) {
	text, err := r.p.Generate(ctx, Transcript(history, message))
	if err != nil {
		return "", fmt.Errorf("reply: %w", err)
	}
	return text, nil
}

// Transcript renders the conversation as "Role: content" lines ending with
// the new user message.
func Transcript(history []schema.ChatMessage, message string) string {
	lines := make([]string, 0, len(history)+1)
	for _, m := range history {
		lines = append(lines, util.Capitalize(m.Role)+": "+m.Content)
	}
	lines = append(lines, "User: "+message)
	return strings.Join(lines, "\n")
}
