package rag

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/stackable-labs/stackable-backend/apperr"
	"github.com/stackable-labs/stackable-backend/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	NoAnswer   = "No answer found."
	RawRAGKey  = "raw_rag"
	AnswerKey  = "answer"
	resultsKey = "results"
	textKey    = "text"
)

type Answer struct {
	Answer string
	Raw    map[string]interface{}
}

type Client struct {
	cfg config.RAGConfig
	hc  *http.Client
}

func NewClient(cfg config.RAGConfig) *Client {
	return &Client{cfg, &http.Client{Timeout: cfg.Timeout}}
}

type queryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

func (c *Client) Ask(ctx context.Context, question string) (Answer, error) {
	b, err := json.Marshal(queryRequest{question, c.cfg.TopK})
	if err != nil {
		return Answer{}, fmt.Errorf("marshal query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.URL, "/")+"/query", bytes.NewReader(b))
	if err != nil {
		return Answer{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return Answer{}, apperr.Remote("rag query", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Answer{}, apperr.Remote("rag query", fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Answer{}, apperr.Remote("rag query", fmt.Errorf("unexpected status %s: %s", resp.Status, bytes.TrimSpace(body)))
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Answer{}, apperr.Remote("rag query", fmt.Errorf("unmarshal response: %w", err))
	}
	text, err := answerText(raw)
	if err != nil {
		return Answer{}, apperr.Remote("rag query", err)
	}
	return Answer{text, raw}, nil
}

// answerText returns the text of the first result. A first result without
// text is malformed, not an empty answer.
func answerText(raw map[string]interface{}) (string, error) {
	results, _ := raw[resultsKey].([]interface{})
	if len(results) == 0 {
		return NoAnswer, nil
	}
	first, _ := results[0].(map[string]interface{})
	text, ok := first[textKey].(string)
	if !ok {
		return "", fmt.Errorf("first result has no %q string", textKey)
	}
	return text, nil
}

// Envelope is the raw payload returned to API clients alongside the answer.
func (a Answer) Envelope() map[string]interface{} {
	return map[string]interface{}{
		AnswerKey: a.Answer,
		RawRAGKey: a.Raw,
	}
}
