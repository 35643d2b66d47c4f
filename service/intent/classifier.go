package intent

import (
	"context"
	"fmt"
	"regexp"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/stackable-labs/stackable-backend/apperr"
	"github.com/stackable-labs/stackable-backend/schema"
	"github.com/stackable-labs/stackable-backend/service/llm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const Instruction = "You are an intent extraction agent. Given a user prompt, extract the intent (action) and any entities (parameters). " +
	"Respond ONLY with a valid JSON object, no commentary, no markdown, no code block, no explanation. " +
	`Format: {"intent": ..., "entities": {...}, "raw": ...}. ` +
	"If the prompt is a question, intent is 'ask'. If it's a command (buy, launch, sell, etc.), intent is the action. " +
	"Entities may include token name, amount, etc."

const (
	IntentUnknown = "unknown"
	IntentAsk     = "ask"
	IntentBuy     = "buy"
	IntentSell    = "sell"
	IntentLaunch  = "launch"

	RawLLMKey      = "raw_llm"
	ParseErrorText = "Failed to parse LLM response"
)

var objectPattern = regexp.MustCompile(`(?s)\{.*\}`)

type Classification struct {
	Intent   string
	Entities map[string]interface{}
	Raw      map[string]interface{}
	// ParseErr is set when the reply could not be decoded. The other
	// fields then hold the unknown fallback.
	ParseErr error
}

type Cache interface {
	LoadClassification(ctx context.Context, prompt string) (*schema.ClassificationCache, error)
	SaveClassification(ctx context.Context, prompt string, v schema.ClassificationCache) error
}

type Classifier struct {
	p      llm.Provider
	cache  Cache
	logger *zap.Logger
}

// NewClassifier returns a Classifier. cache may be nil.
func NewClassifier(p llm.Provider, cache Cache, logger *zap.Logger) *Classifier {
	return &Classifier{p, cache, logger}
}

// Classify asks the provider for the intent of prompt. The returned error is
// non-nil only when the provider call fails; an undecodable reply yields
// the unknown intent with ParseErr set.
func (c *Classifier) Classify(ctx context.Context, prompt string) (Classification, error) {
	if c.cache != nil {
		cached, err := c.cache.LoadClassification(ctx, prompt)
		if err != nil {
			c.logger.Warn("failed to load classification cache", zap.Error(err))
		} else if cached != nil {
			return Classification{
				Intent:   cached.Intent,
				Entities: cached.Entities,
				Raw:      cached.Raw,
			}, nil
		}
	}
	text, err := c.p.Generate(ctx, Instruction+"\n\n"+prompt)
	if err != nil {
		return Classification{}, fmt.Errorf("classify: %w", err)
	}
	res := ParseReply(text)
	if res.ParseErr != nil {
		c.logger.Debug("unparsable intent reply", zap.String("reply", text), zap.Error(res.ParseErr))
		return res, nil
	}
	if c.cache != nil {
		if err := c.cache.SaveClassification(ctx, prompt, schema.ClassificationCache{
			Intent:   res.Intent,
			Entities: res.Entities,
			Raw:      res.Raw,
			CachedAt: time.Now().UTC(),
		}); err != nil {
			c.logger.Warn("failed to save classification cache", zap.Error(err))
		}
	}
	return res, nil
}

// ParseReply decodes the outermost JSON object found in an LLM reply.
func ParseReply(text string) Classification {
	m := objectPattern.FindString(text)
	if m == "" {
		return unknown(fmt.Errorf("%w: no JSON object in reply", apperr.ErrUpstreamParse))
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(m), &parsed); err != nil {
		return unknown(fmt.Errorf("%w: %v", apperr.ErrUpstreamParse, err))
	}
	res := Classification{
		Intent:   IntentUnknown,
		Entities: map[string]interface{}{},
	}
	switch v := parsed["intent"].(type) {
	case nil:
	case string:
		res.Intent = v
	default:
		return unknown(fmt.Errorf("%w: intent is %T, not a string", apperr.ErrUpstreamParse, v))
	}
	if ents, ok := parsed["entities"].(map[string]interface{}); ok {
		res.Entities = ents
	}
	parsed[RawLLMKey] = text
	res.Raw = parsed
	return res
}

func unknown(err error) Classification {
	return Classification{
		Intent:   IntentUnknown,
		Entities: map[string]interface{}{},
		Raw: map[string]interface{}{
			"intent":   IntentUnknown,
			"entities": map[string]interface{}{},
			RawLLMKey:  err.Error(),
			"error":    ParseErrorText,
		},
		ParseErr: err,
	}
}

// IsAction reports whether intent is one the client executes itself.
func IsAction(intent string) bool {
	switch intent {
	case IntentBuy, IntentSell, IntentLaunch:
		return true
	}
	return false
}
