package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stackable-labs/stackable-backend/apperr"
	"github.com/stackable-labs/stackable-backend/config"
	"github.com/stackable-labs/stackable-backend/schema"
	"github.com/stackable-labs/stackable-backend/service/gamification"
	"github.com/stackable-labs/stackable-backend/service/intent"
	"github.com/stackable-labs/stackable-backend/service/launchpad"
	"github.com/stackable-labs/stackable-backend/service/rag"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type fakeClassifier struct {
	res intent.Classification
	err error
}

func (f *fakeClassifier) Classify(context.Context, string) (intent.Classification, error) {
	return f.res, f.err
}

type fakeResponder struct {
	history []schema.ChatMessage
	reply   string
	err     error
}

func (f *fakeResponder) Reply(_ context.Context, history []schema.ChatMessage, _ string) (string, error) {
	f.history = history
	return f.reply, f.err
}

type fakeRAG struct {
	answer rag.Answer
	err    error
	asked  []string
}

func (f *fakeRAG) Ask(_ context.Context, q string) (rag.Answer, error) {
	f.asked = append(f.asked, q)
	return f.answer, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type memStore struct {
	profiles map[string]schema.UserProfile
	quests   map[string][]schema.Quest
	tokens   []schema.Token
	trades   []schema.Trade
	err      error
}

func (m *memStore) EnsureProfile(_ context.Context, d schema.UserProfile) (*schema.UserProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[d.Address]
	if !ok {
		p = d
		m.profiles[d.Address] = p
	}
	return &p, nil
}

func (m *memStore) FindProfile(_ context.Context, address string) (*schema.UserProfile, error) {
	p, ok := m.profiles[address]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStore) EnsureAchievements(_ context.Context, _ string, seed []schema.Achievement) ([]schema.Achievement, error) {
	return seed, m.err
}

func (m *memStore) EnsureQuests(_ context.Context, address string, seed []schema.Quest) ([]schema.Quest, error) {
	if _, ok := m.quests[address]; !ok {
		m.quests[address] = seed
	}
	return m.quests[address], m.err
}

func (m *memStore) EnsureActivity(_ context.Context, _ string, seed []schema.Activity) ([]schema.Activity, error) {
	return seed, m.err
}

func (m *memStore) InsertToken(_ context.Context, t schema.Token) error {
	m.tokens = append(m.tokens, t)
	return m.err
}

func (m *memStore) InsertTrade(_ context.Context, t schema.Trade) error {
	m.trades = append(m.trades, t)
	return m.err
}

type testEnv struct {
	s    *Server
	cls  *fakeClassifier
	rsp  *fakeResponder
	rag  *fakeRAG
	repo *memStore
}

func newTestEnv() *testEnv {
	env := &testEnv{
		cls: &fakeClassifier{},
		rsp: &fakeResponder{},
		rag: &fakeRAG{},
		repo: &memStore{
			profiles: map[string]schema.UserProfile{},
			quests:   map[string][]schema.Quest{},
		},
	}
	env.s = New(config.DefaultServerConfig, Services{
		Classifier:   env.cls,
		Responder:    env.rsp,
		RAG:          env.rag,
		Gamification: gamification.NewService(env.repo),
		Launchpad:    launchpad.NewService(env.repo),
		DB:           fakePinger{},
		LLMProvider:  config.LLMProviderGemini,
	}, zap.NewNop())
	return env
}

func (env *testEnv) do(t *testing.T, method, target, body string) (int, map[string]interface{}, []byte) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	env.s.ServeHTTP(rec, req)
	var m map[string]interface{}
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	}
	return rec.Code, m, rec.Body.Bytes()
}

func TestServer_Parse(t *testing.T) {
	env := newTestEnv()
	env.cls.res = intent.ParseReply(`{"intent": "buy", "entities": {"token": "DOGE", "amount": 50}}`)
	code, m, _ := env.do(t, http.MethodPost, "/parse", `{"prompt": "buy 50 doge"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "buy", m["intent"])
	require.Equal(t, map[string]interface{}{"token": "DOGE", "amount": float64(50)}, m["entities"])
	raw := m["raw"].(map[string]interface{})
	require.Contains(t, raw, "raw_llm")

	env.cls.res = intent.ParseReply("no json here")
	code, m, _ = env.do(t, http.MethodPost, "/parse", `{"prompt": "??"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "unknown", m["intent"])
	require.Equal(t, "Failed to parse LLM response", m["raw"].(map[string]interface{})["error"])

	env.cls.err = apperr.Remote("gemini generate", errors.New("quota exceeded"))
	code, m, _ = env.do(t, http.MethodPost, "/parse", `{"prompt": "hi"}`)
	require.Equal(t, http.StatusInternalServerError, code)
	require.True(t, strings.HasPrefix(m["message"].(string), "LLM error: "))
	require.Contains(t, m["message"], "quota exceeded")
}

func TestServer_Ask(t *testing.T) {
	env := newTestEnv()
	env.rag.answer = rag.Answer{
		Answer: "Graduation moves liquidity to a DEX.",
		Raw:    map[string]interface{}{"results": []interface{}{}},
	}
	code, m, _ := env.do(t, http.MethodPost, "/ask", `{"question": "what is graduation?"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Graduation moves liquidity to a DEX.", m["answer"])
	raw := m["raw"].(map[string]interface{})
	require.Equal(t, "Graduation moves liquidity to a DEX.", raw["answer"])
	require.Contains(t, raw, "raw_rag")

	env.rag.err = apperr.Remote("rag query", errors.New("connection refused"))
	code, m, _ = env.do(t, http.MethodPost, "/ask", `{"question": "?"}`)
	require.Equal(t, http.StatusInternalServerError, code)
	require.True(t, strings.HasPrefix(m["message"].(string), "RAG error: "))
}

func TestServer_Chat(t *testing.T) {
	history := `[{"role": "user", "content": "gm"}, {"role": "assistant", "content": "gm!"}]`

	t.Run("ask", func(t *testing.T) {
		env := newTestEnv()
		env.cls.res = intent.Classification{Intent: "ask", Entities: map[string]interface{}{}}
		env.rag.answer = rag.Answer{Answer: "A bonding curve sets price by supply."}
		code, m, _ := env.do(t, http.MethodPost, "/chat", `{"history": `+history+`, "message": "what is a bonding curve?"}`)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "A bonding curve sets price by supply.", m["response"])
		require.Nil(t, m["action"])
		require.Contains(t, m, "action")
		require.Equal(t, []string{"what is a bonding curve?"}, env.rag.asked)
		hist := m["history"].([]interface{})
		require.Len(t, hist, 4)
		require.Equal(t, map[string]interface{}{"role": "user", "content": "what is a bonding curve?"}, hist[2])
		require.Equal(t, map[string]interface{}{"role": "assistant", "content": "A bonding curve sets price by supply."}, hist[3])
	})

	t.Run("action", func(t *testing.T) {
		env := newTestEnv()
		env.cls.res = intent.Classification{
			Intent:   "buy",
			Entities: map[string]interface{}{"token": "DOGE", "amount": float64(100)},
		}
		code, m, _ := env.do(t, http.MethodPost, "/chat", `{"history": [], "message": "buy 100 doge"}`)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "Okay, running buy for DOGE...", m["response"])
		require.Equal(t, map[string]interface{}{
			"type":   "buy",
			"params": map[string]interface{}{"token": "DOGE", "amount": float64(100)},
		}, m["action"])
		require.Empty(t, env.rag.asked)
		require.Empty(t, env.repo.trades)
		require.Len(t, m["history"], 2)
	})

	t.Run("action without token", func(t *testing.T) {
		env := newTestEnv()
		env.cls.res = intent.Classification{Intent: "launch", Entities: map[string]interface{}{}}
		_, m, _ := env.do(t, http.MethodPost, "/chat", `{"message": "launch something"}`)
		require.Equal(t, "Okay, running launch for ...", m["response"])
		require.Equal(t, "launch", m["action"].(map[string]interface{})["type"])
	})

	t.Run("conversation", func(t *testing.T) {
		env := newTestEnv()
		env.cls.res = intent.ParseReply("not json")
		env.rsp.reply = "Vibes are immaculate."
		code, m, _ := env.do(t, http.MethodPost, "/chat", `{"history": `+history+`, "message": "vibe check"}`)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "Vibes are immaculate.", m["response"])
		require.Nil(t, m["action"])
		require.Len(t, env.rsp.history, 2)
		require.Len(t, m["history"], 4)
	})

	t.Run("rag failure", func(t *testing.T) {
		env := newTestEnv()
		env.cls.res = intent.Classification{Intent: "ask"}
		env.rag.err = apperr.Remote("rag query", errors.New("timeout"))
		code, _, _ := env.do(t, http.MethodPost, "/chat", `{"message": "?"}`)
		require.Equal(t, http.StatusInternalServerError, code)
	})
}

func TestServer_UserProfile(t *testing.T) {
	env := newTestEnv()
	const addr = "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"

	code, m, _ := env.do(t, http.MethodGet, "/user/profile?address="+addr+"&xp=600", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, addr, m["address"])
	require.Equal(t, "SP2J6Z...9EJ7", m["shortAddress"])
	require.EqualValues(t, 3, m["level"])
	require.EqualValues(t, 750, m["nextLevelXP"])
	require.Equal(t, "Newbie", m["badge"])
	require.NotContains(t, m, "holdDays")

	code, m, _ = env.do(t, http.MethodPost, "/user/profile", `{"address": "`+addr+`", "xp": 0}`)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, m["level"])
	require.EqualValues(t, 250, m["nextLevelXP"])
	require.Len(t, env.repo.profiles, 1)

	code, m, _ = env.do(t, http.MethodGet, "/user/profile", "")
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, m["message"], "address")

	code, m, _ = env.do(t, http.MethodGet, "/user/profile?address="+addr+"&xp=9223372036854775750", "")
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, m["message"], "xp")

	env.repo.err = apperr.Store("ensure profile", errors.New("server selection timeout"))
	code, _, _ = env.do(t, http.MethodGet, "/user/profile?address=x", "")
	require.Equal(t, http.StatusInternalServerError, code)
}

func TestServer_UserLists(t *testing.T) {
	env := newTestEnv()
	for _, tc := range []struct {
		path  string
		count int
	}{
		{"/user/achievements", 6},
		{"/user/quests", 4},
		{"/user/activity", 5},
	} {
		code, _, body := env.do(t, http.MethodGet, tc.path+"?address=SP1", "")
		require.Equal(t, http.StatusOK, code, tc.path)
		var items []map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &items))
		require.Len(t, items, tc.count, tc.path)
		for _, it := range items {
			require.NotContains(t, it, "address")
			require.NotContains(t, it, "_id")
			require.NotContains(t, it, "order")
			require.NotContains(t, it, "seq")
		}

		code, _, _ = env.do(t, http.MethodPost, tc.path, `{"xp": 10}`)
		require.Equal(t, http.StatusBadRequest, code, tc.path)
	}
}

func TestServer_LaunchToken(t *testing.T) {
	env := newTestEnv()
	code, m, _ := env.do(t, http.MethodPost, "/launch-token", `{"symbol": "VIBE", "curveType": 2, "creator": "SP1"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ready_to_launch", m["status"])
	call := m["contractCall"].(map[string]interface{})
	require.Equal(t, "bonding-curve", call["contract"])
	require.Equal(t, "launch-token", call["function"])
	require.Equal(t, map[string]interface{}{
		"symbol":               "VIBE",
		"base-price":           float64(1000),
		"curve-type":           float64(2),
		"slope":                float64(10),
		"graduation-threshold": float64(1000000),
		"max-supply":           float64(100000000),
	}, call["args"])
	require.Equal(t, map[string]interface{}{
		"symbol":       "VIBE",
		"curve":        "Logarithmic",
		"initialPrice": "0.001 STX",
		"graduation":   "1.0 STX reserve",
	}, m["details"])
	require.Len(t, env.repo.tokens, 1)

	code, m, _ = env.do(t, http.MethodPost, "/launch-token", `{"curveType": 7}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, m["message"], "curveType")
	require.Len(t, env.repo.tokens, 1)
}

func TestServer_Trades(t *testing.T) {
	env := newTestEnv()
	code, m, _ := env.do(t, http.MethodPost, "/buy-token", `{"symbol": "DOGE", "amount": 250}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ready_to_buy", m["status"])
	require.Equal(t, map[string]interface{}{
		"symbol":       "DOGE",
		"amount":       float64(250),
		"max-slippage": float64(500),
	}, m["contractCall"].(map[string]interface{})["args"])

	code, m, _ = env.do(t, http.MethodPost, "/sell-token", `{"symbol": "PEPE"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ready_to_sell", m["status"])
	require.Equal(t, "sell-token", m["contractCall"].(map[string]interface{})["function"])
	require.Equal(t, map[string]interface{}{
		"symbol":       "PEPE",
		"amount":       float64(100),
		"min-received": float64(0),
	}, m["contractCall"].(map[string]interface{})["args"])

	code, _, body := env.do(t, http.MethodPost, "/buy-token", `{"symbol": "DOGE", "amount": 123456789012345678901}`)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, string(body), `"amount":123456789012345678901`)

	require.Len(t, env.repo.trades, 3)
	require.Equal(t, "unknown", env.repo.trades[0].Trader)
	require.Equal(t, schema.TradeTypeSell, env.repo.trades[1].Type)
}

func TestServer_Status(t *testing.T) {
	env := newTestEnv()
	code, m, _ := env.do(t, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", m["mongodb"])
	require.Equal(t, "gemini", m["llmProvider"])

	env.s.svc.DB = fakePinger{apperr.Store("ping", errors.New("no reachable servers"))}
	code, m, _ = env.do(t, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Contains(t, m["mongodb"], "no reachable servers")
}

func TestServer_CORS(t *testing.T) {
	env := newTestEnv()
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
