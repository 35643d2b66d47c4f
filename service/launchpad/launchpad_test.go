package launchpad

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stackable-labs/stackable-backend/apperr"
	"github.com/stackable-labs/stackable-backend/schema"
)

type memRecorder struct {
	tokens []schema.Token
	trades []schema.Trade
	err    error
}

func (r *memRecorder) InsertToken(_ context.Context, t schema.Token) error {
	if r.err != nil {
		return r.err
	}
	r.tokens = append(r.tokens, t)
	return nil
}

func (r *memRecorder) InsertTrade(_ context.Context, t schema.Trade) error {
	if r.err != nil {
		return r.err
	}
	r.trades = append(r.trades, t)
	return nil
}

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestService(rec Recorder) *Service {
	s := NewService(rec)
	s.now = func() time.Time { return testNow }
	return s
}

func strPtr(s string) *string { return &s }
func numPtr(s string) *json.Number { n := json.Number(s); return &n }
func intPtr(i int) *int { return &i }

func TestService_LaunchDefaults(t *testing.T) {
	rec := &memRecorder{}
	resp, err := newTestService(rec).Launch(context.Background(), schema.LaunchTokenRequest{})
	require.NoError(t, err)
	require.Equal(t, schema.StatusReadyToLaunch, resp.Status)
	require.Equal(t, "bonding-curve", resp.ContractCall.Contract)
	require.Equal(t, "launch-token", resp.ContractCall.Function)
	require.Equal(t, schema.LaunchTokenArgs{
		Symbol:              "TOKEN",
		BasePrice:           "1000",
		CurveType:           0,
		Slope:               "10",
		GraduationThreshold: "1000000",
		MaxSupply:           "100000000",
	}, resp.ContractCall.Args)
	require.Equal(t, schema.LaunchTokenDetails{
		Symbol:       "TOKEN",
		Curve:        "Linear",
		InitialPrice: "0.001 STX",
		Graduation:   "1.0 STX reserve",
	}, resp.Details)

	require.Len(t, rec.tokens, 1)
	tok := rec.tokens[0]
	require.Equal(t, "unknown", tok.Creator)
	require.Equal(t, schema.TokenStatusPendingLaunch, tok.Status)
	require.Equal(t, testNow, tok.CreatedAt)
}

func TestService_LaunchCurves(t *testing.T) {
	for _, tc := range []struct {
		curveType int
		curve     string
	}{
		{0, "Linear"},
		{1, "Exponential"},
		{2, "Logarithmic"},
		{3, "Sigmoid"},
	} {
		rec := &memRecorder{}
		resp, err := newTestService(rec).Launch(context.Background(), schema.LaunchTokenRequest{
			Symbol:              strPtr("MOON"),
			BasePrice:           numPtr("2500000"),
			CurveType:           intPtr(tc.curveType),
			GraduationThreshold: numPtr("500000"),
			Creator:             strPtr("SP3FBR2AGK5H9QBDH3EEN6DF8EK8JY7RX8QJ5SVTE"),
		})
		require.NoError(t, err)
		require.Equal(t, tc.curve, resp.Details.Curve)
		require.Equal(t, "MOON", resp.Details.Symbol)
		require.Equal(t, "2.5 STX", resp.Details.InitialPrice)
		require.Equal(t, "0.5 STX reserve", resp.Details.Graduation)
		require.Equal(t, "SP3FBR2AGK5H9QBDH3EEN6DF8EK8JY7RX8QJ5SVTE", rec.tokens[0].Creator)
	}
}

func TestService_LaunchInvalidCurve(t *testing.T) {
	for _, ct := range []int{-1, 4, 99} {
		rec := &memRecorder{}
		_, err := newTestService(rec).Launch(context.Background(), schema.LaunchTokenRequest{CurveType: intPtr(ct)})
		require.True(t, apperr.IsValidation(err), ct)
		require.Empty(t, rec.tokens)
	}
}

func TestService_LaunchStoreError(t *testing.T) {
	rec := &memRecorder{err: apperr.Store("insert token", errors.New("timeout"))}
	_, err := newTestService(rec).Launch(context.Background(), schema.LaunchTokenRequest{})
	require.True(t, errors.Is(err, apperr.ErrStoreUnavailable))
}

func TestService_Buy(t *testing.T) {
	rec := &memRecorder{}
	s := newTestService(rec)

	resp, err := s.Buy(context.Background(), schema.BuyTokenRequest{Symbol: strPtr("DOGE")})
	require.NoError(t, err)
	require.Equal(t, schema.StatusReadyToBuy, resp.Status)
	require.Equal(t, "buy-token", resp.ContractCall.Function)
	require.Equal(t, schema.BuyTokenArgs{Symbol: "DOGE", Amount: "100", MaxSlippage: "500"}, resp.ContractCall.Args)

	resp, err = s.Buy(context.Background(), schema.BuyTokenRequest{
		Amount:      numPtr("42.5"),
		MaxSlippage: numPtr("100"),
		Trader:      strPtr("SP1"),
	})
	require.NoError(t, err)
	require.Equal(t, schema.BuyTokenArgs{Symbol: "TOKEN", Amount: "42.5", MaxSlippage: "100"}, resp.ContractCall.Args)

	require.Equal(t, []schema.Trade{
		{Symbol: "DOGE", Type: "buy", Amount: 100, Trader: "unknown", Timestamp: testNow},
		{Symbol: "TOKEN", Type: "buy", Amount: 42.5, Trader: "SP1", Timestamp: testNow},
	}, rec.trades)
}

func TestService_Sell(t *testing.T) {
	rec := &memRecorder{}
	resp, err := newTestService(rec).Sell(context.Background(), schema.SellTokenRequest{
		Symbol:      strPtr("PEPE"),
		Amount:      numPtr("1200"),
		MinReceived: numPtr("3"),
	})
	require.NoError(t, err)
	require.Equal(t, schema.StatusReadyToSell, resp.Status)
	require.Equal(t, "sell-token", resp.ContractCall.Function)
	require.Equal(t, schema.SellTokenArgs{Symbol: "PEPE", Amount: "1200", MinReceived: "3"}, resp.ContractCall.Args)
	require.Len(t, rec.trades, 1)
	require.Equal(t, schema.TradeTypeSell, rec.trades[0].Type)
	require.Equal(t, "unknown", rec.trades[0].Trader)

	rec.err = apperr.Store("insert trade", errors.New("down"))
	_, err = newTestService(rec).Sell(context.Background(), schema.SellTokenRequest{})
	require.True(t, errors.Is(err, apperr.ErrStoreUnavailable))
}

func TestService_LargeIntegersPassThrough(t *testing.T) {
	rec := &memRecorder{}
	s := newTestService(rec)

	resp, err := s.Buy(context.Background(), schema.BuyTokenRequest{Amount: numPtr("9007199254740993")})
	require.NoError(t, err)
	require.Equal(t, json.Number("9007199254740993"), resp.ContractCall.Args.(schema.BuyTokenArgs).Amount)

	launch, err := s.Launch(context.Background(), schema.LaunchTokenRequest{MaxSupply: numPtr("1000000000000000000000")})
	require.NoError(t, err)
	bz, err := json.Marshal(launch.ContractCall.Args)
	require.NoError(t, err)
	require.Contains(t, string(bz), `"max-supply":1000000000000000000000`)
	require.Equal(t, 1e21, rec.tokens[0].MaxSupply)
}

func TestService_InvalidNumber(t *testing.T) {
	rec := &memRecorder{}
	_, err := newTestService(rec).Sell(context.Background(), schema.SellTokenRequest{Amount: numPtr("1e400")})
	require.True(t, apperr.IsValidation(err))
	require.Empty(t, rec.trades)
}
