package launchpad

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stackable-labs/stackable-backend/apperr"
	"github.com/stackable-labs/stackable-backend/schema"
	"github.com/stackable-labs/stackable-backend/util"
)

const (
	DefaultSymbol                          = "TOKEN"
	DefaultBasePrice           json.Number = "1000"
	DefaultCurveType                       = 0
	DefaultSlope               json.Number = "10"
	DefaultGraduationThreshold json.Number = "1000000"
	DefaultMaxSupply           json.Number = "100000000"
	DefaultTradeAmount         json.Number = "100"
	DefaultMaxSlippage         json.Number = "500"
	DefaultMinReceived         json.Number = "0"
	UnknownAccount                         = "unknown"

	// MicroSTX is the number of on-chain base units per STX.
	MicroSTX = 1e6
)

var CurveNames = []string{"Linear", "Exponential", "Logarithmic", "Sigmoid"}

// Recorder persists the audit trail of prepared contract calls.
type Recorder interface {
	InsertToken(ctx context.Context, t schema.Token) error
	InsertTrade(ctx context.Context, t schema.Trade) error
}

type Service struct {
	rec Recorder
	now func() time.Time
}

func NewService(rec Recorder) *Service {
	return &Service{rec, time.Now}
}

func (s *Service) Launch(ctx context.Context, req schema.LaunchTokenRequest) (*schema.LaunchTokenResponse, error) {
	args := schema.LaunchTokenArgs{
		Symbol:              stringOr(req.Symbol, DefaultSymbol),
		BasePrice:           numberOr(req.BasePrice, DefaultBasePrice),
		CurveType:           DefaultCurveType,
		Slope:               numberOr(req.Slope, DefaultSlope),
		GraduationThreshold: numberOr(req.GraduationThreshold, DefaultGraduationThreshold),
		MaxSupply:           numberOr(req.MaxSupply, DefaultMaxSupply),
	}
	if req.CurveType != nil {
		args.CurveType = *req.CurveType
	}
	if args.CurveType < 0 || args.CurveType >= len(CurveNames) {
		return nil, apperr.NewValidationError("curveType", "must be between 0 and %d, got %d", len(CurveNames)-1, args.CurveType)
	}
	var basePrice, slope, threshold, maxSupply float64
	for _, x := range []struct {
		field string
		n     json.Number
		dst   *float64
	}{
		{"basePrice", args.BasePrice, &basePrice},
		{"slope", args.Slope, &slope},
		{"graduationThreshold", args.GraduationThreshold, &threshold},
		{"maxSupply", args.MaxSupply, &maxSupply},
	} {
		f, err := toFloat(x.field, x.n)
		if err != nil {
			return nil, err
		}
		*x.dst = f
	}
	if err := s.rec.InsertToken(ctx, schema.Token{
		Symbol:              args.Symbol,
		BasePrice:           basePrice,
		CurveType:           args.CurveType,
		Slope:               slope,
		GraduationThreshold: threshold,
		MaxSupply:           maxSupply,
		Creator:             stringOr(req.Creator, UnknownAccount),
		CreatedAt:           s.now().UTC(),
		Status:              schema.TokenStatusPendingLaunch,
	}); err != nil {
		return nil, fmt.Errorf("insert token: %w", err)
	}
	return &schema.LaunchTokenResponse{
		Status: schema.StatusReadyToLaunch,
		ContractCall: schema.ContractCall{
			Contract: schema.ContractBondingCurve,
			Function: schema.FunctionLaunchToken,
			Args:     args,
		},
		Details: schema.LaunchTokenDetails{
			Symbol:       args.Symbol,
			Curve:        CurveNames[args.CurveType],
			InitialPrice: util.FormatDecimal(basePrice/MicroSTX) + " STX",
			Graduation:   util.FormatDecimal(threshold/MicroSTX) + " STX reserve",
		},
	}, nil
}

func (s *Service) Buy(ctx context.Context, req schema.BuyTokenRequest) (*schema.TradeTokenResponse, error) {
	args := schema.BuyTokenArgs{
		Symbol:      stringOr(req.Symbol, DefaultSymbol),
		Amount:      numberOr(req.Amount, DefaultTradeAmount),
		MaxSlippage: numberOr(req.MaxSlippage, DefaultMaxSlippage),
	}
	if err := s.recordTrade(ctx, schema.TradeTypeBuy, args.Symbol, args.Amount, req.Trader); err != nil {
		return nil, err
	}
	return &schema.TradeTokenResponse{
		Status: schema.StatusReadyToBuy,
		ContractCall: schema.ContractCall{
			Contract: schema.ContractBondingCurve,
			Function: schema.FunctionBuyToken,
			Args:     args,
		},
	}, nil
}

func (s *Service) Sell(ctx context.Context, req schema.SellTokenRequest) (*schema.TradeTokenResponse, error) {
	args := schema.SellTokenArgs{
		Symbol:      stringOr(req.Symbol, DefaultSymbol),
		Amount:      numberOr(req.Amount, DefaultTradeAmount),
		MinReceived: numberOr(req.MinReceived, DefaultMinReceived),
	}
	if err := s.recordTrade(ctx, schema.TradeTypeSell, args.Symbol, args.Amount, req.Trader); err != nil {
		return nil, err
	}
	return &schema.TradeTokenResponse{
		Status: schema.StatusReadyToSell,
		ContractCall: schema.ContractCall{
			Contract: schema.ContractBondingCurve,
			Function: schema.FunctionSellToken,
			Args:     args,
		},
	}, nil
}

func (s *Service) recordTrade(ctx context.Context, typ, symbol string, amount json.Number, trader *string) error {
	f, err := toFloat("amount", amount)
	if err != nil {
		return err
	}
	if err := s.rec.InsertTrade(ctx, schema.Trade{
		Symbol:    symbol,
		Type:      typ,
		Amount:    f,
		Trader:    stringOr(trader, UnknownAccount),
		Timestamp: s.now().UTC(),
	}); err != nil {
		return fmt.Errorf("insert %s trade: %w", typ, err)
	}
	return nil
}

func stringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func numberOr(p *json.Number, def json.Number) json.Number {
	if p == nil {
		return def
	}
	return *p
}

// toFloat converts n for storage and display. The contract-call args keep n.
func toFloat(field string, n json.Number) (float64, error) {
	f, err := n.Float64()
	if err != nil {
		return 0, apperr.NewValidationError(field, "must be a finite number, got %q", n.String())
	}
	return f, nil
}
