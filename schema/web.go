package schema

import "encoding/json"

type ParseRequest struct {
	Prompt string `json:"prompt"`
}

type ParseResponse struct {
	Intent   string                 `json:"intent"`
	Entities map[string]interface{} `json:"entities"`
	Raw      map[string]interface{} `json:"raw"`
}

type AskRequest struct {
	Question string `json:"question"`
}

type AskResponse struct {
	Answer string                 `json:"answer"`
	Raw    map[string]interface{} `json:"raw"`
}

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	History []ChatMessage `json:"history"`
	Message string        `json:"message"`
}

type ChatAction struct {
	Type   string                 `json:"type"`
	Params map[string]interface{} `json:"params"`
}

type ChatResponse struct {
	Response string        `json:"response"`
	History  []ChatMessage `json:"history"`
	Action   *ChatAction   `json:"action"`
}

// UserRequest is bound from the query string on GET and from the JSON body on POST.
type UserRequest struct {
	Address string `query:"address" json:"address"`
	XP      int64  `query:"xp" json:"xp"`
}

type LaunchTokenRequest struct {
	Symbol              *string      `json:"symbol"`
	BasePrice           *json.Number `json:"basePrice"`
	CurveType           *int         `json:"curveType"`
	Slope               *json.Number `json:"slope"`
	GraduationThreshold *json.Number `json:"graduationThreshold"`
	MaxSupply           *json.Number `json:"maxSupply"`
	Creator             *string      `json:"creator"`
}

type BuyTokenRequest struct {
	Symbol      *string      `json:"symbol"`
	Amount      *json.Number `json:"amount"`
	MaxSlippage *json.Number `json:"maxSlippage"`
	Trader      *string      `json:"trader"`
}

type SellTokenRequest struct {
	Symbol      *string      `json:"symbol"`
	Amount      *json.Number `json:"amount"`
	MinReceived *json.Number `json:"minReceived"`
	Trader      *string      `json:"trader"`
}

const (
	ContractBondingCurve = "bonding-curve"

	FunctionLaunchToken = "launch-token"
	FunctionBuyToken    = "buy-token"
	FunctionSellToken   = "sell-token"

	StatusReadyToLaunch = "ready_to_launch"
	StatusReadyToBuy    = "ready_to_buy"
	StatusReadyToSell   = "ready_to_sell"
)

type ContractCall struct {
	Contract string      `json:"contract"`
	Function string      `json:"function"`
	Args     interface{} `json:"args"`
}

// Numeric contract-call args keep the literal the client sent.
type LaunchTokenArgs struct {
	Symbol              string      `json:"symbol"`
	BasePrice           json.Number `json:"base-price"`
	CurveType           int         `json:"curve-type"`
	Slope               json.Number `json:"slope"`
	GraduationThreshold json.Number `json:"graduation-threshold"`
	MaxSupply           json.Number `json:"max-supply"`
}

type LaunchTokenDetails struct {
	Symbol       string `json:"symbol"`
	Curve        string `json:"curve"`
	InitialPrice string `json:"initialPrice"`
	Graduation   string `json:"graduation"`
}

type LaunchTokenResponse struct {
	Status       string             `json:"status"`
	ContractCall ContractCall       `json:"contractCall"`
	Details      LaunchTokenDetails `json:"details"`
}

type BuyTokenArgs struct {
	Symbol      string      `json:"symbol"`
	Amount      json.Number `json:"amount"`
	MaxSlippage json.Number `json:"max-slippage"`
}

type SellTokenArgs struct {
	Symbol      string      `json:"symbol"`
	Amount      json.Number `json:"amount"`
	MinReceived json.Number `json:"min-received"`
}

type TradeTokenResponse struct {
	Status       string       `json:"status"`
	ContractCall ContractCall `json:"contractCall"`
}

type GetStatusResponse struct {
	MongoDB     string `json:"mongodb"`
	LLMProvider string `json:"llmProvider"`
}
