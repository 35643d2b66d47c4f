package schema

import "time"

const (
	UserAddressKey       = "address"
	UserShortAddressKey  = "shortAddress"
	UserLevelKey         = "level"
	UserRankKey          = "rank"
	UserBadgeKey         = "badge"
	UserJoinDateKey      = "joinDate"
	UserNextLevelXPKey   = "nextLevelXP"
	UserTokensCreatedKey = "tokensCreated"
	UserTokensTradedKey  = "tokensTraded"
	UserWinRateKey       = "winRate"
	UserStreakKey        = "streak"
	UserAchievementsKey  = "achievements"
	UserTotalTradesKey   = "totalTrades"
	UserTotalVolumeKey   = "totalVolume"
	UserHoldDaysKey      = "holdDays"
	UserLargestTradeKey  = "largestTrade"
)

type UserProfile struct {
	Address       string `bson:"address" json:"address"`
	ShortAddress  string `bson:"shortAddress" json:"shortAddress"`
	Level         int64  `bson:"level" json:"level"`
	Rank          int64  `bson:"rank" json:"rank"`
	Badge         string `bson:"badge" json:"badge"`
	JoinDate      string `bson:"joinDate" json:"joinDate"`
	NextLevelXP   int64  `bson:"nextLevelXP" json:"nextLevelXP"`
	TokensCreated int64  `bson:"tokensCreated" json:"tokensCreated"`
	TokensTraded  int64  `bson:"tokensTraded" json:"tokensTraded"`
	WinRate       string `bson:"winRate" json:"winRate"`
	Streak        int64  `bson:"streak" json:"streak"`
	Achievements  int64  `bson:"achievements" json:"achievements"`
	TotalTrades   int64  `bson:"totalTrades" json:"totalTrades"`
	TotalVolume   string `bson:"totalVolume" json:"totalVolume"`
	// Never written by this service; read by achievement predicates when present.
	HoldDays     int64  `bson:"holdDays,omitempty" json:"-"`
	LargestTrade string `bson:"largestTrade,omitempty" json:"-"`
}

// ProfileStats are the trading statistics imported from outside the
// gateway. They drive achievement unlocks.
type ProfileStats struct {
	Address       string
	TokensCreated int64
	TotalVolume   string
	Streak        int64
	HoldDays      int64
	LargestTrade  string
}

const (
	AchievementAddressKey = "address"
	AchievementTitleKey   = "title"
	AchievementOrderKey   = "order"
)

type Achievement struct {
	Address     string `bson:"address" json:"-"`
	Order       int    `bson:"order" json:"-"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	Icon        string `bson:"icon" json:"icon"`
	Unlocked    bool   `bson:"unlocked" json:"unlocked"`
	Rarity      string `bson:"rarity" json:"rarity"`
}

const (
	QuestAddressKey = "address"
	QuestTitleKey   = "title"
	QuestOrderKey   = "order"
)

type Quest struct {
	Address     string `bson:"address" json:"-"`
	Order       int    `bson:"order" json:"-"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	Progress    int64  `bson:"progress" json:"progress"`
	Total       int64  `bson:"total" json:"total"`
	Reward      string `bson:"reward" json:"reward"`
	TimeLeft    string `bson:"timeLeft" json:"timeLeft"`
}

const (
	ActivityAddressKey = "address"
	ActivitySeqKey     = "seq"
)

type Activity struct {
	Address string `bson:"address" json:"-"`
	Seq     int    `bson:"seq" json:"-"`
	Action  string `bson:"action" json:"action"`
	Token   string `bson:"token" json:"token"`
	Amount  string `bson:"amount" json:"amount"`
	Time    string `bson:"time" json:"time"`
	Type    string `bson:"type" json:"type"`
}

const (
	TokenCreatorKey   = "creator"
	TokenCreatedAtKey = "createdAt"
	TokenSymbolKey    = "symbol"

	TokenStatusPendingLaunch = "pending_launch"
)

type Token struct {
	Symbol              string    `bson:"symbol"`
	BasePrice           float64   `bson:"basePrice"`
	CurveType           int       `bson:"curveType"`
	Slope               float64   `bson:"slope"`
	GraduationThreshold float64   `bson:"graduationThreshold"`
	MaxSupply           float64   `bson:"maxSupply"`
	Creator             string    `bson:"creator"`
	CreatedAt           time.Time `bson:"createdAt"`
	Status              string    `bson:"status"`
}

const (
	TradeTraderKey    = "trader"
	TradeSymbolKey    = "symbol"
	TradeTimestampKey = "timestamp"

	TradeTypeBuy  = "buy"
	TradeTypeSell = "sell"
)

type Trade struct {
	Symbol    string    `bson:"symbol"`
	Type      string    `bson:"type"`
	Amount    float64   `bson:"amount"`
	Trader    string    `bson:"trader"`
	Timestamp time.Time `bson:"timestamp"`
}
