package gamification

import (
	"math"
	"regexp"

	"github.com/stackable-labs/stackable-backend/schema"
)

const (
	XPPerLevel = 250
	// MaxXP is the largest xp whose next level threshold fits in an int64.
	MaxXP = math.MaxInt64 - XPPerLevel

	DefaultBadge       = "Newbie"
	DefaultWinRate     = "0%"
	DefaultTotalVolume = "0 STX"
	JoinDateLayout     = "January 2006"
)

var millionsPattern = regexp.MustCompile(`[1-9][0-9]*M`)

type achievementTemplate struct {
	schema.Achievement
	unlocked func(p schema.UserProfile) bool
}

var achievementTemplates = []achievementTemplate{
	{
		schema.Achievement{Title: "First Launch", Description: "Created your first token", Icon: "🚀", Rarity: "Common"},
		func(p schema.UserProfile) bool { return p.TokensCreated >= 1 },
	},
	{
		schema.Achievement{Title: "Volume Milestone", Description: "Traded over 10M STX", Icon: "💰", Rarity: "Rare"},
		func(p schema.UserProfile) bool { return millionsPattern.MatchString(p.TotalVolume) },
	},
	{
		schema.Achievement{Title: "Hot Streak", Description: "5 winning trades in a row", Icon: "🔥", Rarity: "Epic"},
		func(p schema.UserProfile) bool { return p.Streak >= 5 },
	},
	{
		schema.Achievement{Title: "Vibe Master", Description: "Launch 5 successful vibe tokens", Icon: "🎭", Rarity: "Legendary"},
		func(p schema.UserProfile) bool { return p.TokensCreated >= 5 },
	},
	{
		schema.Achievement{Title: "Diamond Hands", Description: "Hold position for 30 days", Icon: "💎", Rarity: "Mythic"},
		func(p schema.UserProfile) bool { return p.HoldDays >= 30 },
	},
	{
		schema.Achievement{Title: "Whale Hunter", Description: "Single trade over 1M STX", Icon: "🐋", Rarity: "Legendary"},
		func(p schema.UserProfile) bool { return millionsPattern.MatchString(p.LargestTrade) },
	},
}

var questTemplates = []schema.Quest{
	{Title: "Daily Trader", Description: "Make 5 trades today", Total: 5, Reward: "50 XP", TimeLeft: "24h"},
	{Title: "Token Creator", Description: "Launch 3 tokens this week", Total: 3, Reward: "200 XP", TimeLeft: "7d"},
	{Title: "Volume King", Description: "Trade 100 STX this month", Total: 100, Reward: "500 XP", TimeLeft: "30d"},
	{Title: "Social Butterfly", Description: "Share 3 tokens on social", Total: 3, Reward: "100 XP", TimeLeft: "7d"},
}

var activityTemplates = []schema.Activity{
	{Action: "Launched", Token: "$ROCKET", Amount: "1000 tokens", Time: "2 hours ago", Type: "launch"},
	{Action: "Bought", Token: "$DOGE", Amount: "500 STX", Time: "5 hours ago", Type: "buy"},
	{Action: "Sold", Token: "$PEPE", Amount: "1.2K tokens", Time: "1 day ago", Type: "sell"},
	{Action: "Launched", Token: "$MOON", Amount: "2000 tokens", Time: "3 days ago", Type: "launch"},
	{Action: "Bought", Token: "$CYBER", Amount: "250 STX", Time: "1 week ago", Type: "buy"},
}

func SeedAchievements(address string) []schema.Achievement {
	as := make([]schema.Achievement, len(achievementTemplates))
	for i, t := range achievementTemplates {
		as[i] = t.Achievement
		as[i].Address = address
		as[i].Order = i
	}
	return as
}

func SeedQuests(address string) []schema.Quest {
	qs := make([]schema.Quest, len(questTemplates))
	for i, q := range questTemplates {
		qs[i] = q
		qs[i].Address = address
		qs[i].Order = i
	}
	return qs
}

func SeedActivity(address string) []schema.Activity {
	as := make([]schema.Activity, len(activityTemplates))
	for i, a := range activityTemplates {
		as[i] = a
		as[i].Address = address
		as[i].Seq = i
	}
	return as
}
