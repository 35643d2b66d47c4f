package gamification

import (
	"context"
	"fmt"
	"time"

	"github.com/stackable-labs/stackable-backend/schema"
	"github.com/stackable-labs/stackable-backend/util"
)

// Repository is the document store seen by the Service.
// The Ensure methods seed the address on first access and are idempotent.
type Repository interface {
	EnsureProfile(ctx context.Context, defaults schema.UserProfile) (*schema.UserProfile, error)
	FindProfile(ctx context.Context, address string) (*schema.UserProfile, error)
	EnsureAchievements(ctx context.Context, address string, seed []schema.Achievement) ([]schema.Achievement, error)
	EnsureQuests(ctx context.Context, address string, seed []schema.Quest) ([]schema.Quest, error)
	EnsureActivity(ctx context.Context, address string, seed []schema.Activity) ([]schema.Activity, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo, time.Now}
}

func Level(xp int64) int64 {
	return util.MaxInt64(1, util.FloorDiv(xp, XPPerLevel)+1)
}

func NextLevelXP(xp int64) int64 {
	return (util.FloorDiv(xp, XPPerLevel) + 1) * XPPerLevel
}

// ShortAddress keeps the first 6 and last 4 characters of address.
// Short inputs overlap the same way string slicing would.
func ShortAddress(address string) string {
	head := address
	if len(head) > 6 {
		head = head[:6]
	}
	tail := address
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	return head + "..." + tail
}

func (s *Service) DefaultProfile(address string, xp int64) schema.UserProfile {
	return schema.UserProfile{
		Address:      address,
		ShortAddress: ShortAddress(address),
		Level:        Level(xp),
		Badge:        DefaultBadge,
		JoinDate:     s.now().UTC().Format(JoinDateLayout),
		NextLevelXP:  NextLevelXP(xp),
		WinRate:      DefaultWinRate,
		TotalVolume:  DefaultTotalVolume,
	}
}

// Profile returns the stored profile with level fields derived from xp.
// The derived fields are not persisted.
func (s *Service) Profile(ctx context.Context, address string, xp int64) (*schema.UserProfile, error) {
	p, err := s.repo.EnsureProfile(ctx, s.DefaultProfile(address, xp))
	if err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	p.Level = Level(xp)
	p.NextLevelXP = NextLevelXP(xp)
	return p, nil
}

// Achievements returns the address's achievements with unlocked recomputed
// from the current profile.
func (s *Service) Achievements(ctx context.Context, address string, xp int64) ([]schema.Achievement, error) {
	as, err := s.repo.EnsureAchievements(ctx, address, SeedAchievements(address))
	if err != nil {
		return nil, fmt.Errorf("ensure achievements: %w", err)
	}
	p, err := s.repo.FindProfile(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	var snapshot schema.UserProfile
	if p != nil {
		snapshot = *p
	}
	preds := make(map[string]func(schema.UserProfile) bool, len(achievementTemplates))
	for _, t := range achievementTemplates {
		preds[t.Title] = t.unlocked
	}
	for i := range as {
		if pred, ok := preds[as[i].Title]; ok {
			as[i].Unlocked = pred(snapshot)
		}
	}
	return as, nil
}

func (s *Service) Quests(ctx context.Context, address string, xp int64) ([]schema.Quest, error) {
	qs, err := s.repo.EnsureQuests(ctx, address, SeedQuests(address))
	if err != nil {
		return nil, fmt.Errorf("ensure quests: %w", err)
	}
	return qs, nil
}

func (s *Service) Activity(ctx context.Context, address string, xp int64) ([]schema.Activity, error) {
	as, err := s.repo.EnsureActivity(ctx, address, SeedActivity(address))
	if err != nil {
		return nil, fmt.Errorf("ensure activity: %w", err)
	}
	return as, nil
}
