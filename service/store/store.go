package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/stackable-labs/stackable-backend/apperr"
	"github.com/stackable-labs/stackable-backend/config"
	"github.com/stackable-labs/stackable-backend/schema"
)

const duplicateKeyCode = 11000

type Service struct {
	cfg config.MongoDBConfig
	mc  *mongo.Client
}

func NewService(cfg config.MongoDBConfig, mc *mongo.Client) *Service {
	return &Service{cfg, mc}
}

func (s *Service) UserCollection() *mongo.Collection {
	return s.mc.Database(s.cfg.DB).Collection(s.cfg.UserCollection)
}

func (s *Service) AchievementCollection() *mongo.Collection {
	return s.mc.Database(s.cfg.DB).Collection(s.cfg.AchievementCollection)
}

func (s *Service) QuestCollection() *mongo.Collection {
	return s.mc.Database(s.cfg.DB).Collection(s.cfg.QuestCollection)
}

func (s *Service) ActivityCollection() *mongo.Collection {
	return s.mc.Database(s.cfg.DB).Collection(s.cfg.ActivityCollection)
}

func (s *Service) TokenCollection() *mongo.Collection {
	return s.mc.Database(s.cfg.DB).Collection(s.cfg.TokenCollection)
}

func (s *Service) TradeCollection() *mongo.Collection {
	return s.mc.Database(s.cfg.DB).Collection(s.cfg.TradeCollection)
}

func (s *Service) EnsureDBIndexes(ctx context.Context) ([]string, error) {
	unique := options.Index().SetUnique(true)
	var res []string
	for _, x := range []struct {
		coll *mongo.Collection
		is   []mongo.IndexModel
	}{
		{s.UserCollection(), []mongo.IndexModel{
			{Keys: bson.D{{schema.UserAddressKey, 1}}, Options: unique},
		}},
		{s.AchievementCollection(), []mongo.IndexModel{
			{Keys: bson.D{{schema.AchievementAddressKey, 1}, {schema.AchievementTitleKey, 1}}, Options: unique},
		}},
		{s.QuestCollection(), []mongo.IndexModel{
			{Keys: bson.D{{schema.QuestAddressKey, 1}, {schema.QuestTitleKey, 1}}, Options: unique},
		}},
		{s.ActivityCollection(), []mongo.IndexModel{
			{Keys: bson.D{{schema.ActivityAddressKey, 1}, {schema.ActivitySeqKey, 1}}, Options: unique},
		}},
		{s.TokenCollection(), []mongo.IndexModel{
			{Keys: bson.D{{schema.TokenCreatorKey, 1}}},
			{Keys: bson.D{{schema.TokenCreatedAtKey, 1}}},
		}},
		{s.TradeCollection(), []mongo.IndexModel{
			{Keys: bson.D{{schema.TradeTraderKey, 1}}},
			{Keys: bson.D{{schema.TradeSymbolKey, 1}}},
			{Keys: bson.D{{schema.TradeTimestampKey, 1}}},
		}},
	} {
		names, err := x.coll.Indexes().CreateMany(ctx, x.is)
		if err != nil {
			return res, apperr.Store("create indexes", err)
		}
		res = append(res, names...)
	}
	return res, nil
}

func (s *Service) Ping(ctx context.Context) error {
	if err := s.mc.Ping(ctx, readpref.Primary()); err != nil {
		return apperr.Store("ping", err)
	}
	return nil
}

// EnsureProfile returns the stored profile of the address, inserting
// defaults first if there is none.
func (s *Service) EnsureProfile(ctx context.Context, defaults schema.UserProfile) (*schema.UserProfile, error) {
	var p schema.UserProfile
	if err := s.UserCollection().FindOneAndUpdate(ctx,
		bson.M{schema.UserAddressKey: defaults.Address},
		bson.M{"$setOnInsert": defaults},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&p); err != nil {
		return nil, apperr.Store("ensure profile", err)
	}
	return &p, nil
}

// FindProfile returns nil if the address has no profile.
func (s *Service) FindProfile(ctx context.Context, address string) (*schema.UserProfile, error) {
	var p schema.UserProfile
	if err := s.UserCollection().FindOne(ctx, bson.M{schema.UserAddressKey: address}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperr.Store("find profile", err)
	}
	return &p, nil
}

func (s *Service) EnsureAchievements(ctx context.Context, address string, seed []schema.Achievement) ([]schema.Achievement, error) {
	ms := make([]mongo.WriteModel, len(seed))
	for i, a := range seed {
		ms[i] = seedModel(bson.M{
			schema.AchievementAddressKey: address,
			schema.AchievementTitleKey:   a.Title,
		}, a)
	}
	var as []schema.Achievement
	if err := s.ensureSeeded(ctx, s.AchievementCollection(), bson.M{schema.AchievementAddressKey: address}, schema.AchievementOrderKey, ms, &as); err != nil {
		return nil, fmt.Errorf("achievements: %w", err)
	}
	return as, nil
}

func (s *Service) EnsureQuests(ctx context.Context, address string, seed []schema.Quest) ([]schema.Quest, error) {
	ms := make([]mongo.WriteModel, len(seed))
	for i, q := range seed {
		ms[i] = seedModel(bson.M{
			schema.QuestAddressKey: address,
			schema.QuestTitleKey:   q.Title,
		}, q)
	}
	var qs []schema.Quest
	if err := s.ensureSeeded(ctx, s.QuestCollection(), bson.M{schema.QuestAddressKey: address}, schema.QuestOrderKey, ms, &qs); err != nil {
		return nil, fmt.Errorf("quests: %w", err)
	}
	return qs, nil
}

func (s *Service) EnsureActivity(ctx context.Context, address string, seed []schema.Activity) ([]schema.Activity, error) {
	ms := make([]mongo.WriteModel, len(seed))
	for i, a := range seed {
		ms[i] = seedModel(bson.M{
			schema.ActivityAddressKey: address,
			schema.ActivitySeqKey:     a.Seq,
		}, a)
	}
	var as []schema.Activity
	if err := s.ensureSeeded(ctx, s.ActivityCollection(), bson.M{schema.ActivityAddressKey: address}, schema.ActivitySeqKey, ms, &as); err != nil {
		return nil, fmt.Errorf("activity: %w", err)
	}
	return as, nil
}

func (s *Service) InsertToken(ctx context.Context, t schema.Token) error {
	if _, err := s.TokenCollection().InsertOne(ctx, t); err != nil {
		return apperr.Store("insert token", err)
	}
	return nil
}

func (s *Service) InsertTrade(ctx context.Context, t schema.Trade) error {
	if _, err := s.TradeCollection().InsertOne(ctx, t); err != nil {
		return apperr.Store("insert trade", err)
	}
	return nil
}

// ImportProfileStats overwrites the statistics of each address. Missing
// profiles are created from defaults.
func (s *Service) ImportProfileStats(ctx context.Context, stats []schema.ProfileStats, defaults func(address string) schema.UserProfile) (*mongo.BulkWriteResult, error) {
	if len(stats) == 0 {
		return &mongo.BulkWriteResult{}, nil
	}
	ms := make([]mongo.WriteModel, len(stats))
	for i, st := range stats {
		d := defaults(st.Address)
		ms[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{schema.UserAddressKey: st.Address}).
			SetUpdate(bson.M{
				"$set": bson.M{
					schema.UserTokensCreatedKey: st.TokensCreated,
					schema.UserTotalVolumeKey:   st.TotalVolume,
					schema.UserStreakKey:        st.Streak,
					schema.UserHoldDaysKey:      st.HoldDays,
					schema.UserLargestTradeKey:  st.LargestTrade,
				},
				"$setOnInsert": bson.M{
					schema.UserShortAddressKey: d.ShortAddress,
					schema.UserLevelKey:        d.Level,
					schema.UserRankKey:         d.Rank,
					schema.UserBadgeKey:        d.Badge,
					schema.UserJoinDateKey:     d.JoinDate,
					schema.UserNextLevelXPKey:  d.NextLevelXP,
					schema.UserTokensTradedKey: d.TokensTraded,
					schema.UserWinRateKey:      d.WinRate,
					schema.UserAchievementsKey: d.Achievements,
					schema.UserTotalTradesKey:  d.TotalTrades,
				},
			}).
			SetUpsert(true)
	}
	res, err := s.UserCollection().BulkWrite(ctx, ms)
	if err != nil {
		return nil, apperr.Store("import profile stats", err)
	}
	return res, nil
}

func seedModel(filter bson.M, doc interface{}) mongo.WriteModel {
	return mongo.NewUpdateOneModel().
		SetFilter(filter).
		SetUpdate(bson.M{"$setOnInsert": doc}).
		SetUpsert(true)
}

// ensureSeeded decodes every document matching filter into out, sorted by
// sortKey. While fewer documents than seed models exist, the models are
// written first. They only insert, so documents already present are kept.
func (s *Service) ensureSeeded(ctx context.Context, coll *mongo.Collection, filter bson.M, sortKey string, ms []mongo.WriteModel, out interface{}) error {
	n, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return apperr.Store("count", err)
	}
	if n < int64(len(ms)) {
		// Racing requests collide on the unique index; the winner's
		// documents are identical to ours.
		if _, err := coll.BulkWrite(ctx, ms, options.BulkWrite().SetOrdered(false)); err != nil && !onlyDuplicateKeys(err) {
			return apperr.Store("seed", err)
		}
	}
	cur, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{sortKey, 1}}))
	if err != nil {
		return apperr.Store("find", err)
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, out); err != nil {
		return apperr.Store("decode", err)
	}
	return nil
}

// onlyDuplicateKeys reports whether every write error of a bulk write is a
// duplicate key error.
func onlyDuplicateKeys(err error) bool {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || bwe.WriteConcernError != nil || len(bwe.WriteErrors) == 0 {
		return false
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != duplicateKeyCode {
			return false
		}
	}
	return true
}
