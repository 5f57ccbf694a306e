package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"prepace_backend/internal/model"
	"prepace_backend/pkg/logger"

	"go.uber.org/zap"
)

type LeaderboardPeriod string

const (
	PeriodWeek  LeaderboardPeriod = "week"
	PeriodMonth LeaderboardPeriod = "month"
	PeriodAll   LeaderboardPeriod = "all"

	// LeaderboardMinAnswers 作答数不足的用户不上榜
	LeaderboardMinAnswers = 3
	LeaderboardSize       = 10
)

func ParsePeriod(raw string) (LeaderboardPeriod, error) {
	switch p := LeaderboardPeriod(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PeriodWeek, nil
	case PeriodWeek, PeriodMonth, PeriodAll:
		return p, nil
	default:
		return "", validationf("invalid period: %s", raw)
	}
}

// Since 窗口起点，all 返回 nil
func (p LeaderboardPeriod) Since(now time.Time) *time.Time {
	var since time.Time
	switch p {
	case PeriodWeek:
		since = now.AddDate(0, 0, -7)
	case PeriodMonth:
		since = now.AddDate(0, 0, -30)
	default:
		return nil
	}
	return &since
}

// LeaderboardService 排行榜是最终一致的读模型，短时间缓存在 Redis
type LeaderboardService struct {
	Answers AnswerStore
	Users   UserStore
	Cache   Cache
	TTL     time.Duration
	now     func() time.Time
}

func NewLeaderboardService(answers AnswerStore, users UserStore, cache Cache, ttl time.Duration) *LeaderboardService {
	if cache == nil {
		cache = nopCache{}
	}
	return &LeaderboardService{
		Answers: answers,
		Users:   users,
		Cache:   cache,
		TTL:     ttl,
		now:     time.Now,
	}
}

func (s *LeaderboardService) Leaderboard(ctx context.Context, period LeaderboardPeriod) ([]model.LeaderboardEntry, error) {
	key := "leaderboard:" + string(period)
	var cached []model.LeaderboardEntry
	if hit, err := s.Cache.Get(ctx, key, &cached); err != nil {
		logger.Log.Warn("read leaderboard cache failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	rows, err := s.Answers.FindScoredSince(ctx, period.Since(s.now()))
	if err != nil {
		return nil, aggregationErr("leaderboard", err)
	}
	entries := rankByAverage(rows)

	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
	}
	users, err := s.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, aggregationErr("leaderboard", err)
	}
	byID := make(map[uint]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range entries {
		if u, ok := byID[entries[i].UserID]; ok {
			entries[i].User = &model.LeaderboardUser{
				ID:            u.ID,
				Name:          u.Name,
				Avatar:        u.Avatar,
				CurrentStreak: u.CurrentStreak,
			}
		}
	}

	if err := s.Cache.Set(ctx, key, entries, s.TTL); err != nil {
		logger.Log.Warn("write leaderboard cache failed", zap.Error(err))
	}
	return entries, nil
}

// rankByAverage 按平均分降序，平均分相同时作答数多的在前，再按用户 ID 升序
func rankByAverage(rows []model.ScoredAnswer) []model.LeaderboardEntry {
	groups := make(map[uint]*scoreAccumulator)
	for _, r := range rows {
		if r.Score == nil {
			continue
		}
		acc, ok := groups[r.UserID]
		if !ok {
			acc = &scoreAccumulator{}
			groups[r.UserID] = acc
		}
		acc.add(r.Score)
	}

	entries := make([]model.LeaderboardEntry, 0, len(groups))
	for userID, acc := range groups {
		if acc.scored < LeaderboardMinAnswers {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			UserID:   userID,
			AvgScore: acc.mean(),
			Count:    acc.scored,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.AvgScore != b.AvgScore {
			return a.AvgScore > b.AvgScore
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.UserID < b.UserID
	})
	if len(entries) > LeaderboardSize {
		entries = entries[:LeaderboardSize]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func (s *LeaderboardService) StreakLeaderboard(ctx context.Context) ([]model.StreakEntry, error) {
	users, err := s.Users.FindTopByStreak(ctx, LeaderboardSize)
	if err != nil {
		return nil, aggregationErr("streak leaderboard", err)
	}
	entries := make([]model.StreakEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, model.StreakEntry{
			Rank:          i + 1,
			UserID:        u.ID,
			Name:          u.Name,
			Avatar:        u.Avatar,
			CurrentStreak: u.CurrentStreak,
			LongestStreak: u.LongestStreak,
		})
	}
	return entries, nil
}
