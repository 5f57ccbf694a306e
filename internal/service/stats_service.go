package service

import (
	"context"
	"sort"
	"time"

	"prepace_backend/internal/model"
)

const (
	// WeakAreaThreshold 平均分低于该值的分类视为薄弱项
	WeakAreaThreshold = 6.0
	TrendDays         = 30
)

type StatsService struct {
	Answers  AnswerStore
	Sessions SessionStore
	Users    UserStore
	Location *time.Location
	now      func() time.Time
}

func NewStatsService(answers AnswerStore, sessions SessionStore, users UserStore, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.Local
	}
	return &StatsService{
		Answers:  answers,
		Sessions: sessions,
		Users:    users,
		Location: loc,
		now:      time.Now,
	}
}

func (s *StatsService) Overview(ctx context.Context, userID uint) (*model.StatsOverview, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	rows, err := s.Answers.FindScoredByUser(ctx, userID, nil)
	if err != nil {
		return nil, aggregationErr("overview", err)
	}
	completed, err := s.Sessions.CountCompletedByUser(ctx, userID)
	if err != nil {
		return nil, aggregationErr("overview", err)
	}

	overview := summarizeOverview(rows)
	overview.TotalSessions = int(completed)
	overview.CurrentStreak = user.CurrentStreak
	overview.LongestStreak = user.LongestStreak
	return &overview, nil
}

func (s *StatsService) ByCategory(ctx context.Context, userID uint) ([]model.CategoryStat, error) {
	rows, err := s.Answers.FindScoredByUser(ctx, userID, nil)
	if err != nil {
		return nil, aggregationErr("by category", err)
	}
	return groupByCategory(rows), nil
}

func (s *StatsService) WeakAreas(ctx context.Context, userID uint) ([]model.CategoryStat, error) {
	rows, err := s.Answers.FindScoredByUser(ctx, userID, nil)
	if err != nil {
		return nil, aggregationErr("weak areas", err)
	}
	return weakAreas(groupByCategory(rows)), nil
}

func (s *StatsService) ProgressTrend(ctx context.Context, userID uint) ([]model.TrendPoint, error) {
	since := s.now().AddDate(0, 0, -TrendDays)
	rows, err := s.Answers.FindScoredByUser(ctx, userID, &since)
	if err != nil {
		return nil, aggregationErr("progress trend", err)
	}
	return dailyTrend(rows, s.Location), nil
}

// scoreAccumulator 均值只统计有分数的作答
type scoreAccumulator struct {
	count  int
	scored int
	sum    int
}

func (a *scoreAccumulator) add(score *int) {
	a.count++
	if score != nil {
		a.scored++
		a.sum += *score
	}
}

func (a scoreAccumulator) mean() float64 {
	if a.scored == 0 {
		return 0
	}
	return model.RoundScore(float64(a.sum) / float64(a.scored))
}

func summarizeOverview(rows []model.ScoredAnswer) model.StatsOverview {
	var acc scoreAccumulator
	bookmarked := 0
	for _, r := range rows {
		acc.add(r.Score)
		if r.Bookmarked {
			bookmarked++
		}
	}
	return model.StatsOverview{
		TotalAnswers:      len(rows),
		BookmarkedAnswers: bookmarked,
		AverageScore:      acc.mean(),
	}
}

// groupByCategory 按数量降序，数量相同按分类名排序
func groupByCategory(rows []model.ScoredAnswer) []model.CategoryStat {
	groups := make(map[model.QuestionCategory]*scoreAccumulator)
	for _, r := range rows {
		acc, ok := groups[r.Category]
		if !ok {
			acc = &scoreAccumulator{}
			groups[r.Category] = acc
		}
		acc.add(r.Score)
	}

	stats := make([]model.CategoryStat, 0, len(groups))
	for category, acc := range groups {
		stats = append(stats, model.CategoryStat{
			Category: category,
			Count:    acc.count,
			AvgScore: acc.mean(),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Category < stats[j].Category
	})
	return stats
}

// weakAreas 平均分从低到高
func weakAreas(stats []model.CategoryStat) []model.CategoryStat {
	weak := make([]model.CategoryStat, 0)
	for _, s := range stats {
		if s.AvgScore < WeakAreaThreshold {
			weak = append(weak, s)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		return weak[i].AvgScore < weak[j].AvgScore
	})
	return weak
}

func dailyTrend(rows []model.ScoredAnswer, loc *time.Location) []model.TrendPoint {
	groups := make(map[string]*scoreAccumulator)
	for _, r := range rows {
		day := r.CreatedAt.In(loc).Format("2006-01-02")
		acc, ok := groups[day]
		if !ok {
			acc = &scoreAccumulator{}
			groups[day] = acc
		}
		acc.add(r.Score)
	}

	points := make([]model.TrendPoint, 0, len(groups))
	for day, acc := range groups {
		points = append(points, model.TrendPoint{Date: day, Count: acc.count, AvgScore: acc.mean()})
	}
	// YYYY-MM-DD 的字典序即时间顺序
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}
