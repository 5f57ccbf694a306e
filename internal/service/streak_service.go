package service

import (
	"context"
	"time"

	"prepace_backend/internal/model"
	"prepace_backend/pkg/logger"

	"go.uber.org/zap"
)

type StreakService struct {
	Users    UserStore
	Checkins CheckinStore
	Events   EventPublisher
	Location *time.Location
	now      func() time.Time
}

func NewStreakService(users UserStore, checkins CheckinStore, events EventPublisher, loc *time.Location) *StreakService {
	if loc == nil {
		loc = time.Local
	}
	return &StreakService{
		Users:    users,
		Checkins: checkins,
		Events:   events,
		Location: loc,
		now:      time.Now,
	}
}

type streakEvent struct {
	UserID        uint `json:"userId"`
	CurrentStreak int  `json:"currentStreak"`
	LongestStreak int  `json:"longestStreak"`
}

func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// advanceStreak 按自然日推进连续打卡，当天已打卡时返回 false
func advanceStreak(current, longest int, lastActive *time.Time, now time.Time, loc *time.Location) (int, int, bool) {
	today := calendarDay(now, loc)
	switch {
	case lastActive == nil:
		current = 1
	default:
		last := calendarDay(*lastActive, loc)
		switch {
		case last.Equal(today):
			return current, longest, false
		case last.AddDate(0, 0, 1).Equal(today):
			current++
		default:
			current = 1
		}
	}
	if current > longest {
		longest = current
	}
	return current, longest, true
}

// CheckIn 同一自然日内重复调用不会重复计数
func (s *StreakService) CheckIn(ctx context.Context, userID uint) (*model.StreakStatus, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}

	now := s.now()
	current, longest, updated := advanceStreak(user.CurrentStreak, user.LongestStreak, user.LastActiveDate, now, s.Location)
	if !updated {
		return &model.StreakStatus{
			CurrentStreak:  user.CurrentStreak,
			LongestStreak:  user.LongestStreak,
			LastActiveDate: user.LastActiveDate,
			TotalCheckins:  s.totalCheckins(ctx, userID),
			Updated:        false,
			Message:        "already checked in today",
		}, nil
	}

	user.CurrentStreak = current
	user.LongestStreak = longest
	user.LastActiveDate = &now
	if err := s.Users.UpdateStreak(ctx, user); err != nil {
		return nil, err
	}
	if err := s.Checkins.Create(ctx, &model.Checkin{UserID: userID, CheckinAt: now, StreakDays: current}); err != nil {
		// 流水只用于展示，写失败不回滚连续天数
		logger.Log.Warn("record checkin failed", zap.Uint("userID", userID), zap.Error(err))
	}

	publishEvent(ctx, s.Events, EventStreakUpdated, streakEvent{
		UserID:        userID,
		CurrentStreak: current,
		LongestStreak: longest,
	})

	return &model.StreakStatus{
		CurrentStreak:  current,
		LongestStreak:  longest,
		LastActiveDate: user.LastActiveDate,
		TotalCheckins:  s.totalCheckins(ctx, userID),
		Updated:        true,
	}, nil
}

// totalCheckins 打卡结果里的累计天数只做展示，查询失败时返回 0
func (s *StreakService) totalCheckins(ctx context.Context, userID uint) int64 {
	total, err := s.Checkins.CountByUser(ctx, userID)
	if err != nil {
		logger.Log.Warn("count checkins failed", zap.Uint("userID", userID), zap.Error(err))
		return 0
	}
	return total
}

func (s *StreakService) GetStreak(ctx context.Context, userID uint) (*model.StreakStatus, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	total, err := s.Checkins.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.StreakStatus{
		CurrentStreak:  user.CurrentStreak,
		LongestStreak:  user.LongestStreak,
		LastActiveDate: user.LastActiveDate,
		TotalCheckins:  total,
	}, nil
}
