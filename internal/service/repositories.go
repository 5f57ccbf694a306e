package service

import (
	"context"
	"time"

	"prepace_backend/internal/model"
	"prepace_backend/internal/repository"
)

// 服务层依赖的存储接口，由 internal/repository 中的 gorm 实现满足

type QuestionStore interface {
	FindByID(ctx context.Context, id uint) (*model.Question, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Question, error)
	FindActiveIDs(ctx context.Context, filter repository.QuestionFilter) ([]uint, error)
	FindActiveWithPagination(ctx context.Context, filter repository.QuestionFilter, offset, limit int) ([]model.Question, int64, error)
	UpdateAggregate(ctx context.Context, id uint, timesAttempted int, averageScore float64) error
}

type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	FindByIDAndUserID(ctx context.Context, sessionID, userID uint) (*model.Session, error)
	Update(ctx context.Context, session *model.Session) error
	FindByUserWithPagination(ctx context.Context, userID uint, status model.SessionStatus, offset, limit int) ([]model.Session, int64, error)
	CountCompletedByUser(ctx context.Context, userID uint) (int64, error)
}

type AnswerStore interface {
	Create(ctx context.Context, answer *model.Answer) error
	FindByIDAndUserID(ctx context.Context, answerID, userID uint) (*model.Answer, error)
	FindBySession(ctx context.Context, sessionID uint) ([]model.Answer, error)
	FindByQuestion(ctx context.Context, questionID uint) ([]model.Answer, error)
	FindByUserWithPagination(ctx context.Context, userID uint, filter repository.AnswerFilter, offset, limit int) ([]model.Answer, int64, error)
	ReplaceFeedback(ctx context.Context, answerID uint, feedback model.Feedback) error
	UpdateBookmark(ctx context.Context, answerID uint, bookmarked bool) error
	UpdateSelfRating(ctx context.Context, answerID uint, rating int) error
	FindScoredByUser(ctx context.Context, userID uint, since *time.Time) ([]model.ScoredAnswer, error)
	FindScoredSince(ctx context.Context, since *time.Time) ([]model.ScoredAnswer, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.User, error)
	UpdateStreak(ctx context.Context, user *model.User) error
	FindTopByStreak(ctx context.Context, limit int) ([]model.User, error)
}

type CheckinStore interface {
	Create(ctx context.Context, checkin *model.Checkin) error
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

var (
	_ QuestionStore = (*repository.QuestionRepository)(nil)
	_ SessionStore  = (*repository.SessionRepository)(nil)
	_ AnswerStore   = (*repository.AnswerRepository)(nil)
	_ UserStore     = (*repository.UserRepository)(nil)
	_ CheckinStore  = (*repository.CheckinRepository)(nil)
)

// pageBounds 把 page/limit 规范化为 offset/limit
func pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return (page - 1) * limit, limit
}
