package main

import (
	"context"

	"prepace_backend/internal/model"
	"prepace_backend/internal/practice"
	"prepace_backend/internal/service"
)

// backend 练习客户端需要的服务端能力，HTTP 和离线两种实现
type backend interface {
	RandomQuestions(ctx context.Context, count int, category model.QuestionCategory, difficulty model.Difficulty) ([]model.Question, error)
	CreateSession(ctx context.Context, input service.CreateSessionInput) (*model.Session, error)
	Question(ctx context.Context, id uint) (*model.Question, error)
	SubmitAnswer(ctx context.Context, sub practice.Submission) (*model.Answer, error)
	CompleteSession(ctx context.Context, sessionID uint, totalTimeTaken int) (*model.Session, error)
	AbandonSession(ctx context.Context, sessionID uint) (*model.Session, error)
	DailyQuestion(ctx context.Context) (*model.Question, error)
	Overview(ctx context.Context) (*model.StatsOverview, error)
	WeakAreas(ctx context.Context) ([]model.CategoryStat, error)
	CheckIn(ctx context.Context) (*model.StreakStatus, error)
}
