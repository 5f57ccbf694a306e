package main

import (
	"context"
	"os"
	"time"

	"prepace_backend/internal/config"
	"prepace_backend/internal/model"
	"prepace_backend/internal/practice"
	"prepace_backend/internal/repository/memory"
	"prepace_backend/internal/service"
	"prepace_backend/pkg/database"
)

const offlineUserID uint = 1

// offlineBackend 在进程内跑完整的服务层，数据只保存在内存里。
// 设置了 AI_API_KEY 时仍然调用评分服务，否则使用兜底评分
type offlineBackend struct {
	sessions  *service.SessionService
	answers   *service.AnswerService
	questions *service.QuestionService
	stats     *service.StatsService
	streaks   *service.StreakService
}

var _ backend = (*offlineBackend)(nil)

func newOfflineBackend(seedPath string) (*offlineBackend, error) {
	questions, err := database.LoadSeedQuestions(seedPath)
	if err != nil {
		return nil, err
	}

	store := memory.NewStore()
	store.AddUser(&model.User{Name: "offline", Email: "offline@localhost", Role: model.RoleUser})
	store.AddQuestions(questions...)

	return newOfflineBackendWithStore(store, offlineAIConfig()), nil
}

func offlineAIConfig() config.AIConfig {
	cfg := config.AIConfig{
		BaseURL:     "https://api.groq.com/openai/v1",
		Model:       "llama-3.3-70b-versatile",
		APIKey:      os.Getenv("AI_API_KEY"),
		Temperature: 0.4,
		MaxTokens:   500,
	}
	if base := os.Getenv("AI_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}
	return cfg
}

func newOfflineBackendWithStore(store *memory.Store, aiCfg config.AIConfig) *offlineBackend {
	var events service.EventPublisher = service.NopPublisher{}
	cache := service.NewCache(nil)

	aggregator := service.NewRecomputeAggregator(store.Answers(), store.Questions())
	feedback := service.NewFeedbackService(service.NewAIService(aiCfg), store.Answers(), store.Questions(), aggregator)

	return &offlineBackend{
		sessions:  service.NewSessionService(store.Sessions(), store.Answers(), aggregator, events),
		answers:   service.NewAnswerService(store.Answers(), store.Sessions(), store.Questions(), feedback, aggregator, events),
		questions: service.NewQuestionService(store.Questions(), cache, nil),
		stats:     service.NewStatsService(store.Answers(), store.Sessions(), store.Users(), nil),
		streaks:   service.NewStreakService(store.Users(), store.Checkins(), events, nil),
	}
}

func (b *offlineBackend) RandomQuestions(ctx context.Context, count int, category model.QuestionCategory, difficulty model.Difficulty) ([]model.Question, error) {
	return b.questions.SelectRandomQuestions(ctx, count, category, difficulty)
}

func (b *offlineBackend) CreateSession(ctx context.Context, input service.CreateSessionInput) (*model.Session, error) {
	return b.sessions.CreateSession(ctx, offlineUserID, input)
}

func (b *offlineBackend) Question(ctx context.Context, id uint) (*model.Question, error) {
	return b.questions.GetQuestion(ctx, id)
}

func (b *offlineBackend) SubmitAnswer(ctx context.Context, sub practice.Submission) (*model.Answer, error) {
	return b.answers.SubmitAnswer(ctx, offlineUserID, service.SubmitAnswerInput{
		SessionID:  sub.SessionID,
		QuestionID: sub.QuestionID,
		AnswerText: sub.AnswerText,
		TimeTaken:  sub.TimeTaken,
		TimeLimit:  sub.TimeLimit,
		TimedOut:   sub.TimedOut,
	})
}

func (b *offlineBackend) CompleteSession(ctx context.Context, sessionID uint, totalTimeTaken int) (*model.Session, error) {
	return b.sessions.CompleteSession(ctx, offlineUserID, sessionID, totalTimeTaken)
}

func (b *offlineBackend) AbandonSession(ctx context.Context, sessionID uint) (*model.Session, error) {
	return b.sessions.AbandonSession(ctx, offlineUserID, sessionID)
}

func (b *offlineBackend) DailyQuestion(ctx context.Context) (*model.Question, error) {
	return b.questions.SelectDailyQuestion(ctx, time.Time{})
}

func (b *offlineBackend) Overview(ctx context.Context) (*model.StatsOverview, error) {
	return b.stats.Overview(ctx, offlineUserID)
}

func (b *offlineBackend) WeakAreas(ctx context.Context) ([]model.CategoryStat, error) {
	return b.stats.WeakAreas(ctx, offlineUserID)
}

func (b *offlineBackend) CheckIn(ctx context.Context) (*model.StreakStatus, error) {
	return b.streaks.CheckIn(ctx, offlineUserID)
}
