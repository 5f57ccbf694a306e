package service

import (
	"context"
	"time"

	"prepace_backend/internal/model"
	"prepace_backend/pkg/logger"
	"prepace_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type SessionService struct {
	Sessions   SessionStore
	Answers    AnswerStore
	Aggregator Aggregator
	Events     EventPublisher
	now        func() time.Time
}

func NewSessionService(sessions SessionStore, answers AnswerStore, aggregator Aggregator, events EventPublisher) *SessionService {
	return &SessionService{
		Sessions:   sessions,
		Answers:    answers,
		Aggregator: aggregator,
		Events:     events,
		now:        time.Now,
	}
}

type CreateSessionInput struct {
	Mode        model.SessionMode        `json:"mode"`
	Categories  []model.QuestionCategory `json:"categories"`
	Difficulty  model.Difficulty         `json:"difficulty"`
	QuestionIDs []uint                   `json:"questionIds"`
}

type sessionEvent struct {
	SessionID    uint    `json:"sessionId"`
	UserID       uint    `json:"userId"`
	Answered     int     `json:"answered"`
	AverageScore float64 `json:"averageScore"`
}

// CreateSession 题目列表在创建时固定下来，不再校验题目是否满足筛选条件
func (s *SessionService) CreateSession(ctx context.Context, userID uint, input CreateSessionInput) (*model.Session, error) {
	if len(input.QuestionIDs) == 0 {
		return nil, validationf("questionIds must not be empty")
	}

	mode := input.Mode
	if mode == "" {
		mode = model.ModeTimed
	}
	if !mode.Valid() {
		return nil, validationf("invalid mode: %s", mode)
	}

	difficulty := input.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyMixed
	}
	if difficulty != model.DifficultyMixed && !difficulty.Valid() {
		return nil, validationf("invalid difficulty: %s", difficulty)
	}

	categories := make([]string, 0, len(input.Categories))
	for _, c := range input.Categories {
		if !c.Valid() {
			return nil, validationf("invalid category: %s", c)
		}
		categories = append(categories, string(c))
	}

	session := &model.Session{
		UserID:         userID,
		Mode:           mode,
		Categories:     categories,
		Difficulty:     difficulty,
		QuestionIDs:    append([]uint(nil), input.QuestionIDs...),
		TotalQuestions: len(input.QuestionIDs),
		Status:         model.SessionInProgress,
	}
	if err := s.Sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	monitoring.SessionTransitions.WithLabelValues(string(model.SessionInProgress)).Inc()
	logger.Log.Info("practice session started",
		zap.Uint("userID", userID),
		zap.Uint("sessionID", session.ID),
		zap.Int("questions", session.TotalQuestions),
	)
	return session, nil
}

// CompleteSession 已结束的会话原样返回
func (s *SessionService) CompleteSession(ctx context.Context, userID, sessionID uint, totalTimeTaken int) (*model.Session, error) {
	if totalTimeTaken < 0 {
		return nil, validationf("totalTimeTaken must not be negative")
	}

	session, err := s.Sessions.FindByIDAndUserID(ctx, sessionID, userID)
	if err != nil {
		return nil, lookupErr(err, "session")
	}
	if session.IsTerminal() {
		return session, nil
	}

	summary, err := s.Aggregator.SummarizeSession(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session.Answered = summary.Answered
	session.AverageScore = summary.AverageScore
	session.TotalTimeTaken = totalTimeTaken
	session.Status = model.SessionCompleted
	session.CompletedAt = &now
	if err := s.Sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	monitoring.SessionTransitions.WithLabelValues(string(model.SessionCompleted)).Inc()
	publishEvent(ctx, s.Events, EventSessionCompleted, sessionEvent{
		SessionID:    session.ID,
		UserID:       userID,
		Answered:     session.Answered,
		AverageScore: session.AverageScore,
	})
	return session, nil
}

// AbandonSession 放弃的会话不计算汇总
func (s *SessionService) AbandonSession(ctx context.Context, userID, sessionID uint) (*model.Session, error) {
	session, err := s.Sessions.FindByIDAndUserID(ctx, sessionID, userID)
	if err != nil {
		return nil, lookupErr(err, "session")
	}
	if session.IsTerminal() {
		return session, nil
	}

	session.Status = model.SessionAbandoned
	if err := s.Sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	monitoring.SessionTransitions.WithLabelValues(string(model.SessionAbandoned)).Inc()
	publishEvent(ctx, s.Events, EventSessionAbandoned, sessionEvent{SessionID: session.ID, UserID: userID})
	return session, nil
}

func (s *SessionService) ListSessions(ctx context.Context, userID uint, status model.SessionStatus, page, limit int) ([]model.Session, int64, error) {
	switch status {
	case "", model.SessionInProgress, model.SessionCompleted, model.SessionAbandoned:
	default:
		return nil, 0, validationf("invalid status: %s", status)
	}
	offset, limit := pageBounds(page, limit)
	return s.Sessions.FindByUserWithPagination(ctx, userID, status, offset, limit)
}

func (s *SessionService) GetSession(ctx context.Context, userID, sessionID uint) (*model.SessionDetail, error) {
	session, err := s.Sessions.FindByIDAndUserID(ctx, sessionID, userID)
	if err != nil {
		return nil, lookupErr(err, "session")
	}
	answers, err := s.Answers.FindBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = []model.Answer{}
	}
	return &model.SessionDetail{Session: session, Answers: answers}, nil
}
