package service

import (
	"context"

	"prepace_backend/internal/model"
	"prepace_backend/internal/repository"
	"prepace_backend/pkg/logger"
	"prepace_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Aggregator 从作答记录重算题目和会话的汇总数据。
// 汇总字段只是缓存，作答记录才是唯一数据源
type Aggregator interface {
	RefreshQuestion(ctx context.Context, questionID uint) error
	SummarizeSession(ctx context.Context, sessionID uint) (model.SessionSummary, error)
}

// RecomputeAggregator 每次全量重算。并发写入时以最后一次写入为准
type RecomputeAggregator struct {
	Answers   AnswerStore
	Questions QuestionStore
}

var _ Aggregator = (*RecomputeAggregator)(nil)

func NewRecomputeAggregator(answers AnswerStore, questions QuestionStore) *RecomputeAggregator {
	return &RecomputeAggregator{Answers: answers, Questions: questions}
}

func (a *RecomputeAggregator) RefreshQuestion(ctx context.Context, questionID uint) error {
	ctx, span := tracing.Tracer().Start(ctx, "aggregate.question")
	defer span.End()
	span.SetAttributes(attribute.Int("question.id", int(questionID)))

	answers, err := a.Answers.FindByQuestion(ctx, questionID)
	if err != nil {
		logger.Log.Error("load answers for question aggregate failed", zap.Uint("questionID", questionID), zap.Error(err))
		return aggregationErr("refresh question", err)
	}

	count, avg := meanScore(answers)
	if err := a.Questions.UpdateAggregate(ctx, questionID, count, avg); err != nil {
		logger.Log.Error("update question aggregate failed", zap.Uint("questionID", questionID), zap.Error(err))
		return aggregationErr("refresh question", err)
	}
	return nil
}

func (a *RecomputeAggregator) SummarizeSession(ctx context.Context, sessionID uint) (model.SessionSummary, error) {
	ctx, span := tracing.Tracer().Start(ctx, "aggregate.session")
	defer span.End()
	span.SetAttributes(attribute.Int("session.id", int(sessionID)))

	answers, err := a.Answers.FindBySession(ctx, sessionID)
	if err != nil {
		logger.Log.Error("load answers for session summary failed", zap.Uint("sessionID", sessionID), zap.Error(err))
		return model.SessionSummary{}, aggregationErr("summarize session", err)
	}

	count, avg := meanScore(answers)
	return model.SessionSummary{Answered: count, AverageScore: avg}, nil
}

// meanScore 缺失的分数按 0 计入均值，没有作答时均值为 0
func meanScore(answers []model.Answer) (int, float64) {
	if len(answers) == 0 {
		return 0, 0
	}
	sum := 0
	for _, a := range answers {
		sum += a.Feedback.ScoreOrZero()
	}
	return len(answers), model.RoundScore(float64(sum) / float64(len(answers)))
}

// RefreshAll 重算全部上线题目，用于数据修复或导入之后
func (a *RecomputeAggregator) RefreshAll(ctx context.Context) (int, error) {
	ids, err := a.Questions.FindActiveIDs(ctx, repository.QuestionFilter{})
	if err != nil {
		return 0, aggregationErr("list questions", err)
	}
	for _, id := range ids {
		if err := a.RefreshQuestion(ctx, id); err != nil {
			return 0, err
		}
	}
	logger.Log.Info("question aggregates recomputed", zap.Int("questions", len(ids)))
	return len(ids), nil
}
