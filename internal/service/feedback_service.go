package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strings"
	"time"

	"prepace_backend/internal/model"
	"prepace_backend/pkg/logger"
	"prepace_backend/pkg/monitoring"
	"prepace_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// FallbackSummary 兜底反馈的摘要，前端据此区分真实评分
const FallbackSummary = "Fallback feedback — scoring service not connected."

var (
	fallbackStrengths    = []string{"Attempted the question", "Provided some context"}
	fallbackImprovements = []string{"Add more specific examples", "Use the STAR method"}
	fallbackKeywords     = []string{"example", "situation", "result"}

	codeFence = regexp.MustCompile("```[A-Za-z]*")
)

// FeedbackService 把一次作答转换成结构化反馈。
// Score 从不返回错误：评分服务未配置、不可用或返回内容不合法时一律使用本地兜底
type FeedbackService struct {
	Oracle     ScoringOracle
	Answers    AnswerStore
	Questions  QuestionStore
	Aggregator Aggregator
}

func NewFeedbackService(oracle ScoringOracle, answers AnswerStore, questions QuestionStore, aggregator Aggregator) *FeedbackService {
	return &FeedbackService{
		Oracle:     oracle,
		Answers:    answers,
		Questions:  questions,
		Aggregator: aggregator,
	}
}

func (s *FeedbackService) Score(ctx context.Context, questionText, answerText string, category model.QuestionCategory) model.Feedback {
	ctx, span := tracing.Tracer().Start(ctx, "feedback.score")
	defer span.End()
	span.SetAttributes(attribute.String("question.category", string(category)))

	if s.Oracle == nil || !s.Oracle.Configured() {
		monitoring.FeedbackResults.WithLabelValues(string(model.FeedbackFromFallback), "unconfigured").Inc()
		span.SetAttributes(attribute.String("feedback.source", "fallback"))
		return FallbackFeedback(answerText)
	}

	start := time.Now()
	raw, err := s.Oracle.Evaluate(ctx, questionText, answerText, category)
	monitoring.OracleDuration.Observe(time.Since(start).Seconds())

	if err == nil {
		var feedback model.Feedback
		feedback, err = ParseOracleFeedback(raw)
		if err == nil {
			monitoring.FeedbackResults.WithLabelValues(string(model.FeedbackFromOracle), "").Inc()
			span.SetAttributes(attribute.String("feedback.source", "oracle"))
			return feedback
		}
	}

	reason := "error"
	var failure *ScoringOracleFailure
	if errors.As(err, &failure) {
		reason = failure.Reason
	}
	logger.Log.Warn("scoring oracle unavailable, using fallback feedback",
		zap.String("category", string(category)),
		zap.Error(err),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, "oracle fallback")
	monitoring.FeedbackResults.WithLabelValues(string(model.FeedbackFromFallback), fallbackReason(reason)).Inc()
	return FallbackFeedback(answerText)
}

// fallbackReason 控制 metrics label 的取值范围
func fallbackReason(reason string) string {
	switch {
	case strings.HasPrefix(reason, "status"):
		return "status"
	case reason == "transport":
		return "transport"
	case strings.HasPrefix(reason, "invalid"):
		return "invalid_payload"
	default:
		return "error"
	}
}

// Regenerate 用已保存的作答文本重新走一遍评分流水线，整体替换原反馈后重算题目汇总
func (s *FeedbackService) Regenerate(ctx context.Context, userID, answerID uint) (*model.Feedback, error) {
	answer, err := s.Answers.FindByIDAndUserID(ctx, answerID, userID)
	if err != nil {
		return nil, lookupErr(err, "answer")
	}

	question := answer.Question
	if question == nil {
		question, err = s.Questions.FindByID(ctx, answer.QuestionID)
		if err != nil {
			return nil, lookupErr(err, "question")
		}
	}

	feedback := s.Score(ctx, question.Text, answer.AnswerText, question.Category)
	if err := s.Answers.ReplaceFeedback(ctx, answer.ID, feedback); err != nil {
		return nil, err
	}
	if s.Aggregator != nil {
		if err := s.Aggregator.RefreshQuestion(ctx, answer.QuestionID); err != nil {
			return nil, err
		}
	}
	return &feedback, nil
}

// GetFeedback 作答之后才返回参考答案
func (s *FeedbackService) GetFeedback(ctx context.Context, userID, answerID uint) (*model.FeedbackDetail, error) {
	answer, err := s.Answers.FindByIDAndUserID(ctx, answerID, userID)
	if err != nil {
		return nil, lookupErr(err, "answer")
	}

	question := answer.Question
	if question == nil {
		question, err = s.Questions.FindByID(ctx, answer.QuestionID)
		if err != nil {
			return nil, lookupErr(err, "question")
		}
	}

	return &model.FeedbackDetail{
		Feedback:     answer.Feedback,
		SampleAnswer: question.SampleAnswer,
		TimeTaken:    answer.TimeTaken,
		TimeLimit:    answer.TimeLimit,
		TimedOut:     answer.TimedOut,
		QuestionText: question.Text,
		Category:     question.Category,
	}, nil
}

// FallbackScore 每 10 个词 1 分，限制在 [1, 10]
func FallbackScore(answerText string) int {
	score := len(strings.Fields(answerText)) / 10
	if score < 1 {
		score = 1
	}
	if score > model.MaxScore {
		score = model.MaxScore
	}
	return score
}

func FallbackFeedback(answerText string) model.Feedback {
	score := FallbackScore(answerText)
	return model.Feedback{
		Score:        &score,
		Strengths:    append([]string(nil), fallbackStrengths...),
		Improvements: append([]string(nil), fallbackImprovements...),
		Summary:      FallbackSummary,
		Keywords:     append([]string(nil), fallbackKeywords...),
		Source:       model.FeedbackFromFallback,
	}
}

// StripCodeFence 去掉模型可能包裹的 ```json ... ```
func StripCodeFence(raw string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(strings.TrimSpace(raw), ""))
}

// ParseOracleFeedback 显式校验字段：score 必须存在且在 [0,10]，summary 必须是字符串，
// 列表字段缺失时视为空，但存在时必须是字符串数组
func ParseOracleFeedback(raw string) (model.Feedback, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &fields); err != nil {
		return model.Feedback{}, &ScoringOracleFailure{Reason: "invalid json", Wrapped: err}
	}

	scoreRaw, ok := fields["score"]
	if !ok {
		return model.Feedback{}, &ScoringOracleFailure{Reason: "invalid payload: missing score"}
	}
	var scoreValue float64
	if err := json.Unmarshal(scoreRaw, &scoreValue); err != nil {
		return model.Feedback{}, &ScoringOracleFailure{Reason: "invalid payload: score is not a number", Wrapped: err}
	}
	if math.IsNaN(scoreValue) || scoreValue < model.MinScore || scoreValue > model.MaxScore {
		return model.Feedback{}, &ScoringOracleFailure{Reason: "invalid payload: score out of range"}
	}
	score := int(math.Round(scoreValue))

	summaryRaw, ok := fields["summary"]
	if !ok {
		return model.Feedback{}, &ScoringOracleFailure{Reason: "invalid payload: missing summary"}
	}
	var summary string
	if err := json.Unmarshal(summaryRaw, &summary); err != nil {
		return model.Feedback{}, &ScoringOracleFailure{Reason: "invalid payload: summary is not a string", Wrapped: err}
	}

	strengths, err := stringList(fields, "strengths")
	if err != nil {
		return model.Feedback{}, err
	}
	improvements, err := stringList(fields, "improvements")
	if err != nil {
		return model.Feedback{}, err
	}
	keywords, err := stringList(fields, "keywords")
	if err != nil {
		return model.Feedback{}, err
	}

	return model.Feedback{
		Score:        &score,
		Strengths:    strengths,
		Improvements: improvements,
		Summary:      strings.TrimSpace(summary),
		Keywords:     keywords,
		Source:       model.FeedbackFromOracle,
	}, nil
}

func stringList(fields map[string]json.RawMessage, key string) ([]string, error) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, &ScoringOracleFailure{Reason: "invalid payload: " + key + " is not a list of strings", Wrapped: err}
	}
	return list, nil
}
