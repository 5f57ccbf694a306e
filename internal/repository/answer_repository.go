package repository

import (
	"context"
	"time"

	"prepace_backend/internal/model"

	"gorm.io/gorm"
)

// AnswerFilter 作答列表筛选条件
type AnswerFilter struct {
	QuestionID     uint
	BookmarkedOnly bool
}

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

func (r *AnswerRepository) Create(ctx context.Context, answer *model.Answer) error {
	return r.DB.WithContext(ctx).Create(answer).Error
}

// FindByIDAndUserID 附带题目信息
func (r *AnswerRepository) FindByIDAndUserID(ctx context.Context, answerID, userID uint) (*model.Answer, error) {
	var answer model.Answer
	err := r.DB.WithContext(ctx).
		Preload("Question").
		Where("id = ? AND user_id = ?", answerID, userID).
		First(&answer).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *AnswerRepository) FindBySession(ctx context.Context, sessionID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.WithContext(ctx).
		Preload("Question").
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) FindByQuestion(ctx context.Context, questionID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.WithContext(ctx).
		Select("id", "feedback_score").
		Where("question_id = ?", questionID).
		Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) FindByUserWithPagination(ctx context.Context, userID uint, filter AnswerFilter, offset, limit int) ([]model.Answer, int64, error) {
	var answers []model.Answer
	var total int64

	query := r.DB.WithContext(ctx).Model(&model.Answer{}).Where("user_id = ?", userID)
	if filter.QuestionID != 0 {
		query = query.Where("question_id = ?", filter.QuestionID)
	}
	if filter.BookmarkedOnly {
		query = query.Where("bookmarked = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Question").Order("created_at DESC").Offset(offset).Limit(limit).Find(&answers).Error
	return answers, total, err
}

// ReplaceFeedback 整体覆盖反馈字段，不做合并
func (r *AnswerRepository) ReplaceFeedback(ctx context.Context, answerID uint, feedback model.Feedback) error {
	return r.DB.WithContext(ctx).Model(&model.Answer{}).
		Where("id = ?", answerID).
		Select("feedback_score", "feedback_strengths", "feedback_improvements", "feedback_summary", "feedback_keywords", "feedback_source").
		Updates(&model.Answer{Feedback: feedback}).Error
}

func (r *AnswerRepository) UpdateBookmark(ctx context.Context, answerID uint, bookmarked bool) error {
	return r.DB.WithContext(ctx).Model(&model.Answer{}).
		Where("id = ?", answerID).
		Update("bookmarked", bookmarked).Error
}

func (r *AnswerRepository) UpdateSelfRating(ctx context.Context, answerID uint, rating int) error {
	return r.DB.WithContext(ctx).Model(&model.Answer{}).
		Where("id = ?", answerID).
		Update("self_rating", rating).Error
}

func (r *AnswerRepository) scoredQuery(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table("answers").
		Select("answers.id AS answer_id, answers.user_id, answers.question_id, questions.category, answers.feedback_score AS score, answers.bookmarked, answers.created_at").
		Joins("JOIN questions ON questions.id = answers.question_id")
}

// FindScoredByUser 用户的全部作答投影，since 为空表示不限时间
func (r *AnswerRepository) FindScoredByUser(ctx context.Context, userID uint, since *time.Time) ([]model.ScoredAnswer, error) {
	var rows []model.ScoredAnswer
	query := r.scoredQuery(ctx).Where("answers.user_id = ?", userID)
	if since != nil {
		query = query.Where("answers.created_at >= ?", *since)
	}
	err := query.Order("answers.created_at ASC").Scan(&rows).Error
	return rows, err
}

// FindScoredSince 排行榜窗口内所有用户的作答投影
func (r *AnswerRepository) FindScoredSince(ctx context.Context, since *time.Time) ([]model.ScoredAnswer, error) {
	var rows []model.ScoredAnswer
	query := r.scoredQuery(ctx)
	if since != nil {
		query = query.Where("answers.created_at >= ?", *since)
	}
	err := query.Scan(&rows).Error
	return rows, err
}
