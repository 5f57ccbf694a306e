package repository

import (
	"context"
	"encoding/json"

	"prepace_backend/internal/model"

	"gorm.io/gorm"
)

// QuestionFilter 题目筛选条件，空值表示不过滤。
// Tags 命中任意一个即可
type QuestionFilter struct {
	Category   model.QuestionCategory
	Difficulty model.Difficulty
	Tags       []string
}

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) activeQuery(ctx context.Context, filter QuestionFilter) *gorm.DB {
	query := r.DB.WithContext(ctx).Model(&model.Question{}).Where("is_active = ?", true)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if len(filter.Tags) > 0 {
		tags, _ := json.Marshal(filter.Tags)
		query = query.Where("JSON_OVERLAPS(tags, CAST(? AS JSON))", string(tags))
	}
	return query
}

func (r *QuestionRepository) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	var question model.Question
	err := r.DB.WithContext(ctx).First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// FindByIDs 返回顺序与 ids 一致，不存在的 id 会被跳过
func (r *QuestionRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Question, error) {
	if len(ids) == 0 {
		return []model.Question{}, nil
	}
	var found []model.Question
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}
	ordered := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// FindActiveIDs 按创建顺序返回符合条件的上线题目 ID
func (r *QuestionRepository) FindActiveIDs(ctx context.Context, filter QuestionFilter) ([]uint, error) {
	var ids []uint
	err := r.activeQuery(ctx, filter).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

func (r *QuestionRepository) FindActiveWithPagination(ctx context.Context, filter QuestionFilter, offset, limit int) ([]model.Question, int64, error) {
	var questions []model.Question
	var total int64

	query := r.activeQuery(ctx, filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&questions).Error
	return questions, total, err
}

// UpdateAggregate 写入重新计算后的作答次数和平均分
func (r *QuestionRepository) UpdateAggregate(ctx context.Context, id uint, timesAttempted int, averageScore float64) error {
	return r.DB.WithContext(ctx).Model(&model.Question{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"times_attempted": timesAttempted,
			"average_score":   averageScore,
		}).Error
}
