package repository

import (
	"context"

	"prepace_backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	return r.DB.WithContext(ctx).Create(session).Error
}

func (r *SessionRepository) FindByIDAndUserID(ctx context.Context, sessionID, userID uint) (*model.Session, error) {
	var session model.Session
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Update(ctx context.Context, session *model.Session) error {
	return r.DB.WithContext(ctx).Save(session).Error
}

// FindByUserWithPagination 会话历史，最新的在前
func (r *SessionRepository) FindByUserWithPagination(ctx context.Context, userID uint, status model.SessionStatus, offset, limit int) ([]model.Session, int64, error) {
	var sessions []model.Session
	var total int64

	query := r.DB.WithContext(ctx).Model(&model.Session{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&sessions).Error
	return sessions, total, err
}

func (r *SessionRepository) CountCompletedByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Session{}).
		Where("user_id = ? AND status = ?", userID, model.SessionCompleted).
		Count(&count).Error
	return count, err
}
