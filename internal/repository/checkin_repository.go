package repository

import (
	"context"

	"prepace_backend/internal/model"

	"gorm.io/gorm"
)

type CheckinRepository struct {
	DB *gorm.DB
}

// NewCheckinRepository 创建新的打卡仓库实例
func NewCheckinRepository(db *gorm.DB) *CheckinRepository {
	return &CheckinRepository{DB: db}
}

// Create 记录一次打卡
func (r *CheckinRepository) Create(ctx context.Context, checkin *model.Checkin) error {
	return r.DB.WithContext(ctx).Create(checkin).Error
}

// CountByUser 获取用户的总打卡天数
func (r *CheckinRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Checkin{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
