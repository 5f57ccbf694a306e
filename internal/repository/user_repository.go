package repository

import (
	"context"

	"prepace_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// UpdateStreak 只写连续打卡相关的三个字段
func (r *UserRepository) UpdateStreak(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"current_streak":   user.CurrentStreak,
			"longest_streak":   user.LongestStreak,
			"last_active_date": user.LastActiveDate,
		}).Error
}

func (r *UserRepository) FindTopByStreak(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.WithContext(ctx).
		Where("current_streak > 0").
		Order("current_streak DESC").
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
