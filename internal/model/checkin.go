package model

import (
	"time"
)

// Checkin 每个自然日第一次打卡时记录一条，作为连续打卡的流水
// swagger:model Checkin
type Checkin struct {
	BaseModel
	UserID     uint      `gorm:"not null;index:idx_user_checkin,priority:1" json:"userId"`
	CheckinAt  time.Time `gorm:"not null;index:idx_user_checkin,priority:2" json:"checkinAt"`
	StreakDays int       `gorm:"default:1" json:"streakDays"` // 打卡后的连续天数
}

func (Checkin) TableName() string {
	return "checkins"
}
