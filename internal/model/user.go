package model

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User 只包含练习引擎关心的字段，注册和凭证由认证服务维护。
// CurrentStreak/LongestStreak/LastActiveDate 只由打卡服务修改
// swagger:model User
type User struct {
	BaseModel
	Name   string   `gorm:"size:100;not null" json:"name"`
	Email  string   `gorm:"size:100;unique;not null" json:"email"`
	Role   UserRole `gorm:"size:16;default:'user'" json:"role"`
	Avatar string   `gorm:"size:255" json:"avatar"`

	CurrentStreak  int        `gorm:"default:0;index" json:"currentStreak"`
	LongestStreak  int        `gorm:"default:0" json:"longestStreak"`
	LastActiveDate *time.Time `json:"lastActiveDate"`
}

func (User) TableName() string {
	return "users"
}
