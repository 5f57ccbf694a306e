package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// swagger:model
// BaseModel 不带 DeletedAt：题目通过 IsActive 下线，其余记录不做删除
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func GenerateUUID() string {
	return uuid.New().String()
}

// RoundScore 保留两位小数
func RoundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
