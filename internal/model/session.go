package model

import (
	"time"

	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in-progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

type SessionMode string

const (
	ModeTimed   SessionMode = "timed"
	ModeRelaxed SessionMode = "relaxed"
	ModeMock    SessionMode = "mock"
)

func (m SessionMode) Valid() bool {
	return m == ModeTimed || m == ModeRelaxed || m == ModeMock
}

// Timed timed 和 mock 模式下每道题都有倒计时
func (m SessionMode) Timed() bool {
	return m == ModeTimed || m == ModeMock
}

// Session 一次练习会话。QuestionIDs 是创建时的题目快照，之后题库变化不会影响它
// swagger:model Session
type Session struct {
	BaseModel
	UserID      uint                        `gorm:"not null;index:idx_session_user_created,priority:1" json:"userId"`
	Mode        SessionMode                 `gorm:"size:16;default:'timed'" json:"mode"`
	Categories  datatypes.JSONSlice[string] `gorm:"type:json" json:"categories"`
	Difficulty  Difficulty                  `gorm:"size:16;default:'mixed'" json:"difficulty"`
	QuestionIDs datatypes.JSONSlice[uint]   `gorm:"type:json" json:"questions"`

	// 以下汇总字段只在完成时写入
	TotalQuestions int           `gorm:"default:0" json:"totalQuestions"`
	Answered       int           `gorm:"default:0" json:"answered"`
	AverageScore   float64       `gorm:"default:0" json:"averageScore"`
	TotalTimeTaken int           `gorm:"default:0" json:"totalTimeTaken"`
	Status         SessionStatus `gorm:"size:16;default:'in-progress';index" json:"status"`
	CompletedAt    *time.Time    `json:"completedAt,omitempty"`
}

func (Session) TableName() string {
	return "practice_sessions"
}

func (s *Session) IsTerminal() bool {
	return s.Status == SessionCompleted || s.Status == SessionAbandoned
}

func (s *Session) HasQuestion(questionID uint) bool {
	for _, id := range s.QuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}
