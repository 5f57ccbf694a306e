package model

import "gorm.io/datatypes"

type AnswerSource string

const (
	SourceText  AnswerSource = "text"
	SourceVoice AnswerSource = "voice"
)

type FeedbackSource string

const (
	FeedbackFromOracle   FeedbackSource = "oracle"
	FeedbackFromFallback FeedbackSource = "fallback"
)

const (
	MinScore = 0
	MaxScore = 10
)

// Feedback 内嵌在 Answer 中，重新生成时整体替换
// swagger:model Feedback
type Feedback struct {
	Score        *int                        `json:"score"`
	Strengths    datatypes.JSONSlice[string] `gorm:"type:json" json:"strengths"`
	Improvements datatypes.JSONSlice[string] `gorm:"type:json" json:"improvements"`
	Summary      string                      `gorm:"type:text" json:"summary"`
	Keywords     datatypes.JSONSlice[string] `gorm:"type:json" json:"keywords"`
	Source       FeedbackSource              `gorm:"size:16" json:"source"`
}

// ScoreOrZero 缺失的分数按 0 计
func (f Feedback) ScoreOrZero() int {
	if f.Score == nil {
		return 0
	}
	return *f.Score
}

// Answer 用户对某个会话中某道题的一次作答。
// 创建后只有 Bookmarked、SelfRating 可以修改，Feedback 只能整体重新生成
// swagger:model Answer
type Answer struct {
	BaseModel
	UserID     uint `gorm:"not null;index:idx_answer_user_question,priority:1;index:idx_answer_user_bookmarked,priority:1" json:"userId"`
	SessionID  uint `gorm:"not null;index" json:"sessionId"`
	QuestionID uint `gorm:"not null;index:idx_answer_user_question,priority:2" json:"questionId"`

	AnswerText    string       `gorm:"type:text" json:"answerText"`
	AnswerSource  AnswerSource `gorm:"size:16;default:'text'" json:"answerSource"`
	AudioURL      string       `gorm:"size:255" json:"audioUrl,omitempty"`
	AudioDuration float64      `json:"audioDuration,omitempty"` // 秒

	TimeTaken int  `gorm:"default:0" json:"timeTaken"` // 秒
	TimeLimit int  `gorm:"default:120" json:"timeLimit"`
	TimedOut  bool `gorm:"default:false" json:"timedOut"`

	Feedback Feedback `gorm:"embedded;embeddedPrefix:feedback_" json:"feedback"`

	SelfRating *int `json:"selfRating,omitempty"`
	Bookmarked bool `gorm:"default:false;index:idx_answer_user_bookmarked,priority:2" json:"bookmarked"`

	Question *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

func (Answer) TableName() string {
	return "answers"
}
