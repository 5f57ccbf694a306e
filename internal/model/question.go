package model

import "gorm.io/datatypes"

type QuestionCategory string

const (
	CategoryBehavioral     QuestionCategory = "behavioral"
	CategoryTechnical      QuestionCategory = "technical"
	CategoryHR             QuestionCategory = "hr"
	CategorySituational    QuestionCategory = "situational"
	CategoryLeadership     QuestionCategory = "leadership"
	CategoryProblemSolving QuestionCategory = "problem-solving"
)

var QuestionCategories = []QuestionCategory{
	CategoryBehavioral,
	CategoryTechnical,
	CategoryHR,
	CategorySituational,
	CategoryLeadership,
	CategoryProblemSolving,
}

func (c QuestionCategory) Valid() bool {
	for _, v := range QuestionCategories {
		if v == c {
			return true
		}
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	// DifficultyMixed 仅用于练习会话的筛选条件
	DifficultyMixed Difficulty = "mixed"
)

// Valid 题目本身的难度，不包含 mixed
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

const DefaultTimeLimit = 120

// Question 面试题。内容字段由题库管理方维护，TimesAttempted/AverageScore 只由统计聚合更新
// swagger:model Question
type Question struct {
	BaseModel
	Text         string                      `gorm:"type:text;not null" json:"text"`
	Category     QuestionCategory            `gorm:"size:32;not null;index:idx_question_category_difficulty" json:"category"`
	Difficulty   Difficulty                  `gorm:"size:16;default:'medium';index:idx_question_category_difficulty" json:"difficulty"`
	Tags         datatypes.JSONSlice[string] `gorm:"type:json" json:"tags"`
	SampleAnswer string                      `gorm:"type:text" json:"-"` // 作答之后才通过反馈接口返回
	TimeLimit    int                         `gorm:"default:120" json:"timeLimit"`

	TimesAttempted int     `gorm:"default:0" json:"timesAttempted"`
	AverageScore   float64 `gorm:"default:0" json:"averageScore"`

	IsActive bool `gorm:"default:true;index" json:"isActive"`
}

func (Question) TableName() string {
	return "questions"
}

// EffectiveTimeLimit 题目未设置时限时使用默认值
func (q *Question) EffectiveTimeLimit() int {
	if q.TimeLimit <= 0 {
		return DefaultTimeLimit
	}
	return q.TimeLimit
}
