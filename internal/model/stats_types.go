package model

import "time"

// ScoredAnswer 统计用的作答投影：answers 关联 questions 后的一行
type ScoredAnswer struct {
	AnswerID   uint             `json:"answerId"`
	UserID     uint             `json:"userId"`
	QuestionID uint             `json:"questionId"`
	Category   QuestionCategory `json:"category"`
	Score      *int             `json:"score"`
	Bookmarked bool             `json:"bookmarked"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// StatsOverview 个人总览
type StatsOverview struct {
	TotalAnswers      int     `json:"totalAnswers"`
	TotalSessions     int     `json:"totalSessions"` // 仅统计已完成的会话
	BookmarkedAnswers int     `json:"bookmarkedAnswers"`
	AverageScore      float64 `json:"averageScore"`
	CurrentStreak     int     `json:"currentStreak"`
	LongestStreak     int     `json:"longestStreak"`
}

// CategoryStat 按题目分类的统计
type CategoryStat struct {
	Category QuestionCategory `json:"category"`
	Count    int              `json:"count"`
	AvgScore float64          `json:"avgScore"`
}

// TrendPoint 每日得分趋势
type TrendPoint struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Count    int     `json:"count"`
	AvgScore float64 `json:"avgScore"`
}

// LeaderboardUser 排行榜展示用的用户信息
type LeaderboardUser struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	CurrentStreak int    `json:"currentStreak"`
}

// LeaderboardEntry 得分排行榜的一行
type LeaderboardEntry struct {
	Rank     int              `json:"rank"`
	UserID   uint             `json:"userId"`
	User     *LeaderboardUser `json:"user"`
	AvgScore float64          `json:"avgScore"`
	Count    int              `json:"count"`
}

// StreakEntry 连续打卡排行榜的一行
type StreakEntry struct {
	Rank          int    `json:"rank"`
	UserID        uint   `json:"userId"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
}

// StreakStatus 打卡结果
type StreakStatus struct {
	CurrentStreak  int        `json:"currentStreak"`
	LongestStreak  int        `json:"longestStreak"`
	LastActiveDate *time.Time `json:"lastActiveDate"`
	TotalCheckins  int64      `json:"totalCheckins"`
	Updated        bool       `json:"updated"`
	Message        string     `json:"message,omitempty"`
}

// SessionSummary 会话完成时的汇总
type SessionSummary struct {
	Answered     int     `json:"answered"`
	AverageScore float64 `json:"averageScore"`
}

// SessionDetail 会话详情及其全部作答
type SessionDetail struct {
	Session *Session `json:"session"`
	Answers []Answer `json:"answers"`
}

// FeedbackDetail 反馈详情，作答之后才会附带参考答案
type FeedbackDetail struct {
	Feedback     Feedback         `json:"feedback"`
	SampleAnswer string           `json:"sampleAnswer"`
	TimeTaken    int              `json:"timeTaken"`
	TimeLimit    int              `json:"timeLimit"`
	TimedOut     bool             `json:"timedOut"`
	QuestionText string           `json:"questionText"`
	Category     QuestionCategory `json:"category"`
}
