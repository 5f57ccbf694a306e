package database

import (
	"errors"
	"fmt"
	"os"

	"prepace_backend/internal/model"
	applog "prepace_backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedQuestion 题库种子文件中的一道题
type SeedQuestion struct {
	Text         string   `yaml:"text"`
	Category     string   `yaml:"category"`
	Difficulty   string   `yaml:"difficulty"`
	Tags         []string `yaml:"tags"`
	SampleAnswer string   `yaml:"sample_answer"`
	TimeLimit    int      `yaml:"time_limit"`
}

type seedFile struct {
	Questions []SeedQuestion `yaml:"questions"`
}

// LoadSeedQuestions 解析并校验题库种子文件
func LoadSeedQuestions(path string) ([]model.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	questions := make([]model.Question, 0, len(file.Questions))
	for i, q := range file.Questions {
		category := model.QuestionCategory(q.Category)
		if q.Text == "" || !category.Valid() {
			return nil, fmt.Errorf("question #%d: missing text or invalid category %q", i+1, q.Category)
		}
		difficulty := model.Difficulty(q.Difficulty)
		if difficulty == "" {
			difficulty = model.DifficultyMedium
		}
		if !difficulty.Valid() {
			return nil, fmt.Errorf("question #%d: invalid difficulty %q", i+1, q.Difficulty)
		}
		timeLimit := q.TimeLimit
		if timeLimit <= 0 {
			timeLimit = model.DefaultTimeLimit
		}
		questions = append(questions, model.Question{
			Text:         q.Text,
			Category:     category,
			Difficulty:   difficulty,
			Tags:         q.Tags,
			SampleAnswer: q.SampleAnswer,
			TimeLimit:    timeLimit,
			IsActive:     true,
		})
	}
	return questions, nil
}

// SeedQuestions 题库为空时导入种子文件，文件不存在时跳过
func SeedQuestions(db *gorm.DB, path string) error {
	var count int64
	if err := db.Model(&model.Question{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	questions, err := LoadSeedQuestions(path)
	if errors.Is(err, os.ErrNotExist) {
		applog.Log.Info("no question seed file, skipping", zap.String("path", path))
		return nil
	}
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return nil
	}

	if err := db.CreateInBatches(questions, 100).Error; err != nil {
		return err
	}
	applog.Log.Info("seeded question bank", zap.Int("count", len(questions)))
	return nil
}
