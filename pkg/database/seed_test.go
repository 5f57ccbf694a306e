package database

import (
	"os"
	"path/filepath"
	"testing"

	"prepace_backend/internal/config"
	"prepace_backend/internal/model"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSeedQuestions(t *testing.T) {
	path := writeSeed(t, `
questions:
  - text: Tell me about yourself.
    category: hr
    difficulty: easy
    tags: [intro]
  - text: Design a URL shortener.
    category: technical
    sample_answer: Start with the API.
    time_limit: 300
`)
	questions, err := LoadSeedQuestions(path)
	if err != nil {
		t.Fatalf("LoadSeedQuestions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].TimeLimit != model.DefaultTimeLimit || !questions[0].IsActive {
		t.Errorf("defaults not applied: %+v", questions[0])
	}
	if questions[1].Difficulty != model.DifficultyMedium || questions[1].TimeLimit != 300 {
		t.Errorf("unexpected second question: %+v", questions[1])
	}
}

func TestLoadSeedQuestionsRejectsBadCategory(t *testing.T) {
	path := writeSeed(t, "questions:\n  - text: x\n    category: cooking\n")
	if _, err := LoadSeedQuestions(path); err == nil {
		t.Fatal("expected an error for an unknown category")
	}
}

func TestDSN(t *testing.T) {
	got := DSN(&config.DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 3306, DBName: "prepace", Charset: "utf8mb4", ParseTime: true})
	want := "u:p@tcp(db:3306)/prepace?charset=utf8mb4&parseTime=true&loc=Local"
	if got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
