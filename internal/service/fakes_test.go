package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"prepace_backend/internal/model"
	"prepace_backend/internal/repository/memory"
)

// flakyAnswers 在内存存储外包一层，按需让写入或汇总读取失败
type flakyAnswers struct {
	*memory.AnswerStore
	fail       error
	failCreate error
}

func (f *flakyAnswers) Create(ctx context.Context, answer *model.Answer) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	return f.AnswerStore.Create(ctx, answer)
}

func (f *flakyAnswers) FindBySession(ctx context.Context, sessionID uint) ([]model.Answer, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return f.AnswerStore.FindBySession(ctx, sessionID)
}

func (f *flakyAnswers) FindByQuestion(ctx context.Context, questionID uint) ([]model.Answer, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return f.AnswerStore.FindByQuestion(ctx, questionID)
}

func (f *flakyAnswers) FindScoredByUser(ctx context.Context, userID uint, since *time.Time) ([]model.ScoredAnswer, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return f.AnswerStore.FindScoredByUser(ctx, userID, since)
}

func (f *flakyAnswers) FindScoredSince(ctx context.Context, since *time.Time) ([]model.ScoredAnswer, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return f.AnswerStore.FindScoredSince(ctx, since)
}

func questionByID(t *testing.T, store *memory.Store, id uint) *model.Question {
	t.Helper()
	q, err := store.Questions().FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("question %d: %v", id, err)
	}
	return q
}

// setActive 覆盖写入同 ID 的题目来上下线
func setActive(t *testing.T, store *memory.Store, id uint, active bool) {
	t.Helper()
	q := questionByID(t, store, id)
	q.IsActive = active
	store.AddQuestions(*q)
}

// storedAnswers 所有关联到题目的作答
func storedAnswers(t *testing.T, store *memory.Store) []model.ScoredAnswer {
	t.Helper()
	rows, err := store.Answers().FindScoredSince(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

type publishedEvent struct {
	Type    string
	Payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// mapCache 与 RedisCache 一样按 JSON 存取，并统计写入次数
type mapCache struct {
	items map[string][]byte
	sets  int
}

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.items == nil {
		c.items = make(map[string][]byte)
	}
	c.items[key] = raw
	c.sets++
	return nil
}

// stubOracle 返回固定内容或错误
type stubOracle struct {
	configured bool
	raw        string
	err        error
	calls      int
	lastAnswer string
}

func (o *stubOracle) Configured() bool { return o.configured }

func (o *stubOracle) Evaluate(_ context.Context, _, answerText string, _ model.QuestionCategory) (string, error) {
	o.calls++
	o.lastAnswer = answerText
	return o.raw, o.err
}

var errStore = errors.New("store unavailable")

func intPtr(v int) *int { return &v }
