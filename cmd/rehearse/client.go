package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"prepace_backend/internal/model"
	"prepace_backend/internal/practice"
	"prepace_backend/internal/service"
)

// envelope 服务端统一响应 {code, message, data}
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError 非 2xx 响应
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type httpBackend struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ backend = (*httpBackend)(nil)

func newHTTPBackend(baseURL, token string) *httpBackend {
	return &httpBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		// 评分服务最长 30 秒，留出余量
		client: &http.Client{Timeout: 45 * time.Second},
	}
}

func (b *httpBackend) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+"/api"+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "malformed response"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (b *httpBackend) RandomQuestions(ctx context.Context, count int, category model.QuestionCategory, difficulty model.Difficulty) ([]model.Question, error) {
	query := url.Values{}
	query.Set("count", strconv.Itoa(count))
	if category != "" {
		query.Set("category", string(category))
	}
	if difficulty != "" {
		query.Set("difficulty", string(difficulty))
	}
	var questions []model.Question
	if err := b.do(ctx, http.MethodGet, "/questions/random?"+query.Encode(), nil, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (b *httpBackend) CreateSession(ctx context.Context, input service.CreateSessionInput) (*model.Session, error) {
	var session model.Session
	if err := b.do(ctx, http.MethodPost, "/sessions", input, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (b *httpBackend) Question(ctx context.Context, id uint) (*model.Question, error) {
	var q model.Question
	if err := b.do(ctx, http.MethodGet, fmt.Sprintf("/questions/%d", id), nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (b *httpBackend) SubmitAnswer(ctx context.Context, sub practice.Submission) (*model.Answer, error) {
	var answer model.Answer
	if err := b.do(ctx, http.MethodPost, "/answers", sub, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

func (b *httpBackend) CompleteSession(ctx context.Context, sessionID uint, totalTimeTaken int) (*model.Session, error) {
	var session model.Session
	body := map[string]int{"totalTimeTaken": totalTimeTaken}
	if err := b.do(ctx, http.MethodPatch, fmt.Sprintf("/sessions/%d/complete", sessionID), body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (b *httpBackend) AbandonSession(ctx context.Context, sessionID uint) (*model.Session, error) {
	var session model.Session
	if err := b.do(ctx, http.MethodPatch, fmt.Sprintf("/sessions/%d/abandon", sessionID), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (b *httpBackend) DailyQuestion(ctx context.Context) (*model.Question, error) {
	var q model.Question
	if err := b.do(ctx, http.MethodGet, "/questions/daily", nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (b *httpBackend) Overview(ctx context.Context) (*model.StatsOverview, error) {
	var overview model.StatsOverview
	if err := b.do(ctx, http.MethodGet, "/stats/overview", nil, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

func (b *httpBackend) WeakAreas(ctx context.Context) ([]model.CategoryStat, error) {
	var weak []model.CategoryStat
	if err := b.do(ctx, http.MethodGet, "/stats/weak-areas", nil, &weak); err != nil {
		return nil, err
	}
	return weak, nil
}

func (b *httpBackend) CheckIn(ctx context.Context) (*model.StreakStatus, error) {
	var status model.StreakStatus
	if err := b.do(ctx, http.MethodPost, "/streak/check-in", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
