package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"prepace_backend/internal/config"
	"prepace_backend/internal/model"
	"prepace_backend/internal/repository/memory"
	"prepace_backend/internal/service"
	"prepace_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const testUserID uint = 1

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// newTestServer 用内存存储装配全部练习路由，userID 为 0 时不注入登录用户
func newTestServer(t *testing.T, userID uint) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	store.AddUser(&model.User{Name: "ada", Email: "ada@example.com", Role: model.RoleUser})
	store.AddQuestions(
		model.Question{Text: "Tell me about a failure.", Category: model.CategoryBehavioral, Difficulty: model.DifficultyMedium, SampleAnswer: "Use STAR.", IsActive: true},
		model.Question{Text: "Explain REST.", Category: model.CategoryTechnical, Difficulty: model.DifficultyEasy, IsActive: true},
	)

	events := service.NopPublisher{}
	aggregator := service.NewRecomputeAggregator(store.Answers(), store.Questions())
	feedback := service.NewFeedbackService(service.NewAIService(config.AIConfig{}), store.Answers(), store.Questions(), aggregator)
	questions := service.NewQuestionService(store.Questions(), nil, nil)

	sessions := NewSessionController(service.NewSessionService(store.Sessions(), store.Answers(), aggregator, events))
	answers := NewAnswerController(service.NewAnswerService(store.Answers(), store.Sessions(), store.Questions(), feedback, aggregator, events))
	feedbackCtl := NewFeedbackController(feedback)
	questionCtl := NewQuestionController(questions)
	stats := NewStatsController(
		service.NewStatsService(store.Answers(), store.Sessions(), store.Users(), nil),
		service.NewLeaderboardService(store.Answers(), store.Users(), nil, 0),
	)
	streak := NewStreakController(service.NewStreakService(store.Users(), store.Checkins(), events, nil))

	r := gin.New()
	api := r.Group("/api")
	if userID != 0 {
		api.Use(func(c *gin.Context) {
			c.Set(util.ContextUserKey, &util.Claims{UserID: userID, Role: model.RoleUser})
			c.Next()
		})
	}
	api.POST("/sessions", sessions.CreateSession)
	api.GET("/sessions/:id", sessions.GetSession)
	api.PATCH("/sessions/:id/complete", sessions.CompleteSession)
	api.POST("/answers", answers.SubmitAnswer)
	api.PATCH("/answers/:id/bookmark", answers.ToggleBookmark)
	api.PATCH("/answers/:id/self-rating", answers.SetSelfRating)
	api.GET("/feedback/:answerId", feedbackCtl.GetFeedback)
	api.GET("/questions/:id", questionCtl.GetQuestion)
	api.GET("/stats/overview", stats.Overview)
	api.GET("/leaderboard", stats.Leaderboard)
	api.POST("/streak/check-in", streak.CheckIn)
	return r, store
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: invalid envelope %q", method, path, w.Body.String())
	}
	return w, env
}

func decode(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v (%s)", err, env.Data)
	}
}

func TestPracticeFlow(t *testing.T) {
	r, _ := newTestServer(t, testUserID)

	w, env := doJSON(t, r, http.MethodPost, "/api/sessions", map[string]interface{}{
		"mode":        "timed",
		"categories":  []string{"behavioral"},
		"questionIds": []uint{1},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: %d %s", w.Code, env.Message)
	}
	var session model.Session
	decode(t, env, &session)

	w, env = doJSON(t, r, http.MethodPost, "/api/answers", map[string]interface{}{
		"sessionId":  session.ID,
		"questionId": 1,
		"answerText": "I shipped late once and learned to scope smaller milestones with the team every sprint",
		"timeTaken":  80,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit answer: %d %s", w.Code, env.Message)
	}
	var answer model.Answer
	decode(t, env, &answer)
	if answer.Feedback.Source != model.FeedbackFromFallback || answer.Feedback.ScoreOrZero() != 1 {
		t.Errorf("expected fallback score 1, got %+v", answer.Feedback)
	}
	if answer.TimeLimit != model.DefaultTimeLimit {
		t.Errorf("expected default time limit, got %d", answer.TimeLimit)
	}

	w, env = doJSON(t, r, http.MethodGet, "/api/feedback/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get feedback: %d", w.Code)
	}
	var detail model.FeedbackDetail
	decode(t, env, &detail)
	if detail.SampleAnswer != "Use STAR." {
		t.Errorf("sample answer missing after answering: %+v", detail)
	}

	w, env = doJSON(t, r, http.MethodPatch, "/api/sessions/1/complete", map[string]int{"totalTimeTaken": 95})
	if w.Code != http.StatusOK {
		t.Fatalf("complete: %d %s", w.Code, env.Message)
	}
	decode(t, env, &session)
	if session.Status != model.SessionCompleted || session.Answered != 1 || session.AverageScore != 1 || session.TotalTimeTaken != 95 {
		t.Errorf("unexpected completed session %+v", session)
	}

	// 重复完成是幂等的
	w, env = doJSON(t, r, http.MethodPatch, "/api/sessions/1/complete", map[string]int{"totalTimeTaken": 500})
	decode(t, env, &session)
	if w.Code != http.StatusOK || session.TotalTimeTaken != 95 {
		t.Errorf("re-complete changed the session: %d %+v", w.Code, session)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/api/answers", map[string]interface{}{
		"sessionId": session.ID, "questionId": 1, "answerText": "again",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("answer on completed session: expected 400, got %d", w.Code)
	}
}

func TestQuestionHidesSampleAnswer(t *testing.T) {
	r, _ := newTestServer(t, testUserID)
	w, env := doJSON(t, r, http.MethodGet, "/api/questions/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get question: %d", w.Code)
	}
	if strings.Contains(string(env.Data), "STAR") {
		t.Errorf("question payload leaked the sample answer: %s", env.Data)
	}
}

func TestErrorMapping(t *testing.T) {
	r, _ := newTestServer(t, testUserID)

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"unknown session", http.MethodGet, "/api/sessions/99", nil, http.StatusNotFound},
		{"bad id", http.MethodGet, "/api/sessions/abc", nil, http.StatusBadRequest},
		{"empty question list", http.MethodPost, "/api/sessions", map[string]interface{}{"mode": "timed"}, http.StatusBadRequest},
		{"bad mode", http.MethodPost, "/api/sessions", map[string]interface{}{"mode": "speed", "questionIds": []uint{1}}, http.StatusBadRequest},
		{"negative time", http.MethodPatch, "/api/sessions/1/complete", map[string]int{"totalTimeTaken": -1}, http.StatusBadRequest},
		{"unknown question", http.MethodPost, "/api/answers", map[string]interface{}{"sessionId": 1, "questionId": 77}, http.StatusNotFound},
		{"bad period", http.MethodGet, "/api/leaderboard?period=year", nil, http.StatusBadRequest},
		{"unknown feedback", http.MethodGet, "/api/feedback/5", nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := doJSON(t, r, tc.method, tc.path, tc.body)
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d (%s)", tc.want, w.Code, env.Message)
			}
			if env.Code != w.Code {
				t.Errorf("envelope code %d does not match status %d", env.Code, w.Code)
			}
		})
	}
}

func TestSelfRatingAndBookmark(t *testing.T) {
	r, _ := newTestServer(t, testUserID)
	doJSON(t, r, http.MethodPost, "/api/sessions", map[string]interface{}{"questionIds": []uint{2}})
	w, _ := doJSON(t, r, http.MethodPost, "/api/answers", map[string]interface{}{"sessionId": 1, "questionId": 2, "answerText": "stateless resources"})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPatch, "/api/answers/1/self-rating", map[string]int{"rating": 6})
	if w.Code != http.StatusBadRequest {
		t.Errorf("rating 6: expected 400, got %d", w.Code)
	}
	w, env := doJSON(t, r, http.MethodPatch, "/api/answers/1/self-rating", map[string]int{"rating": 4})
	var answer model.Answer
	decode(t, env, &answer)
	if w.Code != http.StatusOK || answer.SelfRating == nil || *answer.SelfRating != 4 {
		t.Errorf("rating 4: %d %+v", w.Code, answer.SelfRating)
	}

	_, env = doJSON(t, r, http.MethodPatch, "/api/answers/1/bookmark", nil)
	var toggled struct {
		Bookmarked bool `json:"bookmarked"`
	}
	decode(t, env, &toggled)
	if !toggled.Bookmarked {
		t.Error("first toggle should bookmark")
	}

	_, env = doJSON(t, r, http.MethodGet, "/api/stats/overview", nil)
	var overview model.StatsOverview
	decode(t, env, &overview)
	if overview.TotalAnswers != 1 || overview.BookmarkedAnswers != 1 {
		t.Errorf("unexpected overview %+v", overview)
	}
}

func TestCheckInTwiceSameDay(t *testing.T) {
	r, _ := newTestServer(t, testUserID)

	_, env := doJSON(t, r, http.MethodPost, "/api/streak/check-in", nil)
	var first model.StreakStatus
	decode(t, env, &first)
	if !first.Updated || first.CurrentStreak != 1 || first.TotalCheckins != 1 {
		t.Errorf("first check-in: %+v", first)
	}

	_, env = doJSON(t, r, http.MethodPost, "/api/streak/check-in", nil)
	var second model.StreakStatus
	decode(t, env, &second)
	if second.Updated || second.CurrentStreak != 1 || second.Message == "" {
		t.Errorf("second check-in: %+v", second)
	}
}

func TestRequiresLogin(t *testing.T) {
	r, _ := newTestServer(t, 0)
	w, _ := doJSON(t, r, http.MethodGet, "/api/stats/overview", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
