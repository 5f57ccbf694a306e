package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"prepace_backend/internal/model"
	"prepace_backend/internal/repository/memory"
)

type sessionFixture struct {
	store   *memory.Store
	answers *flakyAnswers
	events  *recordingPublisher
	svc     *SessionService
}

func newSessionFixture() *sessionFixture {
	store := memory.NewStore()
	store.AddQuestions(
		model.Question{BaseModel: model.BaseModel{ID: 1}, Text: "q1", Category: model.CategoryBehavioral, IsActive: true},
		model.Question{BaseModel: model.BaseModel{ID: 2}, Text: "q2", Category: model.CategoryTechnical, IsActive: true},
		model.Question{BaseModel: model.BaseModel{ID: 3}, Text: "q3", Category: model.CategoryHR, IsActive: true},
	)
	answers := &flakyAnswers{AnswerStore: store.Answers()}
	events := &recordingPublisher{}
	svc := NewSessionService(store.Sessions(), answers, NewRecomputeAggregator(answers, store.Questions()), events)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return &sessionFixture{store: store, answers: answers, events: events, svc: svc}
}

func (f *sessionFixture) session(t *testing.T, userID, sessionID uint) *model.Session {
	t.Helper()
	session, err := f.store.Sessions().FindByIDAndUserID(context.Background(), sessionID, userID)
	if err != nil {
		t.Fatal(err)
	}
	return session
}

func (f *sessionFixture) answer(t *testing.T, userID, sessionID, questionID uint, score *int) {
	t.Helper()
	err := f.answers.Create(context.Background(), &model.Answer{
		UserID:     userID,
		SessionID:  sessionID,
		QuestionID: questionID,
		Feedback:   model.Feedback{Score: score},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCreateSessionDefaultsAndSnapshot(t *testing.T) {
	f := newSessionFixture()
	ids := []uint{3, 1, 2}

	session, err := f.svc.CreateSession(context.Background(), 9, CreateSessionInput{QuestionIDs: ids})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.Mode != model.ModeTimed || session.Difficulty != model.DifficultyMixed {
		t.Errorf("unexpected defaults: mode=%s difficulty=%s", session.Mode, session.Difficulty)
	}
	if session.Status != model.SessionInProgress || session.TotalQuestions != 3 {
		t.Errorf("unexpected session: %+v", session)
	}

	ids[0] = 99
	if session.QuestionIDs[0] != 3 {
		t.Errorf("session snapshot shares the caller's slice")
	}
}

func TestCreateSessionValidation(t *testing.T) {
	f := newSessionFixture()
	cases := []struct {
		name  string
		input CreateSessionInput
	}{
		{"no questions", CreateSessionInput{}},
		{"bad mode", CreateSessionInput{Mode: "speedrun", QuestionIDs: []uint{1}}},
		{"bad difficulty", CreateSessionInput{Difficulty: "impossible", QuestionIDs: []uint{1}}},
		{"bad category", CreateSessionInput{Categories: []model.QuestionCategory{"cooking"}, QuestionIDs: []uint{1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateSession(context.Background(), 1, tc.input)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
	if _, total, _ := f.store.Sessions().FindByUserWithPagination(context.Background(), 1, "", 0, 10); total != 0 {
		t.Errorf("validation failures must not create sessions, got %d", total)
	}
}

func TestCompleteSessionAveragesScores(t *testing.T) {
	f := newSessionFixture()
	session, _ := f.svc.CreateSession(context.Background(), 1, CreateSessionInput{QuestionIDs: []uint{1, 2, 3}})
	f.answer(t, 1, session.ID, 1, intPtr(8))
	f.answer(t, 1, session.ID, 2, intPtr(6))
	f.answer(t, 1, session.ID, 3, intPtr(4))

	done, err := f.svc.CompleteSession(context.Background(), 1, session.ID, 300)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if done.Answered != 3 || done.AverageScore != 6.0 {
		t.Errorf("expected answered=3 avg=6.0, got answered=%d avg=%v", done.Answered, done.AverageScore)
	}
	if done.Status != model.SessionCompleted || done.CompletedAt == nil || done.TotalTimeTaken != 300 {
		t.Errorf("unexpected completed session: %+v", done)
	}
	if got := f.events.types(); len(got) != 1 || got[0] != EventSessionCompleted {
		t.Errorf("unexpected events: %v", got)
	}
}

func TestCompleteSessionMissingScoreCountsAsZero(t *testing.T) {
	f := newSessionFixture()
	session, _ := f.svc.CreateSession(context.Background(), 1, CreateSessionInput{QuestionIDs: []uint{1, 2}})
	f.answer(t, 1, session.ID, 1, intPtr(7))
	f.answer(t, 1, session.ID, 2, nil)

	done, err := f.svc.CompleteSession(context.Background(), 1, session.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if done.AverageScore != 3.5 {
		t.Errorf("expected 3.5, got %v", done.AverageScore)
	}
}

func TestCompleteSessionWithoutAnswers(t *testing.T) {
	f := newSessionFixture()
	session, _ := f.svc.CreateSession(context.Background(), 1, CreateSessionInput{QuestionIDs: []uint{1}})

	done, err := f.svc.CompleteSession(context.Background(), 1, session.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if done.Answered != 0 || done.AverageScore != 0 {
		t.Errorf("expected zero summary, got %+v", done)
	}
}

func TestTerminalSessionsAreIdempotent(t *testing.T) {
	f := newSessionFixture()
	session, _ := f.svc.CreateSession(context.Background(), 1, CreateSessionInput{QuestionIDs: []uint{1}})

	abandoned, err := f.svc.AbandonSession(context.Background(), 1, session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if abandoned.Status != model.SessionAbandoned {
		t.Fatalf("expected abandoned, got %s", abandoned.Status)
	}

	again, err := f.svc.CompleteSession(context.Background(), 1, session.ID, 50)
	if err != nil {
		t.Fatal(err)
	}
	if again.Status != model.SessionAbandoned || again.TotalTimeTaken != 0 {
		t.Errorf("terminal session changed: %+v", again)
	}
	if got := f.events.types(); len(got) != 1 || got[0] != EventSessionAbandoned {
		t.Errorf("expected a single abandon event, got %v", got)
	}
}

func TestCompleteSessionErrors(t *testing.T) {
	f := newSessionFixture()
	session, _ := f.svc.CreateSession(context.Background(), 1, CreateSessionInput{QuestionIDs: []uint{1}})

	var nf *NotFoundError
	if _, err := f.svc.CompleteSession(context.Background(), 2, session.ID, 0); !errors.As(err, &nf) {
		t.Errorf("other user's session: expected NotFoundError, got %v", err)
	}
	var ve *ValidationError
	if _, err := f.svc.CompleteSession(context.Background(), 1, session.ID, -5); !errors.As(err, &ve) {
		t.Errorf("negative time: expected ValidationError, got %v", err)
	}

	f.answers.fail = errStore
	var af *AggregationFailure
	if _, err := f.svc.CompleteSession(context.Background(), 1, session.ID, 0); !errors.As(err, &af) {
		t.Errorf("store failure: expected AggregationFailure, got %v", err)
	}
	if f.session(t, 1, session.ID).Status != model.SessionInProgress {
		t.Errorf("failed completion must leave the session in progress")
	}
}

func TestGetSessionIncludesAnswers(t *testing.T) {
	f := newSessionFixture()
	session, _ := f.svc.CreateSession(context.Background(), 1, CreateSessionInput{QuestionIDs: []uint{1, 2}})
	f.answer(t, 1, session.ID, 1, intPtr(5))

	detail, err := f.svc.GetSession(context.Background(), 1, session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Answers) != 1 || detail.Session.ID != session.ID {
		t.Errorf("unexpected detail: %+v", detail)
	}
}

func TestListSessionsRejectsUnknownStatus(t *testing.T) {
	f := newSessionFixture()
	var ve *ValidationError
	if _, _, err := f.svc.ListSessions(context.Background(), 1, "paused", 1, 10); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRefreshQuestionRecomputesAggregate(t *testing.T) {
	f := newSessionFixture()
	agg := NewRecomputeAggregator(f.answers, f.store.Questions())
	f.answer(t, 1, 1, 2, intPtr(9))
	f.answer(t, 2, 2, 2, intPtr(4))
	f.answer(t, 3, 3, 2, nil)

	if err := agg.RefreshQuestion(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	q := questionByID(t, f.store, 2)
	if q.TimesAttempted != 3 || q.AverageScore != 4.33 {
		t.Errorf("expected 3 attempts avg 4.33, got %d / %v", q.TimesAttempted, q.AverageScore)
	}
}

func TestRefreshAllCoversActiveQuestions(t *testing.T) {
	f := newSessionFixture()
	f.store.AddQuestions(model.Question{BaseModel: model.BaseModel{ID: 3}, Text: "q3", Category: model.CategoryHR, TimesAttempted: 99})
	agg := NewRecomputeAggregator(f.answers, f.store.Questions())
	f.answer(t, 1, 1, 1, intPtr(8))

	n, err := agg.RefreshAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 active questions refreshed, got %d", n)
	}
	if q := questionByID(t, f.store, 1); q.TimesAttempted != 1 || q.AverageScore != 8 {
		t.Errorf("question 1 not recomputed: %+v", q)
	}
	if questionByID(t, f.store, 3).TimesAttempted != 99 {
		t.Error("inactive question should be left alone")
	}
}
