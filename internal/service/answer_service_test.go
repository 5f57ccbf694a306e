package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"prepace_backend/internal/model"
	"prepace_backend/internal/repository"
	"prepace_backend/internal/repository/memory"
)

type answerFixture struct {
	store   *memory.Store
	answers *flakyAnswers
	events  *recordingPublisher
	svc     *AnswerService
	session *model.Session
}

func newAnswerFixture(t *testing.T) *answerFixture {
	t.Helper()
	store := memory.NewStore()
	store.AddQuestions(
		model.Question{BaseModel: model.BaseModel{ID: 1}, Text: "Describe a failure.", Category: model.CategoryBehavioral, TimeLimit: 90, IsActive: true},
		model.Question{BaseModel: model.BaseModel{ID: 2}, Text: "Explain HTTP caching.", Category: model.CategoryTechnical, IsActive: true},
		model.Question{BaseModel: model.BaseModel{ID: 3}, Text: "Not in session.", Category: model.CategoryHR, IsActive: true},
	)
	answers := &flakyAnswers{AnswerStore: store.Answers()}
	events := &recordingPublisher{}
	aggregator := NewRecomputeAggregator(answers, store.Questions())
	feedback := NewFeedbackService(nil, answers, store.Questions(), aggregator)
	svc := NewAnswerService(answers, store.Sessions(), store.Questions(), feedback, aggregator, events)

	session := &model.Session{UserID: 1, QuestionIDs: []uint{1, 2}, Status: model.SessionInProgress}
	if err := store.Sessions().Create(context.Background(), session); err != nil {
		t.Fatal(err)
	}
	return &answerFixture{store: store, answers: answers, events: events, svc: svc, session: session}
}

func (f *answerFixture) addSession(t *testing.T, session *model.Session) *model.Session {
	t.Helper()
	if err := f.store.Sessions().Create(context.Background(), session); err != nil {
		t.Fatal(err)
	}
	return session
}

func TestSubmitAnswerScoresAndAggregates(t *testing.T) {
	f := newAnswerFixture(t)
	text := strings.TrimSpace(strings.Repeat("word ", 25))

	answer, err := f.svc.SubmitAnswer(context.Background(), 1, SubmitAnswerInput{
		SessionID:  f.session.ID,
		QuestionID: 1,
		AnswerText: text,
		TimeTaken:  45,
	})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if answer.Feedback.ScoreOrZero() != 2 || answer.Feedback.Summary != FallbackSummary {
		t.Errorf("unexpected feedback: %+v", answer.Feedback)
	}
	if answer.AnswerSource != model.SourceText || answer.TimeLimit != 90 {
		t.Errorf("defaults not applied: source=%s limit=%d", answer.AnswerSource, answer.TimeLimit)
	}

	q := questionByID(t, f.store, 1)
	if q.TimesAttempted != 1 || q.AverageScore != 2 {
		t.Errorf("question aggregate not refreshed: %+v", q)
	}
	if got := f.events.types(); len(got) != 1 || got[0] != EventAnswerScored {
		t.Errorf("unexpected events: %v", got)
	}
}

func TestSubmitAnswerTimedOutWithoutText(t *testing.T) {
	f := newAnswerFixture(t)
	answer, err := f.svc.SubmitAnswer(context.Background(), 1, SubmitAnswerInput{
		SessionID:  f.session.ID,
		QuestionID: 2,
		TimeTaken:  120,
		TimedOut:   true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !answer.TimedOut || answer.TimeLimit != model.DefaultTimeLimit || answer.Feedback.ScoreOrZero() != 1 {
		t.Errorf("unexpected timed-out answer: %+v", answer)
	}
}

func TestSubmitAnswerRejections(t *testing.T) {
	f := newAnswerFixture(t)
	other := f.addSession(t, &model.Session{UserID: 2, QuestionIDs: []uint{1}, Status: model.SessionInProgress})
	done := f.addSession(t, &model.Session{UserID: 1, QuestionIDs: []uint{1}, Status: model.SessionCompleted})

	cases := []struct {
		name     string
		input    SubmitAnswerInput
		notFound bool
	}{
		{"missing session", SubmitAnswerInput{QuestionID: 1}, false},
		{"missing question", SubmitAnswerInput{SessionID: f.session.ID}, false},
		{"negative time", SubmitAnswerInput{SessionID: f.session.ID, QuestionID: 1, TimeTaken: -1}, false},
		{"bad source", SubmitAnswerInput{SessionID: f.session.ID, QuestionID: 1, AnswerSource: "fax"}, false},
		{"unknown question", SubmitAnswerInput{SessionID: f.session.ID, QuestionID: 42}, true},
		{"other user's session", SubmitAnswerInput{SessionID: other.ID, QuestionID: 1}, true},
		{"terminal session", SubmitAnswerInput{SessionID: done.ID, QuestionID: 1}, false},
		{"question outside snapshot", SubmitAnswerInput{SessionID: f.session.ID, QuestionID: 3}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.SubmitAnswer(context.Background(), 1, tc.input)
			if tc.notFound {
				var nf *NotFoundError
				if !errors.As(err, &nf) {
					t.Fatalf("expected NotFoundError, got %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
	if rows := storedAnswers(t, f.store); len(rows) != 0 {
		t.Errorf("rejected submissions must not persist answers, got %d", len(rows))
	}
}

type stubProber struct{ seconds float64 }

func (p stubProber) Duration(string) (float64, error) { return p.seconds, nil }

type capturingStorage struct {
	key     string
	body    string
	deleted []string
}

func (s *capturingStorage) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.key = key
	s.body = string(data)
	return "/uploads/" + key, nil
}

func (s *capturingStorage) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func wavRecording() VoiceRecording {
	return VoiceRecording{Reader: strings.NewReader("RIFF-audio"), Filename: "take.WAV", Size: 10, ContentType: "audio/wav"}
}

func TestSubmitVoiceAnswer(t *testing.T) {
	f := newAnswerFixture(t)
	storage := &capturingStorage{}
	f.svc.Storage = storage
	f.svc.Prober = stubProber{seconds: 12.5}

	answer, err := f.svc.SubmitVoiceAnswer(context.Background(), 1,
		SubmitAnswerInput{SessionID: f.session.ID, QuestionID: 1, AnswerText: "transcribed text", TimeTaken: 30},
		wavRecording(),
	)
	if err != nil {
		t.Fatalf("SubmitVoiceAnswer: %v", err)
	}
	if answer.AnswerSource != model.SourceVoice || answer.AudioDuration != 12.5 {
		t.Errorf("unexpected voice answer: %+v", answer)
	}
	if !strings.HasPrefix(storage.key, "recordings/") || !strings.HasSuffix(storage.key, ".wav") {
		t.Errorf("unexpected storage key %q", storage.key)
	}
	if storage.body != "RIFF-audio" || answer.AudioURL != "/uploads/"+storage.key {
		t.Errorf("recording not uploaded intact: body=%q url=%q", storage.body, answer.AudioURL)
	}
	if len(storage.deleted) != 0 {
		t.Errorf("stored recording must be kept, deleted %v", storage.deleted)
	}
}

func TestSubmitVoiceAnswerRejectedBeforeUpload(t *testing.T) {
	f := newAnswerFixture(t)
	other := f.addSession(t, &model.Session{UserID: 2, QuestionIDs: []uint{1}, Status: model.SessionInProgress})
	done := f.addSession(t, &model.Session{UserID: 1, QuestionIDs: []uint{1}, Status: model.SessionAbandoned})

	cases := []struct {
		name  string
		input SubmitAnswerInput
	}{
		{"question outside snapshot", SubmitAnswerInput{SessionID: f.session.ID, QuestionID: 3}},
		{"unknown question", SubmitAnswerInput{SessionID: f.session.ID, QuestionID: 42}},
		{"other user's session", SubmitAnswerInput{SessionID: other.ID, QuestionID: 1}},
		{"terminal session", SubmitAnswerInput{SessionID: done.ID, QuestionID: 1}},
		{"negative time", SubmitAnswerInput{SessionID: f.session.ID, QuestionID: 1, TimeTaken: -3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			storage := &capturingStorage{}
			f.svc.Storage = storage

			_, err := f.svc.SubmitVoiceAnswer(context.Background(), 1, tc.input, wavRecording())

			var ve *ValidationError
			var nf *NotFoundError
			if !errors.As(err, &ve) && !errors.As(err, &nf) {
				t.Fatalf("expected a validation or not-found error, got %v", err)
			}
			if storage.key != "" {
				t.Errorf("rejected submission uploaded %q", storage.key)
			}
		})
	}
	if rows := storedAnswers(t, f.store); len(rows) != 0 {
		t.Errorf("rejected submissions must not persist answers, got %d", len(rows))
	}
}

func TestSubmitVoiceAnswerRemovesRecordingWhenSaveFails(t *testing.T) {
	f := newAnswerFixture(t)
	storage := &capturingStorage{}
	f.svc.Storage = storage
	f.answers.failCreate = errStore

	_, err := f.svc.SubmitVoiceAnswer(context.Background(), 1,
		SubmitAnswerInput{SessionID: f.session.ID, QuestionID: 1, AnswerText: "text"},
		wavRecording(),
	)
	if !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if storage.key == "" || len(storage.deleted) != 1 || storage.deleted[0] != storage.key {
		t.Errorf("uploaded recording %q not removed, deleted %v", storage.key, storage.deleted)
	}
}

func TestSubmitVoiceAnswerTooLarge(t *testing.T) {
	f := newAnswerFixture(t)
	storage := &capturingStorage{}
	f.svc.Storage = storage
	f.svc.MaxRecordingMB = 1

	var ve *ValidationError
	_, err := f.svc.SubmitVoiceAnswer(context.Background(), 1,
		SubmitAnswerInput{SessionID: f.session.ID, QuestionID: 1},
		VoiceRecording{Reader: strings.NewReader("x"), Filename: "a.mp3", Size: 2 << 20},
	)
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if storage.key != "" {
		t.Errorf("oversized recording was uploaded")
	}
}

func TestBookmarkAndSelfRating(t *testing.T) {
	f := newAnswerFixture(t)
	answer, err := f.svc.SubmitAnswer(context.Background(), 1, SubmitAnswerInput{SessionID: f.session.ID, QuestionID: 1, AnswerText: "hi"})
	if err != nil {
		t.Fatal(err)
	}

	on, err := f.svc.ToggleBookmark(context.Background(), 1, answer.ID)
	if err != nil || !on {
		t.Fatalf("first toggle: %v %v", on, err)
	}
	off, err := f.svc.ToggleBookmark(context.Background(), 1, answer.ID)
	if err != nil || off {
		t.Fatalf("second toggle: %v %v", off, err)
	}

	for _, bad := range []int{0, 6} {
		var ve *ValidationError
		if _, err := f.svc.SetSelfRating(context.Background(), 1, answer.ID, bad); !errors.As(err, &ve) {
			t.Errorf("rating %d: expected ValidationError, got %v", bad, err)
		}
	}
	rated, err := f.svc.SetSelfRating(context.Background(), 1, answer.ID, 4)
	if err != nil || rated.SelfRating == nil || *rated.SelfRating != 4 {
		t.Fatalf("SetSelfRating: %+v %v", rated, err)
	}

	var nf *NotFoundError
	if _, err := f.svc.ToggleBookmark(context.Background(), 2, answer.ID); !errors.As(err, &nf) {
		t.Errorf("other user's answer: expected NotFoundError, got %v", err)
	}

	_, _ = f.svc.ToggleBookmark(context.Background(), 1, answer.ID)
	list, total, err := f.svc.ListAnswers(context.Background(), 1, repository.AnswerFilter{BookmarkedOnly: true}, 1, 10)
	if err != nil || total != 1 || len(list) != 1 {
		t.Errorf("bookmarked filter: total=%d len=%d err=%v", total, len(list), err)
	}
}
