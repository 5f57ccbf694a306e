package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"prepace_backend/internal/model"
	"prepace_backend/internal/repository/memory"
)

func TestParsePeriod(t *testing.T) {
	cases := map[string]LeaderboardPeriod{
		"":      PeriodWeek,
		"week":  PeriodWeek,
		"MONTH": PeriodMonth,
		"all":   PeriodAll,
	}
	for in, want := range cases {
		got, err := ParsePeriod(in)
		if err != nil || got != want {
			t.Errorf("ParsePeriod(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	var ve *ValidationError
	if _, err := ParsePeriod("year"); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for unknown period, got %v", err)
	}
}

func TestPeriodSince(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	if PeriodAll.Since(now) != nil {
		t.Errorf("all-time window must be unbounded")
	}
	if got := PeriodWeek.Since(now); !got.Equal(now.AddDate(0, 0, -7)) {
		t.Errorf("week window starts at %v", got)
	}
	if got := PeriodMonth.Since(now); !got.Equal(now.AddDate(0, 0, -30)) {
		t.Errorf("month window starts at %v", got)
	}
}

func TestRankByAverage(t *testing.T) {
	now := time.Now()
	var rows []model.ScoredAnswer
	add := func(userID uint, scores ...int) {
		for _, s := range scores {
			rows = append(rows, scored(userID, model.CategoryHR, intPtr(s), now))
		}
	}
	add(1, 10, 10)     // 作答不足 3 次
	add(2, 8, 8, 8)    // 8.0, 3
	add(3, 8, 8, 8, 8) // 8.0, 4
	add(4, 5, 6, 7)    // 6.0
	add(5, 8, 8, 8)    // 8.0, 3，ID 更大
	rows = append(rows, scored(6, model.CategoryHR, nil, now), scored(6, model.CategoryHR, nil, now), scored(6, model.CategoryHR, intPtr(9), now))

	entries := rankByAverage(rows)

	wantOrder := []uint{3, 2, 5, 4}
	if len(entries) != len(wantOrder) {
		t.Fatalf("expected %d entries, got %+v", len(wantOrder), entries)
	}
	for i, id := range wantOrder {
		if entries[i].UserID != id || entries[i].Rank != i+1 {
			t.Errorf("position %d: got user %d rank %d, want user %d", i, entries[i].UserID, entries[i].Rank, id)
		}
	}
}

func TestRankByAverageTopTen(t *testing.T) {
	now := time.Now()
	var rows []model.ScoredAnswer
	for u := uint(1); u <= 15; u++ {
		for i := 0; i < 3; i++ {
			rows = append(rows, scored(u, model.CategoryHR, intPtr(int(u%10)), now))
		}
	}
	if got := rankByAverage(rows); len(got) != LeaderboardSize {
		t.Errorf("expected %d entries, got %d", LeaderboardSize, len(got))
	}
}

func TestLeaderboardAttachesUsers(t *testing.T) {
	store := questionBank(1)
	store.AddUser(&model.User{BaseModel: model.BaseModel{ID: 1}, Name: "Ada", Avatar: "a.png", CurrentStreak: 4})
	ctx := context.Background()
	for _, s := range []int{7, 8, 9} {
		_ = store.Answers().Create(ctx, &model.Answer{UserID: 1, QuestionID: 1, Feedback: model.Feedback{Score: intPtr(s)}})
	}

	cache := &mapCache{}
	svc := NewLeaderboardService(store.Answers(), store.Users(), cache, time.Minute)
	entries, err := svc.Leaderboard(ctx, PeriodWeek)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].User == nil || entries[0].User.Name != "Ada" || entries[0].AvgScore != 8 {
		t.Fatalf("unexpected leaderboard: %+v", entries)
	}
	if entries[0].User.CurrentStreak != 4 {
		t.Errorf("streak not attached: %+v", entries[0].User)
	}
	if cache.sets != 1 {
		t.Errorf("expected leaderboard to be cached once, got %d", cache.sets)
	}
}

func TestStreakLeaderboard(t *testing.T) {
	store := memory.NewStore()
	store.AddUser(&model.User{BaseModel: model.BaseModel{ID: 1}, CurrentStreak: 2})
	store.AddUser(&model.User{BaseModel: model.BaseModel{ID: 2}, CurrentStreak: 0})
	store.AddUser(&model.User{BaseModel: model.BaseModel{ID: 3}, CurrentStreak: 9})
	svc := NewLeaderboardService(store.Answers(), store.Users(), nil, time.Minute)

	entries, err := svc.StreakLeaderboard(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].UserID != 3 || entries[1].UserID != 1 {
		t.Errorf("unexpected streak leaderboard: %+v", entries)
	}
}
