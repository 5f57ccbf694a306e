// Package memory 提供进程内的存储实现，供离线练习和测试使用。
// 语义与 gorm 仓库一致：找不到记录时返回 gorm.ErrRecordNotFound
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"prepace_backend/internal/model"
	"prepace_backend/internal/repository"

	"gorm.io/gorm"
)

type Store struct {
	mu        sync.RWMutex
	now       func() time.Time
	users     map[uint]*model.User
	questions map[uint]*model.Question
	sessions  map[uint]*model.Session
	answers   map[uint]*model.Answer
	checkins  []model.Checkin

	// 每张表独立自增
	seq map[string]uint
}

func NewStore() *Store {
	return &Store{
		now:       time.Now,
		users:     make(map[uint]*model.User),
		questions: make(map[uint]*model.Question),
		sessions:  make(map[uint]*model.Session),
		answers:   make(map[uint]*model.Answer),
		seq:       make(map[string]uint),
	}
}

func (s *Store) stamp(table string, base *model.BaseModel) {
	now := s.now()
	if base.ID == 0 {
		s.seq[table]++
		base.ID = s.seq[table]
	} else if base.ID > s.seq[table] {
		s.seq[table] = base.ID
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

// AddUser 用户由认证服务维护，这里只提供写入入口
func (s *Store) AddUser(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp("users", &user.BaseModel)
	cp := *user
	s.users[user.ID] = &cp
}

func (s *Store) AddQuestions(questions ...model.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range questions {
		s.stamp("questions", &questions[i].BaseModel)
		cp := questions[i]
		s.questions[cp.ID] = &cp
	}
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// Questions 题目存储视图
func (s *Store) Questions() *QuestionStore { return &QuestionStore{s} }

// Sessions 会话存储视图
func (s *Store) Sessions() *SessionStore { return &SessionStore{s} }

// Answers 作答存储视图
func (s *Store) Answers() *AnswerStore { return &AnswerStore{s} }

// Users 用户存储视图
func (s *Store) Users() *UserStore { return &UserStore{s} }

// Checkins 打卡存储视图
func (s *Store) Checkins() *CheckinStore { return &CheckinStore{s} }

type QuestionStore struct{ s *Store }

func (q *QuestionStore) active(filter repository.QuestionFilter) []model.Question {
	var out []model.Question
	for _, item := range q.s.questions {
		if !item.IsActive {
			continue
		}
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.Difficulty != "" && item.Difficulty != filter.Difficulty {
			continue
		}
		if len(filter.Tags) > 0 && !hasAnyTag(item.Tags, filter.Tags) {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func hasAnyTag(tags, wanted []string) bool {
	for _, t := range tags {
		for _, w := range wanted {
			if t == w {
				return true
			}
		}
	}
	return false
}

func (q *QuestionStore) FindByID(_ context.Context, id uint) (*model.Question, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()
	item, ok := q.s.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *item
	return &cp, nil
}

func (q *QuestionStore) FindByIDs(_ context.Context, ids []uint) ([]model.Question, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()
	out := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if item, ok := q.s.questions[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (q *QuestionStore) FindActiveIDs(_ context.Context, filter repository.QuestionFilter) ([]uint, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()
	active := q.active(filter)
	ids := make([]uint, 0, len(active))
	for _, item := range active {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

func (q *QuestionStore) FindActiveWithPagination(_ context.Context, filter repository.QuestionFilter, offset, limit int) ([]model.Question, int64, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()
	active := q.active(filter)
	return page(active, offset, limit), int64(len(active)), nil
}

func (q *QuestionStore) UpdateAggregate(_ context.Context, id uint, timesAttempted int, averageScore float64) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	item, ok := q.s.questions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.TimesAttempted = timesAttempted
	item.AverageScore = averageScore
	return nil
}

type SessionStore struct{ s *Store }

func (ss *SessionStore) Create(_ context.Context, session *model.Session) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	ss.s.stamp("sessions", &session.BaseModel)
	cp := *session
	ss.s.sessions[session.ID] = &cp
	return nil
}

func (ss *SessionStore) FindByIDAndUserID(_ context.Context, sessionID, userID uint) (*model.Session, error) {
	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()
	item, ok := ss.s.sessions[sessionID]
	if !ok || item.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *item
	return &cp, nil
}

func (ss *SessionStore) Update(_ context.Context, session *model.Session) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	if _, ok := ss.s.sessions[session.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	session.UpdatedAt = ss.s.now()
	cp := *session
	ss.s.sessions[session.ID] = &cp
	return nil
}

func (ss *SessionStore) FindByUserWithPagination(_ context.Context, userID uint, status model.SessionStatus, offset, limit int) ([]model.Session, int64, error) {
	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()
	var out []model.Session
	for _, item := range ss.s.sessions {
		if item.UserID == userID && (status == "" || item.Status == status) {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, offset, limit), int64(len(out)), nil
}

func (ss *SessionStore) CountCompletedByUser(_ context.Context, userID uint) (int64, error) {
	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()
	var n int64
	for _, item := range ss.s.sessions {
		if item.UserID == userID && item.Status == model.SessionCompleted {
			n++
		}
	}
	return n, nil
}

type AnswerStore struct{ s *Store }

func (a *AnswerStore) sorted(match func(*model.Answer) bool) []model.Answer {
	var out []model.Answer
	for _, item := range a.s.answers {
		if match(item) {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (a *AnswerStore) Create(_ context.Context, answer *model.Answer) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.stamp("answers", &answer.BaseModel)
	cp := *answer
	cp.Question = nil
	a.s.answers[answer.ID] = &cp
	return nil
}

func (a *AnswerStore) FindByIDAndUserID(_ context.Context, answerID, userID uint) (*model.Answer, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	item, ok := a.s.answers[answerID]
	if !ok || item.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *item
	if q, ok := a.s.questions[item.QuestionID]; ok {
		qc := *q
		cp.Question = &qc
	}
	return &cp, nil
}

func (a *AnswerStore) FindBySession(_ context.Context, sessionID uint) ([]model.Answer, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return a.sorted(func(item *model.Answer) bool { return item.SessionID == sessionID }), nil
}

func (a *AnswerStore) FindByQuestion(_ context.Context, questionID uint) ([]model.Answer, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return a.sorted(func(item *model.Answer) bool { return item.QuestionID == questionID }), nil
}

func (a *AnswerStore) FindByUserWithPagination(_ context.Context, userID uint, filter repository.AnswerFilter, offset, limit int) ([]model.Answer, int64, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	out := a.sorted(func(item *model.Answer) bool {
		if item.UserID != userID {
			return false
		}
		if filter.QuestionID != 0 && item.QuestionID != filter.QuestionID {
			return false
		}
		return !filter.BookmarkedOnly || item.Bookmarked
	})
	// 最新的在前
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, offset, limit), int64(len(out)), nil
}

func (a *AnswerStore) update(answerID uint, apply func(*model.Answer)) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	item, ok := a.s.answers[answerID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	apply(item)
	item.UpdatedAt = a.s.now()
	return nil
}

func (a *AnswerStore) ReplaceFeedback(_ context.Context, answerID uint, feedback model.Feedback) error {
	return a.update(answerID, func(item *model.Answer) { item.Feedback = feedback })
}

func (a *AnswerStore) UpdateBookmark(_ context.Context, answerID uint, bookmarked bool) error {
	return a.update(answerID, func(item *model.Answer) { item.Bookmarked = bookmarked })
}

func (a *AnswerStore) UpdateSelfRating(_ context.Context, answerID uint, rating int) error {
	return a.update(answerID, func(item *model.Answer) { item.SelfRating = &rating })
}

func (a *AnswerStore) scored(match func(*model.Answer) bool) []model.ScoredAnswer {
	var out []model.ScoredAnswer
	for _, item := range a.sorted(match) {
		q, ok := a.s.questions[item.QuestionID]
		if !ok {
			continue
		}
		out = append(out, model.ScoredAnswer{
			AnswerID:   item.ID,
			UserID:     item.UserID,
			QuestionID: item.QuestionID,
			Category:   q.Category,
			Score:      item.Feedback.Score,
			Bookmarked: item.Bookmarked,
			CreatedAt:  item.CreatedAt,
		})
	}
	return out
}

func (a *AnswerStore) FindScoredByUser(_ context.Context, userID uint, since *time.Time) ([]model.ScoredAnswer, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return a.scored(func(item *model.Answer) bool {
		return item.UserID == userID && (since == nil || !item.CreatedAt.Before(*since))
	}), nil
}

func (a *AnswerStore) FindScoredSince(_ context.Context, since *time.Time) ([]model.ScoredAnswer, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return a.scored(func(item *model.Answer) bool {
		return since == nil || !item.CreatedAt.Before(*since)
	}), nil
}

type UserStore struct{ s *Store }

func (u *UserStore) FindByID(_ context.Context, id uint) (*model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	item, ok := u.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *item
	return &cp, nil
}

func (u *UserStore) FindByIDs(_ context.Context, ids []uint) ([]model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	var out []model.User
	for _, id := range ids {
		if item, ok := u.s.users[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (u *UserStore) UpdateStreak(_ context.Context, user *model.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	item, ok := u.s.users[user.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.CurrentStreak = user.CurrentStreak
	item.LongestStreak = user.LongestStreak
	item.LastActiveDate = user.LastActiveDate
	return nil
}

func (u *UserStore) FindTopByStreak(_ context.Context, limit int) ([]model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	var out []model.User
	for _, item := range u.s.users {
		if item.CurrentStreak > 0 {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrentStreak != out[j].CurrentStreak {
			return out[i].CurrentStreak > out[j].CurrentStreak
		}
		return out[i].ID < out[j].ID
	})
	return page(out, 0, limit), nil
}

type CheckinStore struct{ s *Store }

func (c *CheckinStore) Create(_ context.Context, checkin *model.Checkin) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.stamp("checkins", &checkin.BaseModel)
	c.s.checkins = append(c.s.checkins, *checkin)
	return nil
}

func (c *CheckinStore) CountByUser(_ context.Context, userID uint) (int64, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	var n int64
	for _, item := range c.s.checkins {
		if item.UserID == userID {
			n++
		}
	}
	return n, nil
}
