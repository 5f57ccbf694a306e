package service

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"prepace_backend/internal/model"
	"prepace_backend/internal/repository"
	"prepace_backend/internal/util"
	"prepace_backend/pkg/logger"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

const (
	DefaultRandomCount = 5
	MaxRandomCount     = 50
)

type QuestionService struct {
	Questions QuestionStore
	Cache     Cache
	Location  *time.Location

	mu   sync.Mutex
	rng  *rand.Rand
	intn func(n int) int
	now  func() time.Time
}

func NewQuestionService(questions QuestionStore, cache Cache, loc *time.Location) *QuestionService {
	if cache == nil {
		cache = nopCache{}
	}
	if loc == nil {
		loc = time.Local
	}
	s := &QuestionService{
		Questions: questions,
		Cache:     cache,
		Location:  loc,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
	s.intn = s.lockedIntn
	return s
}

// rand.Rand 不是并发安全的
func (s *QuestionService) lockedIntn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func questionFilter(category model.QuestionCategory, difficulty model.Difficulty) (repository.QuestionFilter, error) {
	if category != "" && !category.Valid() {
		return repository.QuestionFilter{}, validationf("invalid category: %s", category)
	}
	if difficulty == model.DifficultyMixed {
		difficulty = ""
	}
	if difficulty != "" && !difficulty.Valid() {
		return repository.QuestionFilter{}, validationf("invalid difficulty: %s", difficulty)
	}
	return repository.QuestionFilter{Category: category, Difficulty: difficulty}, nil
}

// SelectRandomQuestions 不放回地均匀抽取 count 道题，题库不足时返回全部可用题目
func (s *QuestionService) SelectRandomQuestions(ctx context.Context, count int, category model.QuestionCategory, difficulty model.Difficulty) ([]model.Question, error) {
	if count == 0 {
		count = DefaultRandomCount
	}
	if count < 1 || count > MaxRandomCount {
		return nil, validationf("count must be between 1 and %d", MaxRandomCount)
	}
	filter, err := questionFilter(category, difficulty)
	if err != nil {
		return nil, err
	}

	pool, err := s.Questions.FindActiveIDs(ctx, filter)
	if err != nil {
		return nil, err
	}
	picked := samplePool(pool, count, s.intn)
	if len(picked) == 0 {
		return []model.Question{}, nil
	}
	return s.Questions.FindByIDs(ctx, picked)
}

// samplePool 部分 Fisher-Yates：只打乱前 count 个位置，不修改传入的切片
func samplePool(pool []uint, count int, intn func(int) int) []uint {
	ids := append([]uint(nil), pool...)
	if count > len(ids) {
		count = len(ids)
	}
	for i := 0; i < count; i++ {
		j := i + intn(len(ids)-i)
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids[:count]
}

// DailyIndex 同一天、同一题库总数下结果固定
func DailyIndex(day time.Time, total int) int {
	if total <= 0 {
		return -1
	}
	return day.YearDay() % total
}

// SelectDailyQuestion 按 ID 升序取第 DailyIndex 道启用中的题目
func (s *QuestionService) SelectDailyQuestion(ctx context.Context, day time.Time) (*model.Question, error) {
	if day.IsZero() {
		day = s.now()
	}
	day = day.In(s.Location)

	ids, err := s.Questions.FindActiveIDs(ctx, repository.QuestionFilter{})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, &NotFoundError{Resource: "question"}
	}

	// 启用题目集合一变 key 就变，题目替换但总数不变时缓存也会失效
	key := fmt.Sprintf("daily:%s:%016x", day.Format(util.DateFormat), activeSetDigest(ids))
	var cached model.Question
	if hit, err := s.Cache.Get(ctx, key, &cached); err != nil {
		logger.Log.Warn("read daily question cache failed", zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	question, err := s.Questions.FindByID(ctx, ids[DailyIndex(day, len(ids))])
	if err != nil {
		return nil, lookupErr(err, "question")
	}
	if err := s.Cache.Set(ctx, key, question, 24*time.Hour); err != nil {
		logger.Log.Warn("write daily question cache failed", zap.Error(err))
	}
	return question, nil
}

func activeSetDigest(ids []uint) uint64 {
	h := xxhash.New()
	buf := make([]byte, 8)
	for _, id := range ids {
		binary.LittleEndian.PutUint64(buf, uint64(id))
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}

// ListQuestions tags 非空时只返回带有其中任一标签的题目
func (s *QuestionService) ListQuestions(ctx context.Context, category model.QuestionCategory, difficulty model.Difficulty, tags []string, page, limit int) ([]model.Question, int64, error) {
	filter, err := questionFilter(category, difficulty)
	if err != nil {
		return nil, 0, err
	}
	filter.Tags = tags
	offset, limit := pageBounds(page, limit)
	return s.Questions.FindActiveWithPagination(ctx, filter, offset, limit)
}

func (s *QuestionService) GetQuestion(ctx context.Context, id uint) (*model.Question, error) {
	question, err := s.Questions.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "question")
	}
	return question, nil
}
