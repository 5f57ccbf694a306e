package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"prepace_backend/internal/model"
	"prepace_backend/internal/repository"
	"prepace_backend/internal/util"
	"prepace_backend/pkg/logger"

	"go.uber.org/zap"
)

// AudioProber 读取录音时长（秒）
type AudioProber interface {
	Duration(path string) (float64, error)
}

// RecordingStorage 录音文件上传，作答保存失败时删除已上传的文件
type RecordingStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// FFprobeProber 基于 ffmpeg-go 的 Probe
type FFprobeProber struct{}

func (FFprobeProber) Duration(path string) (float64, error) {
	info, err := util.GetAudioInfo(path)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

type AnswerService struct {
	Answers    AnswerStore
	Sessions   SessionStore
	Questions  QuestionStore
	Feedback   *FeedbackService
	Aggregator Aggregator
	Events     EventPublisher

	Storage        RecordingStorage
	Prober         AudioProber
	MaxRecordingMB int
}

func NewAnswerService(answers AnswerStore, sessions SessionStore, questions QuestionStore, feedback *FeedbackService, aggregator Aggregator, events EventPublisher) *AnswerService {
	return &AnswerService{
		Answers:    answers,
		Sessions:   sessions,
		Questions:  questions,
		Feedback:   feedback,
		Aggregator: aggregator,
		Events:     events,
		Prober:     FFprobeProber{},
	}
}

type SubmitAnswerInput struct {
	SessionID    uint               `json:"sessionId"`
	QuestionID   uint               `json:"questionId"`
	AnswerText   string             `json:"answerText"`
	AnswerSource model.AnswerSource `json:"answerSource"`
	TimeTaken    int                `json:"timeTaken"`
	TimeLimit    int                `json:"timeLimit"`
	TimedOut     bool               `json:"timedOut"`

	audioURL      string
	audioDuration float64
}

// VoiceRecording 上传的录音文件
type VoiceRecording struct {
	Reader      io.Reader
	Filename    string
	Size        int64
	ContentType string
}

type answerScoredEvent struct {
	AnswerID   uint                 `json:"answerId"`
	UserID     uint                 `json:"userId"`
	SessionID  uint                 `json:"sessionId"`
	QuestionID uint                 `json:"questionId"`
	Score      int                  `json:"score"`
	Source     model.FeedbackSource `json:"source"`
	TimedOut   bool                 `json:"timedOut"`
}

// submissionTarget 校验通过的作答目标
type submissionTarget struct {
	question *model.Question
	session  *model.Session
	source   model.AnswerSource
}

// validateSubmission 所有查询和校验都在这里完成，失败时不产生任何写入
func (s *AnswerService) validateSubmission(ctx context.Context, userID uint, input SubmitAnswerInput) (*submissionTarget, error) {
	if input.SessionID == 0 || input.QuestionID == 0 {
		return nil, validationf("sessionId and questionId are required")
	}
	if input.TimeTaken < 0 {
		return nil, validationf("timeTaken must not be negative")
	}
	if input.TimeLimit < 0 {
		return nil, validationf("timeLimit must not be negative")
	}

	source := input.AnswerSource
	if source == "" {
		source = model.SourceText
	}
	if source != model.SourceText && source != model.SourceVoice {
		return nil, validationf("invalid answerSource: %s", source)
	}

	question, err := s.Questions.FindByID(ctx, input.QuestionID)
	if err != nil {
		return nil, lookupErr(err, "question")
	}
	session, err := s.Sessions.FindByIDAndUserID(ctx, input.SessionID, userID)
	if err != nil {
		return nil, lookupErr(err, "session")
	}
	if session.IsTerminal() {
		return nil, validationf("session is %s", session.Status)
	}
	if !session.HasQuestion(question.ID) {
		return nil, validationf("question %d is not part of session %d", question.ID, session.ID)
	}
	return &submissionTarget{question: question, session: session, source: source}, nil
}

// SubmitAnswer 评分、保存、重算题目汇总。
// 客户端上报的 timeTaken/timedOut 直接采信，只拒绝负数
func (s *AnswerService) SubmitAnswer(ctx context.Context, userID uint, input SubmitAnswerInput) (*model.Answer, error) {
	target, err := s.validateSubmission(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	answer, err := s.persist(ctx, userID, input, target)
	if err != nil {
		return nil, err
	}
	return answer, nil
}

// persist 汇总重算失败时作答已经落库，此时返回该作答和错误
func (s *AnswerService) persist(ctx context.Context, userID uint, input SubmitAnswerInput, target *submissionTarget) (*model.Answer, error) {
	question, session := target.question, target.session

	timeLimit := input.TimeLimit
	if timeLimit == 0 {
		timeLimit = question.EffectiveTimeLimit()
	}

	feedback := s.Feedback.Score(ctx, question.Text, input.AnswerText, question.Category)

	answer := &model.Answer{
		UserID:        userID,
		SessionID:     session.ID,
		QuestionID:    question.ID,
		AnswerText:    input.AnswerText,
		AnswerSource:  target.source,
		AudioURL:      input.audioURL,
		AudioDuration: input.audioDuration,
		TimeTaken:     input.TimeTaken,
		TimeLimit:     timeLimit,
		TimedOut:      input.TimedOut,
		Feedback:      feedback,
	}
	if err := s.Answers.Create(ctx, answer); err != nil {
		return nil, err
	}

	if err := s.Aggregator.RefreshQuestion(ctx, question.ID); err != nil {
		return answer, err
	}

	publishEvent(ctx, s.Events, EventAnswerScored, answerScoredEvent{
		AnswerID:   answer.ID,
		UserID:     userID,
		SessionID:  session.ID,
		QuestionID: question.ID,
		Score:      feedback.ScoreOrZero(),
		Source:     feedback.Source,
		TimedOut:   answer.TimedOut,
	})
	return answer, nil
}

// SubmitVoiceAnswer 先校验作答目标，再把录音落到临时文件读取时长并上传，转写文本由客户端提供
func (s *AnswerService) SubmitVoiceAnswer(ctx context.Context, userID uint, input SubmitAnswerInput, recording VoiceRecording) (*model.Answer, error) {
	if recording.Reader == nil {
		return nil, validationf("recording is required")
	}
	if s.MaxRecordingMB > 0 && recording.Size > int64(s.MaxRecordingMB)<<20 {
		return nil, validationf("recording exceeds %d MB", s.MaxRecordingMB)
	}
	if s.Storage == nil {
		return nil, validationf("recording storage is not configured")
	}

	input.AnswerSource = model.SourceVoice
	target, err := s.validateSubmission(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(recording.Filename))
	tmp, err := os.CreateTemp("", "recording-*"+ext)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, recording.Reader)
	if err != nil {
		return nil, err
	}

	if s.Prober != nil {
		if duration, err := s.Prober.Duration(tmp.Name()); err != nil {
			logger.Log.Warn("probe recording failed", zap.String("file", recording.Filename), zap.Error(err))
		} else {
			input.audioDuration = duration
		}
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	key := "recordings/" + model.GenerateUUID() + ext
	url, err := s.Storage.Upload(ctx, key, tmp, size, recording.ContentType)
	if err != nil {
		return nil, err
	}

	input.audioURL = url
	answer, err := s.persist(ctx, userID, input, target)
	if err != nil {
		// 作答未落库时录音无人引用
		if answer == nil {
			if delErr := s.Storage.Delete(ctx, key); delErr != nil {
				logger.Log.Warn("delete orphaned recording failed", zap.String("key", key), zap.Error(delErr))
			}
		}
		return nil, err
	}
	return answer, nil
}

func (s *AnswerService) ListAnswers(ctx context.Context, userID uint, filter repository.AnswerFilter, page, limit int) ([]model.Answer, int64, error) {
	offset, limit := pageBounds(page, limit)
	return s.Answers.FindByUserWithPagination(ctx, userID, filter, offset, limit)
}

func (s *AnswerService) GetAnswer(ctx context.Context, userID, answerID uint) (*model.Answer, error) {
	answer, err := s.Answers.FindByIDAndUserID(ctx, answerID, userID)
	if err != nil {
		return nil, lookupErr(err, "answer")
	}
	return answer, nil
}

// ToggleBookmark 返回切换后的收藏状态
func (s *AnswerService) ToggleBookmark(ctx context.Context, userID, answerID uint) (bool, error) {
	answer, err := s.Answers.FindByIDAndUserID(ctx, answerID, userID)
	if err != nil {
		return false, lookupErr(err, "answer")
	}
	bookmarked := !answer.Bookmarked
	if err := s.Answers.UpdateBookmark(ctx, answer.ID, bookmarked); err != nil {
		return false, err
	}
	return bookmarked, nil
}

func (s *AnswerService) SetSelfRating(ctx context.Context, userID, answerID uint, rating int) (*model.Answer, error) {
	if rating < 1 || rating > 5 {
		return nil, validationf("selfRating must be between 1 and 5")
	}
	answer, err := s.Answers.FindByIDAndUserID(ctx, answerID, userID)
	if err != nil {
		return nil, lookupErr(err, "answer")
	}
	if err := s.Answers.UpdateSelfRating(ctx, answer.ID, rating); err != nil {
		return nil, err
	}
	answer.SelfRating = &rating
	return answer, nil
}
