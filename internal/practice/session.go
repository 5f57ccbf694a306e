// Package practice 终端练习客户端的会话状态：当前题目、作答进度和每题倒计时。
// 服务端只信任客户端上报的 timeTaken/timedOut，这里负责如实计算它们
package practice

import (
	"errors"
	"strings"
	"sync"
	"time"

	"prepace_backend/internal/model"
)

var ErrSessionFinished = errors.New("all questions answered")

// Submission 一次提交，对应 POST /api/answers 的请求体
type Submission struct {
	SessionID  uint   `json:"sessionId"`
	QuestionID uint   `json:"questionId"`
	AnswerText string `json:"answerText"`
	TimeTaken  int    `json:"timeTaken"`
	TimeLimit  int    `json:"timeLimit"`
	TimedOut   bool   `json:"timedOut"`
}

// Result 已提交的一题及其反馈
type Result struct {
	Submission Submission
	Feedback   model.Feedback
}

// SessionContext 显式传递的会话状态，取代全局可变对象
type SessionContext struct {
	SessionID uint
	Mode      model.SessionMode
	Questions []model.Question
	Index     int
	Results   []Result
	StartedAt time.Time

	now func() time.Time
}

func NewSessionContext(session *model.Session, questions []model.Question, now func() time.Time) *SessionContext {
	if now == nil {
		now = time.Now
	}
	return &SessionContext{
		SessionID: session.ID,
		Mode:      session.Mode,
		Questions: questions,
		StartedAt: now(),
		now:       now,
	}
}

// Current 当前待作答的题目
func (s *SessionContext) Current() (*model.Question, bool) {
	if s.Index >= len(s.Questions) {
		return nil, false
	}
	return &s.Questions[s.Index], true
}

func (s *SessionContext) Finished() bool {
	return s.Index >= len(s.Questions)
}

// Begin 进入当前题目。timed/mock 模式下启动倒计时，到期自动提交已输入的内容
func (s *SessionContext) Begin(countdown *Countdown) (*Attempt, error) {
	q, ok := s.Current()
	if !ok {
		return nil, ErrSessionFinished
	}

	a := &Attempt{
		submission: Submission{
			SessionID:  s.SessionID,
			QuestionID: q.ID,
			TimeLimit:  q.EffectiveTimeLimit(),
		},
		started:   s.now(),
		now:       s.now,
		countdown: countdown,
		done:      make(chan Submission, 1),
	}
	if s.Mode.Timed() && countdown != nil {
		a.timed = true
		countdown.Start(time.Duration(a.submission.TimeLimit)*time.Second, a.expire)
	}
	return a, nil
}

// Record 保存提交结果并前进到下一题
func (s *SessionContext) Record(sub Submission, feedback model.Feedback) {
	s.Results = append(s.Results, Result{Submission: sub, Feedback: feedback})
	s.Index++
}

// TotalTimeTaken 从开始到现在的秒数，完成会话时上报
func (s *SessionContext) TotalTimeTaken() int {
	return int(s.now().Sub(s.StartedAt).Seconds())
}

// Attempt 一道题的作答：手动提交和倒计时到期只有一个生效
type Attempt struct {
	mu         sync.Mutex
	submission Submission
	text       strings.Builder
	started    time.Time
	now        func() time.Time
	countdown  *Countdown
	timed      bool
	finished   bool
	done       chan Submission
}

// Append 追加一行输入
func (a *Attempt) Append(line string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finished {
		return
	}
	if a.text.Len() > 0 {
		a.text.WriteString("\n")
	}
	a.text.WriteString(line)
}

// Submit 手动提交，先取消倒计时。已经超时提交过时返回 false
func (a *Attempt) Submit() (Submission, bool) {
	if a.countdown != nil {
		a.countdown.Stop()
	}
	return a.finish(false)
}

// Done 提交（手动或超时）后收到唯一一次结果
func (a *Attempt) Done() <-chan Submission {
	return a.done
}

func (a *Attempt) expire() {
	a.finish(true)
}

func (a *Attempt) finish(timedOut bool) (Submission, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finished {
		return a.submission, false
	}
	a.finished = true

	sub := a.submission
	sub.AnswerText = strings.TrimSpace(a.text.String())
	sub.TimedOut = timedOut
	if timedOut {
		sub.TimeTaken = sub.TimeLimit
	} else {
		sub.TimeTaken = int(a.now().Sub(a.started).Seconds())
		if a.timed && sub.TimeTaken > sub.TimeLimit {
			sub.TimeTaken = sub.TimeLimit
		}
	}
	a.submission = sub
	a.done <- sub
	return sub, true
}
