package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"prepace_backend/internal/model"
	"prepace_backend/internal/practice"
	"prepace_backend/internal/service"
)

const quitCommand = ":quit"

type practiceOptions struct {
	Mode       string
	Category   string
	Difficulty string
	Count      int
}

// readLines 标准输入按行送入 channel，EOF 时关闭
func readLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

func runPractice(ctx context.Context, out io.Writer, in io.Reader, b backend, opts practiceOptions) error {
	difficulty := model.Difficulty(opts.Difficulty)
	category := model.QuestionCategory(opts.Category)

	questions, err := b.RandomQuestions(ctx, opts.Count, category, difficulty)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return fmt.Errorf("no questions available for category %q", opts.Category)
	}

	input := service.CreateSessionInput{
		Mode:       model.SessionMode(opts.Mode),
		Difficulty: difficulty,
	}
	if category != "" {
		input.Categories = []model.QuestionCategory{category}
	}
	for _, q := range questions {
		input.QuestionIDs = append(input.QuestionIDs, q.ID)
	}

	session, err := b.CreateSession(ctx, input)
	if err != nil {
		return err
	}

	sc := practice.NewSessionContext(session, questions, nil)
	countdown := practice.NewCountdown()
	defer countdown.Stop()
	lines := readLines(in)

	for !sc.Finished() {
		q, _ := sc.Current()
		printQuestion(out, sc.Index+1, len(sc.Questions), q, sc.Mode.Timed())

		attempt, err := sc.Begin(countdown)
		if err != nil {
			return err
		}

		sub, quit := collectAnswer(ctx, attempt, lines)
		if quit {
			countdown.Stop()
			if _, err := b.AbandonSession(ctx, sc.SessionID); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, warnStyle.Render("Session abandoned."))
			return nil
		}

		answer, err := b.SubmitAnswer(ctx, sub)
		if err != nil {
			return err
		}
		printFeedback(out, answer.Feedback, sub.TimedOut)
		sc.Record(sub, answer.Feedback)

		// 每次作答后打卡，失败不影响练习
		if _, err := b.CheckIn(ctx); err != nil {
			_, _ = fmt.Fprintln(out, warnStyle.Render("Streak check-in failed: "+err.Error()))
		}
	}

	completed, err := b.CompleteSession(ctx, sc.SessionID, sc.TotalTimeTaken())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, titleStyle.Render("Session complete"))
	_, _ = fmt.Fprintf(out, "Answered %d/%d · average %.2f · %ds\n",
		completed.Answered, completed.TotalQuestions, completed.AverageScore, completed.TotalTimeTaken)
	return nil
}

// collectAnswer 空行或输入结束视为手动提交；倒计时到期由 Attempt 自动提交
func collectAnswer(ctx context.Context, attempt *practice.Attempt, lines <-chan string) (practice.Submission, bool) {
	for {
		select {
		case sub := <-attempt.Done():
			return sub, false
		case line, ok := <-lines:
			switch {
			case !ok:
				attempt.Submit()
			case strings.TrimSpace(line) == quitCommand:
				return practice.Submission{}, true
			case strings.TrimSpace(line) == "":
				attempt.Submit()
			default:
				attempt.Append(line)
			}
			if !ok {
				// 输入已结束，只等待提交结果
				lines = nil
			}
		case <-ctx.Done():
			return practice.Submission{}, true
		}
	}
}
