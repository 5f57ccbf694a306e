package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"prepace_backend/internal/model"
	"prepace_backend/internal/service"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	metaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8"))
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
)

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 8:
		return goodStyle
	case float64(score) >= service.WeakAreaThreshold:
		return warnStyle
	default:
		return badStyle
	}
}

func printQuestion(w io.Writer, index, total int, q *model.Question, timed bool) {
	_, _ = fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Question %d/%d", index, total)))
	meta := fmt.Sprintf("%s · %s", q.Category, q.Difficulty)
	if timed {
		meta += fmt.Sprintf(" · %ds", q.EffectiveTimeLimit())
	}
	_, _ = fmt.Fprintln(w, metaStyle.Render(meta))
	_, _ = fmt.Fprintln(w, q.Text)
	_, _ = fmt.Fprintln(w, metaStyle.Render("(finish with an empty line, :quit to abandon)"))
}

func printFeedback(w io.Writer, f model.Feedback, timedOut bool) {
	if timedOut {
		_, _ = fmt.Fprintln(w, warnStyle.Render("Time is up, submitted what you had."))
	}
	score := f.ScoreOrZero()
	_, _ = fmt.Fprintln(w, scoreStyle(score).Render(fmt.Sprintf("Score: %d/%d", score, model.MaxScore)))
	if f.Summary != "" {
		_, _ = fmt.Fprintln(w, f.Summary)
	}
	printList(w, "Strengths", f.Strengths)
	printList(w, "Improve", f.Improvements)
	_, _ = fmt.Fprintln(w)
}

func printList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", metaStyle.Render(label), strings.Join(items, "; "))
}
