package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	server  string
	token   string
	offline bool
	seed    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "rehearse",
		Short:         "Practice interview answers from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("PREPACE_SERVER", "http://localhost:8080"), "PrePace server address")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("PREPACE_TOKEN"), "JWT access token")
	root.PersistentFlags().BoolVar(&opts.offline, "offline", false, "run against an in-memory question bank")
	root.PersistentFlags().StringVar(&opts.seed, "seed", "configs/questions.yaml", "question bank used in offline mode")

	root.AddCommand(newPracticeCmd(opts))
	root.AddCommand(newDailyCmd(opts))
	root.AddCommand(newStatsCmd(opts))
	root.AddCommand(newCheckInCmd(opts))
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadBackend(opts *rootOptions) (backend, error) {
	if opts.offline {
		return newOfflineBackend(opts.seed)
	}
	if opts.token == "" {
		return nil, fmt.Errorf("--token or PREPACE_TOKEN is required unless --offline is set")
	}
	return newHTTPBackend(opts.server, opts.token), nil
}

func newPracticeCmd(root *rootOptions) *cobra.Command {
	opts := practiceOptions{}
	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Run a practice session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := loadBackend(root)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return runPractice(ctx, cmd.OutOrStdout(), cmd.InOrStdin(), b, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Mode, "mode", "timed", "timed|relaxed|mock")
	cmd.Flags().StringVar(&opts.Category, "category", "", "behavioral|technical|hr|situational|leadership|problem-solving")
	cmd.Flags().StringVar(&opts.Difficulty, "difficulty", "mixed", "easy|medium|hard|mixed")
	cmd.Flags().IntVar(&opts.Count, "count", 5, "number of questions")
	return cmd
}

func newDailyCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "daily",
		Short: "Show today's question",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := loadBackend(root)
			if err != nil {
				return err
			}
			q, err := b.DailyQuestion(cmd.Context())
			if err != nil {
				return err
			}
			printQuestion(cmd.OutOrStdout(), 1, 1, q, false)
			return nil
		},
	}
}

func newStatsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show your practice overview and weak areas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := loadBackend(root)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			overview, err := b.Overview(ctx)
			if err != nil {
				return err
			}
			weak, err := b.WeakAreas(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, titleStyle.Render("Overview"))
			_, _ = fmt.Fprintf(out, "answers %d · sessions %d · bookmarked %d · average %.2f\n",
				overview.TotalAnswers, overview.TotalSessions, overview.BookmarkedAnswers, overview.AverageScore)
			_, _ = fmt.Fprintf(out, "streak %d (best %d)\n", overview.CurrentStreak, overview.LongestStreak)
			if len(weak) == 0 {
				_, _ = fmt.Fprintln(out, goodStyle.Render("no weak areas"))
				return nil
			}
			_, _ = fmt.Fprintln(out, titleStyle.Render("Weak areas"))
			for _, w := range weak {
				_, _ = fmt.Fprintf(out, "%s %s\n", w.Category, badStyle.Render(fmt.Sprintf("%.2f", w.AvgScore)))
			}
			return nil
		},
	}
}

func newCheckInCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkin",
		Short: "Record today's practice for your streak",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := loadBackend(root)
			if err != nil {
				return err
			}
			status, err := b.CheckIn(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !status.Updated {
				_, _ = fmt.Fprintln(out, metaStyle.Render(status.Message))
			}
			_, _ = fmt.Fprintf(out, "streak %d · best %d · %d days total\n",
				status.CurrentStreak, status.LongestStreak, status.TotalCheckins)
			return nil
		},
	}
}
