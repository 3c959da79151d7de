// Package admin implements the one-shot admin commands: analytics reports,
// raw response listings, export downloads, and offline snapshots.
package admin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"questify/internal/analytics"
	"questify/internal/api"
	"questify/internal/history"
)

const (
	displayedQuestions = 10
	displayedStudents  = 10
	displayedTrendDays = 10
)

type Options struct {
	Command      string
	ClassID      string
	StudentID    string
	AssignmentID string
	Days         int
	Format       string
	OutDir       string
	// Offline reads responses from the local snapshot instead of the backend.
	Offline bool
}

func Run(ctx context.Context, out io.Writer, client *api.Client, store *history.Store, opts Options) error {
	switch opts.Command {
	case "report":
		return runReport(ctx, out, client, store, opts)
	case "responses":
		return runResponses(ctx, out, client, store, opts)
	case "snapshot":
		return runSnapshot(ctx, out, client, store, opts)
	case "export":
		return runExport(ctx, out, client, opts)
	case "leaderboard":
		return runLeaderboard(ctx, out, client, opts)
	default:
		return fmt.Errorf("unknown command %q (want report, responses, snapshot, export or leaderboard)", opts.Command)
	}
}

func loadResponses(ctx context.Context, client *api.Client, store *history.Store, opts Options) ([]api.Response, error) {
	filter := api.ResponsesFilter{
		ClassID:      opts.ClassID,
		StudentID:    opts.StudentID,
		AssignmentID: opts.AssignmentID,
	}

	if opts.Offline {
		if store == nil {
			return nil, fmt.Errorf("offline mode requires a history store")
		}
		return store.LoadResponses(ctx, filter)
	}
	return client.Responses(ctx, filter)
}

func runReport(ctx context.Context, out io.Writer, client *api.Client, store *history.Store, opts Options) error {
	responses, err := loadResponses(ctx, client, store, opts)
	if err != nil {
		return err
	}
	responses = analytics.LastDays(responses, opts.Days, time.Now())

	overview := analytics.Overview(responses)
	fmt.Fprintf(out, "Responses: %d\n", overview.TotalResponses)
	fmt.Fprintf(out, "Accuracy: %.1f%%\n", overview.Accuracy)
	fmt.Fprintf(out, "Avg response time: %.2fs\n", overview.AverageResponseTimeSeconds)
	fmt.Fprintf(out, "Active students: %d\n", overview.ActiveStudents)

	fmt.Fprintln(out, "\nResponse time distribution:")
	for _, bucket := range analytics.TimeDistribution(responses) {
		fmt.Fprintf(out, "  %-11s %d (%.1f%%)\n", bucket.Label, bucket.Count, bucket.Percent)
	}

	difficulty := analytics.QuestionDifficulty(responses)
	if len(difficulty) > 0 {
		fmt.Fprintln(out, "\nHardest questions:")
		for idx, stats := range difficulty {
			if idx >= displayedQuestions {
				break
			}
			fmt.Fprintf(out, "  [%s] %.1f%% over %d attempts, avg %.1fs: %s\n",
				stats.Difficulty, stats.Accuracy, stats.Attempts, stats.AverageTimeSeconds, truncate(stats.Prompt, 50))
		}
	}

	leaderboard := analytics.StudentLeaderboard(responses)
	if len(leaderboard) > 0 {
		fmt.Fprintln(out, "\nTop students:")
		for idx, stats := range leaderboard {
			if idx >= displayedStudents {
				break
			}
			fmt.Fprintf(out, "  %d. %s (%s) %.1f%% over %d attempts, avg %.1fs\n",
				idx+1, stats.Name, stats.AdmissionNo, stats.Accuracy, stats.Attempts, stats.AverageTimeSeconds)
		}
	}

	trend := analytics.DailyTrend(responses)
	if len(trend) > displayedTrendDays {
		trend = trend[len(trend)-displayedTrendDays:]
	}
	if len(trend) > 0 {
		fmt.Fprintln(out, "\nDaily trend:")
		for _, day := range trend {
			fmt.Fprintf(out, "  %s: %d responses, %.1f%% accuracy\n", day.Date, day.Responses, day.Accuracy)
		}
	}
	return nil
}

func runResponses(ctx context.Context, out io.Writer, client *api.Client, store *history.Store, opts Options) error {
	responses, err := loadResponses(ctx, client, store, opts)
	if err != nil {
		return err
	}

	if len(responses) == 0 {
		fmt.Fprintln(out, "No responses.")
		return nil
	}

	for _, response := range responses {
		student := "(student removed)"
		if response.Student != nil {
			student = response.Student.Name
		}
		question := "(question removed)"
		if response.Question != nil {
			question = truncate(response.Question.Question, 40)
		}
		verdict := "wrong"
		if response.IsCorrect {
			verdict = "correct"
		}
		fmt.Fprintf(out, "%s  %-20s %-40s %s %.1fs\n",
			response.AnsweredAt.Format("2006-01-02 15:04"),
			student,
			question,
			verdict,
			float64(response.ResponseTimeMs)/1000,
		)
	}
	fmt.Fprintf(out, "total: %d\n", len(responses))
	return nil
}

func runSnapshot(ctx context.Context, out io.Writer, client *api.Client, store *history.Store, opts Options) error {
	if store == nil {
		return fmt.Errorf("snapshot requires a history store")
	}

	responses, err := client.Responses(ctx, api.ResponsesFilter{
		ClassID:      opts.ClassID,
		StudentID:    opts.StudentID,
		AssignmentID: opts.AssignmentID,
	})
	if err != nil {
		return err
	}

	if err := store.SaveResponses(ctx, responses); err != nil {
		return err
	}
	fmt.Fprintf(out, "snapshotted %d responses\n", len(responses))
	return nil
}

func runExport(ctx context.Context, out io.Writer, client *api.Client, opts Options) error {
	if opts.AssignmentID == "" {
		return fmt.Errorf("export requires -assignment")
	}

	response, filename, err := client.Export(ctx, opts.Format, opts.AssignmentID, api.ResponsesFilter{
		ClassID:   opts.ClassID,
		StudentID: opts.StudentID,
	})
	if err != nil {
		return err
	}
	defer response.Body.Close()

	target := filepath.Join(opts.OutDir, filename)
	file, err := os.Create(target)
	if err != nil {
		return err
	}
	defer file.Close()

	written, err := io.Copy(file, response.Body)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s (%d bytes)\n", target, written)
	return nil
}

func runLeaderboard(ctx context.Context, out io.Writer, client *api.Client, opts Options) error {
	rows, err := client.Leaderboard(ctx, opts.ClassID)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Fprintln(out, "No leaderboard entries.")
		return nil
	}

	for idx, row := range rows {
		fmt.Fprintf(out, "%d. %s <%s> score=%.0f correct=%d/%d avg=%.2fs\n",
			idx+1,
			row.StudentName,
			row.StudentEmail,
			row.Score,
			row.CorrectAnswers,
			row.TotalAnswers,
			row.AverageResponseTimeMs/1000,
		)
	}
	return nil
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
