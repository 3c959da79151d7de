package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"questify/internal/analytics"
	"questify/internal/api"
	"questify/internal/history"
	"questify/internal/session"
)

// App is the interactive student terminal. It drives one quiz session at a
// time against the backend and keeps a local submission journal when a
// history store is attached.
type App struct {
	client *api.Client
	store  *history.Store

	reader *bufio.Reader
	out    io.Writer

	feed session.Feed
}

func Run(ctx context.Context, in io.Reader, out io.Writer, client *api.Client, store *history.Store) error {
	app := &App{
		client: client,
		store:  store,
		reader: bufio.NewReader(in),
		out:    out,
	}

	fmt.Fprintln(out, "questify-student")
	if err := app.refreshFeed(ctx); err != nil {
		fmt.Fprintf(out, "warning: could not load assignments: %v\n", err)
	} else {
		app.printAssignments()
	}
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := app.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		switch command {
		case "help":
			printHelp(out)
		case "exit":
			return nil
		case "assignments":
			if err := app.refreshFeed(ctx); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			app.printAssignments()
		case "start":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: start <assignment number>")
				continue
			}
			number, parseErr := strconv.Atoi(args[1])
			if parseErr != nil || number < 1 || number > len(app.feed.Assignments) {
				fmt.Fprintf(out, "invalid assignment number %q (have %d)\n", args[1], len(app.feed.Assignments))
				continue
			}
			if err := app.runQuiz(ctx, app.feed.Assignments[number-1]); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "myresponses":
			if err := app.printMyResponses(ctx); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "leaderboard":
			classID := ""
			if len(args) > 1 {
				classID = args[1]
			}
			if err := app.printLeaderboard(ctx, classID); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "journal":
			if err := app.printJournal(ctx); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}
	}
}

func (a *App) refreshFeed(ctx context.Context) error {
	feed, err := session.LoadFeed(ctx, a.client)
	if err != nil {
		return err
	}
	a.feed = feed
	return nil
}

func (a *App) printAssignments() {
	if len(a.feed.Assignments) == 0 {
		fmt.Fprintln(a.out, "No assignments with pending questions.")
		return
	}

	fmt.Fprintln(a.out, "Assignments:")
	for idx, assignment := range a.feed.Assignments {
		status := ""
		if a.feed.Completed[assignment.ID] {
			status = " [completed]"
		}
		fmt.Fprintf(a.out, "%d. %s (%s, %d questions)%s\n",
			idx+1,
			assignment.Title,
			assignment.ClassName,
			len(assignment.Questions),
			status,
		)
	}
}

func (a *App) runQuiz(ctx context.Context, assignment session.Assignment) error {
	sess := session.New(a.client)
	sess.MarkCompleted(a.feed.Completed)

	if err := sess.Start(assignment); err != nil {
		if errors.Is(err, session.ErrAlreadyCompleted) {
			fmt.Fprintln(a.out, "This quiz has already been completed. You cannot attempt it again.")
			return nil
		}
		return err
	}

	fmt.Fprintf(a.out, "\n%s (%s)\n", assignment.Title, assignment.ClassName)
	if assignment.Description != "" {
		fmt.Fprintln(a.out, assignment.Description)
	}

	for {
		question, ok := sess.Current()
		if !ok {
			break
		}
		current, total := sess.Progress()

		fmt.Fprintf(a.out, "\n[%s] Question %d of %d\n\n", sess.ElapsedDisplay(), current, total)
		fmt.Fprintf(a.out, "%s\n\n", question.Prompt)
		for idx, option := range question.Options {
			fmt.Fprintf(a.out, "%c. %s\n", 'A'+idx, option)
		}
		fmt.Fprintln(a.out)

		action, optionIndex := a.promptAction(len(question.Options))
		switch action {
		case actionQuit:
			confirmed, err := promptYesNo(a.reader, a.out, "Quit? Unsubmitted progress will be lost (yes/no): ")
			if err != nil {
				return err
			}
			if confirmed {
				sess.Quit()
				fmt.Fprintln(a.out, "Quiz abandoned.")
				return nil
			}
		case actionSkip:
			if _, err := sess.SkipCurrent(); err != nil {
				return err
			}
		case actionAnswer:
			if err := sess.SelectAnswer(question.ID, optionIndex); err != nil {
				fmt.Fprintf(a.out, "invalid selection: %v\n", err)
				continue
			}
			submission, err := sess.SubmitCurrent(ctx)
			if err != nil {
				// Recoverable: the question stays current, the user may retry.
				fmt.Fprintf(a.out, "submit failed: %v\n", err)
				continue
			}
			a.journalSubmission(ctx, submission)
			fmt.Fprintf(a.out, "Answer recorded (%.1fs).\n", submission.ResponseTime.Seconds())
		}
	}

	if sess.State() == session.StateCompleted {
		fmt.Fprintf(a.out, "\nAssignment complete in %s.\n", sess.ElapsedDisplay())
	}
	if err := a.refreshFeed(ctx); err != nil {
		fmt.Fprintf(a.out, "warning: could not refresh assignments: %v\n", err)
	}
	return nil
}

type quizAction int

const (
	actionAnswer quizAction = iota
	actionSkip
	actionQuit
)

func (a *App) promptAction(optionCount int) (quizAction, int) {
	maxLetter := byte('A' + optionCount - 1)
	for {
		fmt.Fprintf(a.out, "Your answer (A-%c), 'skip' or 'quit': ", maxLetter)

		line, err := a.reader.ReadString('\n')
		if err != nil {
			return actionQuit, 0
		}

		input := strings.ToLower(strings.TrimSpace(line))
		switch input {
		case "skip":
			return actionSkip, 0
		case "quit":
			return actionQuit, 0
		}

		if len(input) == 1 {
			letter := strings.ToUpper(input)[0]
			if letter >= 'A' && letter <= maxLetter {
				return actionAnswer, int(letter - 'A')
			}
		}

		fmt.Fprintf(a.out, "Invalid input. Enter a letter A-%c, 'skip' or 'quit'.\n", maxLetter)
	}
}

func (a *App) journalSubmission(ctx context.Context, submission session.Submission) {
	if a.store == nil || submission.QuestionID == "" {
		return
	}
	if err := a.store.LogSubmission(ctx, submission, time.Now()); err != nil {
		fmt.Fprintf(a.out, "warning: could not journal submission: %v\n", err)
	}
}

func (a *App) printMyResponses(ctx context.Context) error {
	responses, err := a.client.MyResponses(ctx)
	if err != nil {
		return err
	}

	if len(responses) == 0 {
		fmt.Fprintln(a.out, "No responses yet.")
		return nil
	}

	fmt.Fprintf(a.out, "Responses: %d, accuracy %.1f%%, avg %.2fs\n",
		len(responses),
		analytics.Accuracy(responses),
		analytics.AverageResponseTimeSeconds(responses),
	)
	for _, response := range responses {
		verdict := "wrong"
		if response.IsCorrect {
			verdict = "correct"
		}
		prompt := "(question removed)"
		if response.Question != nil {
			prompt = response.Question.Question
		}
		fmt.Fprintf(a.out, "- %s: %s in %.1fs (%s engagement)\n",
			prompt,
			verdict,
			float64(response.ResponseTimeMs)/1000,
			analytics.EngagementLevel(response.ResponseTimeMs),
		)
	}
	return nil
}

func (a *App) printLeaderboard(ctx context.Context, classID string) error {
	rows, err := a.client.Leaderboard(ctx, classID)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No leaderboard entries.")
		return nil
	}

	fmt.Fprintln(a.out, "Leaderboard:")
	for idx, row := range rows {
		fmt.Fprintf(a.out, "%d. %s score=%.0f correct=%d/%d avg=%.2fs\n",
			idx+1,
			row.StudentName,
			row.Score,
			row.CorrectAnswers,
			row.TotalAnswers,
			row.AverageResponseTimeMs/1000,
		)
	}
	return nil
}

func (a *App) printJournal(ctx context.Context) error {
	if a.store == nil {
		fmt.Fprintln(a.out, "No local history store configured.")
		return nil
	}

	entries, err := a.store.Journal(ctx, "")
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No journaled submissions.")
		return nil
	}

	fmt.Fprintln(a.out, "Local submission journal (newest first):")
	for _, entry := range entries {
		fmt.Fprintf(a.out, "- %s question=%s answer=%c time=%.1fs\n",
			entry.SubmittedAt.Format(time.RFC3339),
			entry.QuestionID,
			'A'+rune(entry.SelectedAnswer),
			float64(entry.ResponseTimeMs)/1000,
		)
	}
	return nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  assignments")
	fmt.Fprintln(out, "  start <assignment number>")
	fmt.Fprintln(out, "  myresponses")
	fmt.Fprintln(out, "  leaderboard [class_id]")
	fmt.Fprintln(out, "  journal")
	fmt.Fprintln(out, "  exit")
}

func promptYesNo(reader *bufio.Reader, out io.Writer, prompt string) (bool, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(out, "Please answer yes or no.")
		}
	}
}
