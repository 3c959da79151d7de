package session

import (
	"context"

	"questify/internal/api"
)

// Question is one pending multiple-choice question inside an assignment.
type Question struct {
	ID       string
	Prompt   string
	Options  []string
	ImageURL string
	Subject  string
}

// Assignment is the per-student view of one quiz: only the questions the
// student has not answered yet, in assignment order.
type Assignment struct {
	ID          string
	Title       string
	Description string
	ClassName   string
	ClassID     string
	Questions   []Question
}

// Feed is the grouped assigned-question listing shown before a quiz starts.
type Feed struct {
	Assignments []Assignment
	Completed   map[string]bool
}

// FeedClient is the slice of the API client the loader needs.
type FeedClient interface {
	AssignedQuestions(ctx context.Context) ([]api.AssignedQuestionView, error)
}

// LoadFeed fetches and groups the assigned-question feed. On error the caller
// keeps whatever feed it had; no session state is touched.
func LoadFeed(ctx context.Context, client FeedClient) (Feed, error) {
	views, err := client.AssignedQuestions(ctx)
	if err != nil {
		return Feed{}, err
	}
	return GroupAssigned(views), nil
}

// GroupAssigned folds the flat feed into per-assignment bundles. Questions
// already answered are dropped, assignments with nothing left to attempt are
// dropped, and assignment order follows first appearance in the feed.
func GroupAssigned(views []api.AssignedQuestionView) Feed {
	byID := make(map[string]*Assignment)
	order := make([]string, 0)
	completed := make(map[string]bool)

	for _, view := range views {
		bundle, ok := byID[view.AssignmentID]
		if !ok {
			bundle = &Assignment{
				ID:          view.AssignmentID,
				Title:       view.AssignmentTitle,
				Description: view.AssignmentDescription,
				ClassName:   view.ClassName,
				ClassID:     view.ClassID,
			}
			byID[view.AssignmentID] = bundle
			order = append(order, view.AssignmentID)
		}

		if !view.IsAnswered {
			bundle.Questions = append(bundle.Questions, Question{
				ID:       view.QuestionID,
				Prompt:   view.Question,
				Options:  view.Options,
				ImageURL: view.ImageURL,
				Subject:  view.Subject,
			})
		}

		if view.AssignmentCompleted {
			completed[view.AssignmentID] = true
		}
	}

	assignments := make([]Assignment, 0, len(order))
	for _, id := range order {
		if bundle := byID[id]; len(bundle.Questions) > 0 {
			assignments = append(assignments, *bundle)
		}
	}

	return Feed{Assignments: assignments, Completed: completed}
}
