// Package analytics computes engagement and performance statistics from raw
// response lists fetched from the backend. Every function is pure: inputs are
// never mutated, malformed records degrade to zero values instead of errors,
// and a response whose populated question/student reference was deleted is
// excluded from that grouping while still counting toward overall totals.
package analytics

import (
	"math"
	"sort"

	"questify/internal/api"
)

// Engagement levels by response time. Boundaries are half-open on the lower
// bound: exactly 5s is High, not Very High.
const (
	EngagementVeryHigh  = "Very High"
	EngagementHigh      = "High"
	EngagementMedium    = "Medium"
	EngagementLowMedium = "Low-Medium"
	EngagementLow       = "Low"
)

// EngagementLevels lists the buckets in display order, fastest first.
func EngagementLevels() []string {
	return []string{
		EngagementVeryHigh,
		EngagementHigh,
		EngagementMedium,
		EngagementLowMedium,
		EngagementLow,
	}
}

// Question difficulty labels by accuracy.
const (
	DifficultyHard   = "Hard"
	DifficultyMedium = "Medium"
	DifficultyEasy   = "Easy"
)

type Summary struct {
	TotalResponses             int
	Accuracy                   float64
	AverageResponseTimeSeconds float64
	ActiveStudents             int
}

type QuestionStats struct {
	QuestionID         string
	Prompt             string
	Attempts           int
	Correct            int
	Accuracy           float64
	AverageTimeSeconds float64
	Difficulty         string
}

type StudentStats struct {
	StudentID          string
	Name               string
	AdmissionNo        string
	Attempts           int
	Correct            int
	Accuracy           float64
	AverageTimeSeconds float64
}

type TimeBucket struct {
	Label   string
	Count   int
	Percent float64
}

type DayStats struct {
	Date      string
	Responses int
	Accuracy  float64
}

// Accuracy is the percentage of correct responses, one decimal, 0 for empty
// input.
func Accuracy(responses []api.Response) float64 {
	if len(responses) == 0 {
		return 0
	}

	correct := 0
	for _, response := range responses {
		if response.IsCorrect {
			correct++
		}
	}
	return round1(float64(correct) / float64(len(responses)) * 100)
}

// AverageResponseTimeSeconds is the mean response time in seconds, two
// decimals, 0 for empty input.
func AverageResponseTimeSeconds(responses []api.Response) float64 {
	if len(responses) == 0 {
		return 0
	}

	var totalMs int64
	for _, response := range responses {
		totalMs += response.ResponseTimeMs
	}
	return round2(float64(totalMs) / float64(len(responses)) / 1000)
}

// EngagementLevel buckets a response time. Total over all non-negative
// inputs; negative times are treated as instant.
func EngagementLevel(responseTimeMs int64) string {
	seconds := float64(responseTimeMs) / 1000
	switch {
	case seconds < 5:
		return EngagementVeryHigh
	case seconds < 10:
		return EngagementHigh
	case seconds < 20:
		return EngagementMedium
	case seconds < 30:
		return EngagementLowMedium
	default:
		return EngagementLow
	}
}

// Overview computes the headline numbers for an analytics dashboard.
func Overview(responses []api.Response) Summary {
	students := make(map[string]struct{})
	for _, response := range responses {
		if response.Student != nil {
			students[response.Student.ID] = struct{}{}
		}
	}

	return Summary{
		TotalResponses:             len(responses),
		Accuracy:                   Accuracy(responses),
		AverageResponseTimeSeconds: AverageResponseTimeSeconds(responses),
		ActiveStudents:             len(students),
	}
}

// QuestionDifficulty groups responses by question and labels each by
// accuracy, hardest first. Responses whose question reference is missing are
// skipped.
func QuestionDifficulty(responses []api.Response) []QuestionStats {
	type bucket struct {
		prompt  string
		total   int
		correct int
		totalMs int64
	}

	buckets := make(map[string]*bucket)
	order := make([]string, 0)

	for _, response := range responses {
		if response.Question == nil {
			continue
		}
		id := response.Question.ID

		entry, ok := buckets[id]
		if !ok {
			entry = &bucket{prompt: response.Question.Question}
			buckets[id] = entry
			order = append(order, id)
		}
		entry.total++
		if response.IsCorrect {
			entry.correct++
		}
		entry.totalMs += response.ResponseTimeMs
	}

	stats := make([]QuestionStats, 0, len(order))
	for _, id := range order {
		entry := buckets[id]
		accuracy := round1(float64(entry.correct) / float64(entry.total) * 100)
		stats = append(stats, QuestionStats{
			QuestionID:         id,
			Prompt:             entry.prompt,
			Attempts:           entry.total,
			Correct:            entry.correct,
			Accuracy:           accuracy,
			AverageTimeSeconds: round1(float64(entry.totalMs) / float64(entry.total) / 1000),
			Difficulty:         difficultyLabel(float64(entry.correct) / float64(entry.total)),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Accuracy < stats[j].Accuracy
	})
	return stats
}

// StudentLeaderboard ranks students by accuracy, best first. Ties keep their
// arrival order; there is deliberately no secondary sort key.
func StudentLeaderboard(responses []api.Response) []StudentStats {
	type bucket struct {
		name        string
		admissionNo string
		total       int
		correct     int
		totalMs     int64
	}

	buckets := make(map[string]*bucket)
	order := make([]string, 0)

	for _, response := range responses {
		if response.Student == nil {
			continue
		}
		id := response.Student.ID

		entry, ok := buckets[id]
		if !ok {
			entry = &bucket{
				name:        response.Student.Name,
				admissionNo: response.Student.AdmissionNo,
			}
			buckets[id] = entry
			order = append(order, id)
		}
		entry.total++
		if response.IsCorrect {
			entry.correct++
		}
		entry.totalMs += response.ResponseTimeMs
	}

	stats := make([]StudentStats, 0, len(order))
	for _, id := range order {
		entry := buckets[id]
		stats = append(stats, StudentStats{
			StudentID:          id,
			Name:               entry.name,
			AdmissionNo:        entry.admissionNo,
			Attempts:           entry.total,
			Correct:            entry.correct,
			Accuracy:           round1(float64(entry.correct) / float64(entry.total) * 100),
			AverageTimeSeconds: round1(float64(entry.totalMs) / float64(entry.total) / 1000),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Accuracy > stats[j].Accuracy
	})
	return stats
}

// TimeDistribution counts responses per engagement bucket. All five buckets
// are always present, in order; percentages are 0 for empty input.
func TimeDistribution(responses []api.Response) []TimeBucket {
	counts := make(map[string]int, 5)
	for _, response := range responses {
		counts[EngagementLevel(response.ResponseTimeMs)]++
	}

	total := len(responses)
	buckets := make([]TimeBucket, 0, 5)
	for _, label := range EngagementLevels() {
		bucket := TimeBucket{Label: label, Count: counts[label]}
		if total > 0 {
			bucket.Percent = round1(float64(bucket.Count) / float64(total) * 100)
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}

// DailyTrend groups responses by local calendar date in first-seen order.
// The caller may keep only the most recent N entries for display.
func DailyTrend(responses []api.Response) []DayStats {
	type bucket struct {
		total   int
		correct int
	}

	buckets := make(map[string]*bucket)
	order := make([]string, 0)

	for _, response := range responses {
		date := response.AnsweredAt.Local().Format("2006-01-02")
		entry, ok := buckets[date]
		if !ok {
			entry = &bucket{}
			buckets[date] = entry
			order = append(order, date)
		}
		entry.total++
		if response.IsCorrect {
			entry.correct++
		}
	}

	trend := make([]DayStats, 0, len(order))
	for _, date := range order {
		entry := buckets[date]
		trend = append(trend, DayStats{
			Date:      date,
			Responses: entry.total,
			Accuracy:  round1(float64(entry.correct) / float64(entry.total) * 100),
		})
	}
	return trend
}

func difficultyLabel(ratio float64) string {
	switch {
	case ratio < 0.4:
		return DifficultyHard
	case ratio < 0.7:
		return DifficultyMedium
	default:
		return DifficultyEasy
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
