package analytics

import (
	"time"

	"questify/internal/api"
)

// FilterByClass keeps responses belonging to the given class. An empty class
// id means no filtering. Responses with a missing class reference never match
// a concrete class.
func FilterByClass(responses []api.Response, classID string) []api.Response {
	if classID == "" {
		return responses
	}

	filtered := make([]api.Response, 0, len(responses))
	for _, response := range responses {
		if response.Class != nil && response.Class.ID == classID {
			filtered = append(filtered, response)
		}
	}
	return filtered
}

// FilterSince keeps responses answered at or after the cutoff.
func FilterSince(responses []api.Response, cutoff time.Time) []api.Response {
	filtered := make([]api.Response, 0, len(responses))
	for _, response := range responses {
		if !response.AnsweredAt.Before(cutoff) {
			filtered = append(filtered, response)
		}
	}
	return filtered
}

// LastDays keeps responses from the trailing window of whole days, the way
// the dashboard's 7/30/90-day presets work. days <= 0 means no filtering.
func LastDays(responses []api.Response, days int, now time.Time) []api.Response {
	if days <= 0 {
		return responses
	}
	return FilterSince(responses, now.AddDate(0, 0, -days))
}
