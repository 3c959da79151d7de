package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrServiceUnavailable wraps transport-level failures (connection refused,
	// timeout) so callers can tell them apart from backend rejections.
	ErrServiceUnavailable = errors.New("questify backend unavailable")

	// ErrInvalidRequest marks local validation failures. No network call was made.
	ErrInvalidRequest = errors.New("invalid request")
)

var validate = validator.New()

// APIError is a non-2xx backend reply with its decoded message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// AlreadyAnswered reports whether this error is the backend's duplicate-answer
// rejection. The match is a case-insensitive substring test on the message,
// which is the only contract the backend offers for it.
func (e *APIError) AlreadyAnswered() bool {
	return strings.Contains(strings.ToLower(e.Message), "already answered")
}

// IsAlreadyAnswered reports whether err is a duplicate-answer rejection.
func IsAlreadyAnswered(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.AlreadyAnswered()
}

// IsAuthFailure reports whether err is a 401 from the backend.
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Client is a thin wrapper over the Questify REST API. The bearer token is
// passed in explicitly per instance; there is no ambient singleton client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:5000/api"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		token:      strings.TrimSpace(token),
		httpClient: httpClient,
	}
}

// WithToken returns a copy of the client carrying a different bearer token.
// Used after login to upgrade an unauthenticated client.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = strings.TrimSpace(token)
	return &clone
}

// AssignedQuestions fetches the caller's assigned-question feed.
func (c *Client) AssignedQuestions(ctx context.Context) ([]AssignedQuestionView, error) {
	var views []AssignedQuestionView
	if err := c.doJSON(ctx, http.MethodGet, "/students/assigned-questions", nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// SubmitAnswer persists one answer. The request is validated locally before
// any network traffic; a duplicate-answer rejection comes back as an *APIError
// for which IsAlreadyAnswered returns true.
func (c *Client) SubmitAnswer(ctx context.Context, req SubmitAnswerRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return c.doJSON(ctx, http.MethodPost, "/students/submit-answer", req, nil)
}

// MyResponses fetches the caller's own response history.
func (c *Client) MyResponses(ctx context.Context) ([]Response, error) {
	var responses []Response
	if err := c.doJSON(ctx, http.MethodGet, "/responses/my", nil, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

// Leaderboard fetches the server-aggregated leaderboard, optionally narrowed
// to one class.
func (c *Client) Leaderboard(ctx context.Context, classID string) ([]LeaderboardRow, error) {
	path := "/leaderboard"
	if strings.TrimSpace(classID) != "" {
		query := url.Values{}
		query.Set("classId", classID)
		path += "?" + query.Encode()
	}

	var rows []LeaderboardRow
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Responses fetches raw response records (admin) with optional filters.
func (c *Client) Responses(ctx context.Context, filter ResponsesFilter) ([]Response, error) {
	query := url.Values{}
	if filter.ClassID != "" {
		query.Set("classId", filter.ClassID)
	}
	if filter.StudentID != "" {
		query.Set("studentId", filter.StudentID)
	}
	if filter.AssignmentID != "" {
		query.Set("assignmentId", filter.AssignmentID)
	}

	path := "/responses"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var responses []Response
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(response)
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}

func decodeAPIError(response *http.Response) error {
	apiErr := &APIError{StatusCode: response.StatusCode}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Message) != "" {
		apiErr.Message = payload.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = response.Status
	}
	return apiErr
}
