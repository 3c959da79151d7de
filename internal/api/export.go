package api

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"time"
)

// Export formats supported by the backend. The client never parses export
// bodies, it only streams them through to the caller.
const (
	ExportJSON       = "json"
	ExportCSV        = "csv"
	ExportEdNetBasic = "ednet-basic"
	ExportEdNet      = "ednet"
)

var exportExtensions = map[string]string{
	ExportJSON:       "json",
	ExportCSV:        "csv",
	ExportEdNetBasic: "csv",
	ExportEdNet:      "csv",
}

// Export downloads one assignment's responses in the given format. The caller
// owns the returned body and must close it. The second return value is a file
// name, taken from Content-Disposition when the backend sets one.
func (c *Client) Export(ctx context.Context, format, assignmentID string, filter ResponsesFilter) (*http.Response, string, error) {
	extension, ok := exportExtensions[format]
	if !ok {
		return nil, "", fmt.Errorf("%w: unknown export format %q", ErrInvalidRequest, format)
	}
	if assignmentID == "" {
		return nil, "", fmt.Errorf("%w: assignment id is required", ErrInvalidRequest)
	}

	query := url.Values{}
	if filter.ClassID != "" {
		query.Set("classId", filter.ClassID)
	}
	if filter.StudentID != "" {
		query.Set("studentId", filter.StudentID)
	}

	path := "/responses/export/" + format + "/" + url.PathEscape(assignmentID)
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, "", err
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		err := decodeAPIError(response)
		_ = response.Body.Close()
		return nil, "", err
	}

	return response, exportFilename(response, format, extension), nil
}

func exportFilename(response *http.Response, format, extension string) string {
	if disposition := response.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; name != "" {
				return name
			}
		}
	}
	return fmt.Sprintf("responses_%s_%d.%s", format, time.Now().Unix(), extension)
}
