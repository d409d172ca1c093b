package tower

import "fmt"

// APIError represents a non-success response from the Auth Tower API. The
// raw body is carried verbatim for diagnosis; the SDK never interprets it.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Status     string `json:"status"`
	Body       string `json:"body,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth tower api error: %s - %s", e.Status, e.Body)
}

// IsUnauthorized reports whether the error is a 401 response.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}
