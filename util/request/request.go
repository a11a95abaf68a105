package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Timeout is the default request timeout used by the Helper
var Timeout = 10 * time.Second

// JSONEncoding specifies application/json headers
var JSONEncoding = map[string]string{
	"Content-Type": "application/json",
	"Accept":       "application/json",
}

// AcceptJSON accepting application/json
var AcceptJSON = map[string]string{
	"Accept": "application/json",
}

// New builds an http request with headers and body
func New(method, uri string, body io.Reader, headers ...map[string]string) (*http.Request, error) {
	req, err := http.NewRequest(method, uri, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	for _, headers := range headers {
		for k, v := range headers {
			req.Header.Set(k, v)
		}
	}

	return req, nil
}

// MarshalJSON marshals data and returns an io.Reader
func MarshalJSON(data interface{}) io.Reader {
	body, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}

	return bytes.NewReader(body)
}

// StatusError indicates an unexpected response status code
type StatusError struct {
	resp *http.Response
}

// NewStatusError creates a status error for the given response
func NewStatusError(resp *http.Response) StatusError {
	return StatusError{resp: resp}
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d (%s)", e.resp.StatusCode, http.StatusText(e.resp.StatusCode))
}

// Response returns the response with the unexpected status
func (e StatusError) Response() *http.Response {
	return e.resp
}

// StatusCode returns the response status code
func (e StatusError) StatusCode() int {
	return e.resp.StatusCode
}

// HasStatus returns true if the response status matches any of the given codes
func (e StatusError) HasStatus(codes ...int) bool {
	for _, code := range codes {
		if e.resp.StatusCode == code {
			return true
		}
	}
	return false
}
