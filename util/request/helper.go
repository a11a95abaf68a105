package request

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/incontrol-io/incontrol/util"
	"github.com/incontrol-io/incontrol/util/transport"
)

// Helper provides utility primitives
type Helper struct {
	*http.Client
}

// NewHelper creates http helper for simplified client usage
func NewHelper(log *util.Logger) *Helper {
	return &Helper{
		Client: &http.Client{
			Timeout:   Timeout,
			Transport: NewTripper(log, transport.Default()),
		},
	}
}

// DoBody executes HTTP request and returns the response body
func (r *Helper) DoBody(req *http.Request) ([]byte, error) {
	resp, err := r.Do(req)
	var body []byte
	if err == nil {
		body, err = ReadBody(resp)
	}
	return body, err
}

// GetBody executes HTTP GET request and returns the response body
func (r *Helper) GetBody(uri string) ([]byte, error) {
	resp, err := r.Get(uri)
	var body []byte
	if err == nil {
		body, err = ReadBody(resp)
	}
	return body, err
}

// DoJSON executes HTTP request and decodes JSON response.
// It returns a StatusError on response codes other than HTTP 2xx.
func (r *Helper) DoJSON(req *http.Request, res interface{}) error {
	resp, err := r.Do(req)
	if err == nil {
		defer resp.Body.Close()
		err = DecodeJSON(resp, res)
	}
	return err
}

// GetJSON executes HTTP GET request and decodes JSON response.
// It returns a StatusError on response codes other than HTTP 2xx.
func (r *Helper) GetJSON(uri string, res interface{}) error {
	req, err := New(http.MethodGet, uri, nil, AcceptJSON)
	if err == nil {
		err = r.DoJSON(req, res)
	}
	return err
}

// ReadBody reads HTTP response and returns its body
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err == nil && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		err = NewStatusError(resp)
	}
	return b, err
}

// DecodeJSON decodes HTTP response into JSON.
// It returns a StatusError on response codes other than HTTP 2xx.
func DecodeJSON(resp *http.Response, res interface{}) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return NewStatusError(resp)
	}

	if resp.ContentLength == 0 {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil && err != io.EOF {
		return err
	}

	return nil
}
