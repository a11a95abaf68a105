package transport

import "net/http"

// Decorator is an http.RoundTripper that decorates the request before
// delegating to the base transport
type Decorator struct {
	Decorator func(*http.Request) error
	Base      http.RoundTripper
}

func (t *Decorator) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Decorator) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.Decorator(req); err != nil {
		return nil, err
	}

	return t.base().RoundTrip(req)
}

// DecorateHeaders returns a decorator that adds the given headers to each request
func DecorateHeaders(headers map[string]string) func(*http.Request) error {
	return func(req *http.Request) error {
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return nil
	}
}

// Default returns an http.Transport with default settings
func Default() *http.Transport {
	return http.DefaultTransport.(*http.Transport).Clone()
}
