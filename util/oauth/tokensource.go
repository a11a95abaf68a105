package oauth

import (
	"sync"

	"golang.org/x/oauth2"
)

// TokenRefresher exchanges an expired token for a fresh one
type TokenRefresher interface {
	RefreshToken(token *oauth2.Token) (*oauth2.Token, error)
}

// TokenSource is an oauth2.TokenSource that refreshes through a TokenRefresher
type TokenSource struct {
	mu        sync.Mutex
	token     *oauth2.Token
	refresher TokenRefresher
}

// RefreshTokenSource creates a token source that refreshes expired tokens
// through the given refresher
func RefreshTokenSource(token *oauth2.Token, refresher TokenRefresher) oauth2.TokenSource {
	return &TokenSource{
		token:     token,
		refresher: refresher,
	}
}

func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token.Valid() {
		return ts.token, nil
	}

	token, err := ts.refresher.RefreshToken(ts.token)
	if err == nil {
		ts.token = token
	}

	return ts.token, err
}
