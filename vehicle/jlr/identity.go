package jlr

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/incontrol-io/incontrol/util"
	"github.com/incontrol-io/incontrol/util/oauth"
	"github.com/incontrol-io/incontrol/util/request"
	"golang.org/x/oauth2"
)

const (
	IFASBaseURI = "https://ifas.prod-row.jlrmotor.com/ifas/jlr"
	IFOPBaseURI = "https://ifop.prod-row.jlrmotor.com/ifop/jlr"
	IF9BaseURI  = "https://if9.prod-row.jlrmotor.com/if9/jlr"

	IFASBaseURIChina = "https://ifas.prod-chn.jlrmotor.com/ifas/jlr"
	IFOPBaseURIChina = "https://ifop.prod-chn.jlrmotor.com/ifop/jlr"
	IF9BaseURIChina  = "https://ifoa.prod-chn.jlrmotor.com/if9/jlr"
)

// basicAuth is the fixed client credential for the token endpoint
const basicAuth = "Basic YXM6YXNwYXNz"

// Identity performs the InControl login dance: password grant, device
// registration and user login. It implements oauth2.TokenSource.
type Identity struct {
	*request.Helper
	oauth2.TokenSource
	user     string
	password string
	deviceID string
	ifas     string
	ifop     string
	if9      string
	userID   string
}

type tokenResponse struct {
	oauth.Token
	AuthorizationToken string `json:"authorization_token"`
}

// UnmarshalJSON decodes the oauth attributes and the sibling
// authorization_token in one pass. The embedded oauth.Token would otherwise
// swallow the token endpoint's extra fields.
func (t *tokenResponse) UnmarshalJSON(data []byte) error {
	err := t.Token.UnmarshalJSON(data)

	if err == nil {
		var s struct {
			ExpiresIn          int    `json:"expires_in"`
			AuthorizationToken string `json:"authorization_token"`
		}

		if err = json.Unmarshal(data, &s); err == nil {
			t.ExpiresIn = s.ExpiresIn
			t.AuthorizationToken = s.AuthorizationToken
		}
	}

	return err
}

// NewIdentity creates the InControl identity handler. A fresh random device
// id is generated unless one is supplied.
func NewIdentity(log *util.Logger, user, password, deviceID string, chinaServers bool) *Identity {
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	v := &Identity{
		Helper:   request.NewHelper(log),
		user:     user,
		password: password,
		deviceID: deviceID,
		ifas:     IFASBaseURI,
		ifop:     IFOPBaseURI,
		if9:      IF9BaseURI,
	}

	if chinaServers {
		v.ifas = IFASBaseURIChina
		v.ifop = IFOPBaseURIChina
		v.if9 = IF9BaseURIChina
	}

	return v
}

// Login authenticates the account and registers the device
func (v *Identity) Login() error {
	token, err := v.authenticate(map[string]string{
		"grant_type": "password",
		"username":   v.user,
		"password":   v.password,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := v.registerDevice(token); err != nil {
		return fmt.Errorf("device registration failed: %w", err)
	}

	if err := v.loginUser(token); err != nil {
		return fmt.Errorf("user login failed: %w", err)
	}

	v.TokenSource = oauth.RefreshTokenSource(&token.Token.Token, v)

	return nil
}

// RefreshToken implements oauth.TokenRefresher
func (v *Identity) RefreshToken(token *oauth2.Token) (*oauth2.Token, error) {
	res, err := v.authenticate(map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": token.RefreshToken,
	})

	if err != nil {
		// refresh token expired, perform full login
		res, err = v.authenticate(map[string]string{
			"grant_type": "password",
			"username":   v.user,
			"password":   v.password,
		})
		if err == nil {
			err = v.registerDevice(res)
		}
	}

	if err != nil {
		return nil, err
	}

	return &res.Token.Token, nil
}

func (v *Identity) authenticate(data map[string]string) (*tokenResponse, error) {
	uri := fmt.Sprintf("%s/tokens", v.ifas)

	req, err := request.New(http.MethodPost, uri, request.MarshalJSON(data), map[string]string{
		"Authorization": basicAuth,
		"Content-Type":  request.JSONEncoding["Content-Type"],
		"X-Device-Id":   v.deviceID,
	})

	var res tokenResponse
	if err == nil {
		err = v.DoJSON(req, &res)
	}

	return &res, err
}

func (v *Identity) registerDevice(token *tokenResponse) error {
	uri := fmt.Sprintf("%s/users/%s/clients", v.ifop, v.user)

	data := map[string]interface{}{
		"access_token":        token.AccessToken,
		"authorization_token": token.AuthorizationToken,
		"expires_in":          fmt.Sprintf("%d", token.ExpiresIn),
		"deviceID":            v.deviceID,
	}

	req, err := request.New(http.MethodPost, uri, request.MarshalJSON(data), map[string]string{
		"Authorization": "Bearer " + token.AccessToken,
		"Content-Type":  request.JSONEncoding["Content-Type"],
		"X-Device-Id":   v.deviceID,
	})

	if err == nil {
		var resp *http.Response
		if resp, err = v.Do(req); err == nil {
			_, err = request.ReadBody(resp)
		}
	}

	return err
}

func (v *Identity) loginUser(token *tokenResponse) error {
	uri := fmt.Sprintf("%s/users?loginName=%s", v.if9, v.user)

	req, err := request.New(http.MethodGet, uri, nil, map[string]string{
		"Authorization": "Bearer " + token.AccessToken,
		"Accept":        "application/vnd.wirelesscar.ngtp.if9.User-v3+json",
		"X-Device-Id":   v.deviceID,
	})

	var res struct {
		UserID string `json:"userId"`
	}
	if err == nil {
		err = v.DoJSON(req, &res)
	}

	if err == nil && res.UserID == "" {
		err = fmt.Errorf("missing user id")
	}

	v.userID = res.UserID

	return err
}

// UserID returns the account's user id
func (v *Identity) UserID() string {
	return v.userID
}

// DeviceID returns the registered device id
func (v *Identity) DeviceID() string {
	return v.deviceID
}

// BaseURI returns the vehicle api base uri
func (v *Identity) BaseURI() string {
	return v.if9
}
