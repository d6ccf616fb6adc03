package services

import (
	"context"
	"errors"
	gohttp "net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/yuimaru-ship/storefront/app/models"
	"github.com/yuimaru-ship/storefront/pkg/http"
	"github.com/yuimaru-ship/storefront/pkg/metrics"
)

// IdentityConfig describes the hosted OAuth provider. Domain is the base of
// its /login, /logout, /oauth2/token and /oauth2/userInfo endpoints.
type IdentityConfig struct {
	Domain      string
	ClientID    string
	RedirectURI string
	Scopes      []string
	Timeout     time.Duration
}

// IdentityProvider runs the authorization-code grant against the provider.
type IdentityProvider struct {
	cfg    IdentityConfig
	oauth  *oauth2.Config
	client *gohttp.Client
}

func NewIdentityProvider(cfg IdentityConfig, hc *gohttp.Client) *IdentityProvider {
	if hc == nil {
		hc = http.DefaultClient
	}
	domain := strings.TrimRight(cfg.Domain, "/")
	cfg.Domain = domain
	return &IdentityProvider{
		cfg:    cfg,
		client: hc,
		oauth: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURI,
			Scopes:      cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   domain + "/login",
				TokenURL:  domain + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// LoginURL is the hosted login page; state is echoed back on the callback.
func (p *IdentityProvider) LoginURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// LogoutURL is the hosted logout page, returning to the redirect URI.
func (p *IdentityProvider) LogoutURL() string {
	q := url.Values{}
	q.Set("client_id", p.cfg.ClientID)
	q.Set("logout_uri", p.cfg.RedirectURI)
	return p.cfg.Domain + "/logout?" + q.Encode()
}

// Exchange trades an authorization code for access, refresh and ID tokens.
func (p *IdentityProvider) Exchange(ctx context.Context, code string) (models.Tokens, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)

	start := time.Now()
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		status := 0
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			status = re.Response.StatusCode
		}
		metrics.ObserveUpstream("identity.token", status, start)
		return models.Tokens{}, &TokenExchangeError{Status: status, Err: err}
	}
	metrics.ObserveUpstream("identity.token", gohttp.StatusOK, start)

	idToken, _ := tok.Extra("id_token").(string)
	return models.Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		IDToken:      idToken,
	}, nil
}

type userInfoResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Sub   string `json:"sub"`
}

// UserInfo fetches the profile of the access token's owner. Name falls back
// to the e-mail address.
func (p *IdentityProvider) UserInfo(ctx context.Context, accessToken string) (*models.User, error) {
	resp, err := http.Get(p.cfg.Domain+"/oauth2/userInfo").
		Bearer(accessToken).
		Client(p.client).
		Service("identity.userinfo").
		Timeout(p.cfg.Timeout).
		WithContext(ctx).
		Send()
	if err != nil {
		return nil, &UserInfoError{Err: err}
	}
	if err := resp.Throw(); err != nil {
		return nil, &UserInfoError{Status: resp.StatusCode, Err: err}
	}

	var info userInfoResponse
	if err := resp.JSON(&info); err != nil {
		return nil, &UserInfoError{Status: resp.StatusCode, Err: err}
	}

	user := &models.User{Email: info.Email, Name: info.Name, Subject: info.Sub}
	if user.Name == "" {
		user.Name = user.Email
	}
	return user, nil
}
