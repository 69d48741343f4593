// Package spotify wraps the Spotify Web API for search and metadata
// lookups. Anonymous calls use the client-credentials grant; calls on a
// user's behalf use the OAuth token stored on the session.
package spotify

import (
	"context"
	"errors"
	"net/http"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ototana/ototana/internal/apperr"
)

// Client wraps the Spotify API client with app-shaped convenience methods.
type Client struct {
	api *spotify.Client
}

// NewClientCredentials creates a Client using the app-level (non-user)
// grant. The oauth2 transport caches the bearer token and reacquires it
// only on expiry. Returns a configuration error when either credential is
// empty.
func NewClientCredentials(ctx context.Context, clientID, clientSecret string) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, apperr.Configuration("missing Spotify client id or secret")
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := config.Client(ctx)

	return &Client{api: spotify.New(httpClient, spotify.WithRetry(true))}, nil
}

// NewWithToken creates a Client acting as the user who owns the OAuth
// token. auth must be the authenticator the token was issued through so
// refreshes work.
func NewWithToken(ctx context.Context, auth *spotifyauth.Authenticator, token *oauth2.Token) *Client {
	return &Client{api: spotify.New(auth.Client(ctx, token), spotify.WithRetry(true))}
}

// Token reports the OAuth token the client currently holds, including any
// refresh the oauth2 transport performed mid-run. Callers that loaded the
// token from storage should write it back when it changed.
func (c *Client) Token() (*oauth2.Token, error) {
	return c.api.Token()
}

// newWithHTTPClient is a test seam.
func newWithHTTPClient(httpClient *http.Client, opts ...spotify.ClientOption) *Client {
	return &Client{api: spotify.New(httpClient, opts...)}
}

// upstreamErr converts a zmb3 error into an UpstreamError carrying the
// Spotify status code for pass-through.
func upstreamErr(message string, err error) error {
	var serr spotify.Error
	if errors.As(err, &serr) {
		return apperr.Upstream(message, serr.Status, err)
	}
	return apperr.Upstream(message, 0, err)
}
