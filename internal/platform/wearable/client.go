// Package wearable is the client for the external wearable-health-data
// provider: user linkage, connection codes, sync requests and on-demand
// reading fetches. API credentials are exchanged for a bearer token that is
// cached on the client and refreshed lazily when it nears expiry.
package wearable

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

var (
	// ErrAuthFailed means the provider rejected our credentials or token.
	ErrAuthFailed = errors.New("wearable provider authentication failed")
	// ErrRequestFailed means a provider operation failed for a non-auth reason.
	ErrRequestFailed = errors.New("wearable provider request failed")
)

// expirySlack is subtracted from the token lifetime so a token is never used
// right at its expiry boundary.
const expirySlack = 60 * time.Second

// LinkedUser is the provider-side account created for a patient.
type LinkedUser struct {
	UserID         string `json:"id"`
	ConnectionCode string `json:"connection_code"`
}

// Reading is a blood-pressure measurement as reported by the provider.
type Reading struct {
	Systolic  int       `json:"systolic"`
	Diastolic int       `json:"diastolic"`
	HeartRate int       `json:"heart_rate"`
	Timestamp time.Time `json:"timestamp"`
}

// Client talks to the wearable provider API.
type Client struct {
	http         *resty.Client
	clientID     string
	clientSecret string
	logger       zerolog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(baseURL, clientID, clientSecret string, logger zerolog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:         httpClient,
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// bearerToken returns the cached token, refreshing it first if it has
// expired. The refresh happens under the client mutex so concurrent callers
// trigger at most one token request.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	var tr tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
			"grant_type":    "client_credentials",
		}).
		SetResult(&tr).
		Post("/auth/token")
	if err != nil {
		return "", fmt.Errorf("%w: token request: %v", ErrAuthFailed, err)
	}
	if resp.IsError() || tr.AccessToken == "" {
		return "", fmt.Errorf("%w: token endpoint returned status %d", ErrAuthFailed, resp.StatusCode())
	}

	expiresIn := tr.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	c.token = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn)*time.Second - expirySlack)
	c.logger.Debug().Time("expires_at", c.tokenExpiry).Msg("refreshed wearable provider token")

	return c.token, nil
}

// mapError converts a non-2xx provider response into the error taxonomy.
func mapError(op string, resp *resty.Response) error {
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return fmt.Errorf("%w: %s returned status %d", ErrAuthFailed, op, resp.StatusCode())
	}
	return fmt.Errorf("%w: %s returned status %d", ErrRequestFailed, op, resp.StatusCode())
}

// CreateUser registers a provider account linked to the given external id and
// returns the provider user id along with a device connection code.
func (c *Client) CreateUser(ctx context.Context, externalID, email string) (*LinkedUser, error) {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	var user LinkedUser
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]string{"external_id": externalID, "email": email}).
		SetResult(&user).
		Post("/users")
	if err != nil {
		return nil, fmt.Errorf("%w: create user: %v", ErrRequestFailed, err)
	}
	if resp.IsError() {
		return nil, mapError("create user", resp)
	}

	c.logger.Info().Str("wearable_user_id", user.UserID).Msg("created wearable provider user")
	return &user, nil
}

// GetConnectionCode fetches a fresh device connection code for a linked user.
func (c *Client) GetConnectionCode(ctx context.Context, userID string) (string, error) {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return "", err
	}

	var out struct {
		ConnectionCode string `json:"connection_code"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&out).
		Get("/users/" + userID + "/connection-code")
	if err != nil {
		return "", fmt.Errorf("%w: get connection code: %v", ErrRequestFailed, err)
	}
	if resp.IsError() {
		return "", mapError("get connection code", resp)
	}
	return out.ConnectionCode, nil
}

// RequestSync asks the provider to push the user's latest health data.
func (c *Client) RequestSync(ctx context.Context, userID string) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Post("/users/" + userID + "/sync")
	if err != nil {
		return fmt.Errorf("%w: request sync: %v", ErrRequestFailed, err)
	}
	if resp.IsError() {
		return mapError("request sync", resp)
	}
	return nil
}

// GetLatestReading fetches the most recent blood-pressure reading for a
// linked user. Returns nil without error when the user has no readings yet.
func (c *Client) GetLatestReading(ctx context.Context, userID string) (*Reading, error) {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	var out struct {
		Readings []Reading `json:"readings"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&out).
		Get("/users/" + userID + "/data/blood_pressure")
	if err != nil {
		return nil, fmt.Errorf("%w: get latest reading: %v", ErrRequestFailed, err)
	}
	if resp.IsError() {
		return nil, mapError("get latest reading", resp)
	}

	if len(out.Readings) == 0 {
		return nil, nil
	}
	// The provider orders readings newest first.
	return &out.Readings[0], nil
}
