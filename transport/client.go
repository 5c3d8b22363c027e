// Package transport performs outbound HTTP calls to the job board backend,
// attaching the current access token and transparently refreshing it on a 401.
//
// A request is replayed at most once after a successful refresh; a second 401
// is surfaced as an expired session rather than retried again. Concurrent
// requests that hit a 401 at the same time share one in-flight refresh call,
// so the refresh endpoint is never invoked redundantly and a stale access
// token can never overwrite a newer one.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/openjobs/go-jobboard/credentials"
	apperrors "github.com/openjobs/go-jobboard/internal/errors"
)

const (
	refreshPath  = "/auth/refresh-token"
	contentJSON  = "application/json"
	refreshGroup = "refresh"
)

// Client is the authenticated transport. It owns no session state itself but
// reads and writes the credential store as part of the refresh protocol.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	store         credentials.Store
	refreshing    singleflight.Group
	onAuthExpired func()
}

// Option modifies a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client (primarily for testing
// and for callers that need custom timeouts).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithOnAuthExpired sets the hook invoked after the credential store has been
// cleared because a refresh was impossible or refused. The hosting
// application decides what "navigate to login" means.
func WithOnAuthExpired(hook func()) Option {
	return func(c *Client) {
		c.onAuthExpired = hook
	}
}

// New creates a Client rooted at baseURL (e.g. "http://localhost:8080/api").
func New(baseURL string, store credentials.Store, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[transport.New] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[transport.New] credential store is required")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		store:      store,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do issues one logical call with current-credential attachment and
// exactly-once silent-refresh-and-retry semantics. body (when non-nil) is
// marshalled to JSON; out (when non-nil) receives the decoded response.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.Do] json.Marshal")
		}
		payload = data
	}
	return c.DoRaw(ctx, method, path, contentJSON, payload, out)
}

// DoRaw is Do with a caller-supplied content type and pre-encoded body,
// used for multipart uploads. The body is fully buffered so the request can
// be replayed after a refresh.
func (c *Client) DoRaw(ctx context.Context, method, path, contentType string, payload []byte, out interface{}) error {
	cred, err := c.store.Get()
	if err != nil {
		return errors.Wrap(err, "[Client.DoRaw] store.Get")
	}

	accessToken := ""
	if cred != nil {
		accessToken = cred.AccessToken
	}

	status, respBody, err := c.dispatch(ctx, method, path, contentType, payload, accessToken)
	if err != nil {
		return err
	}

	if status != http.StatusUnauthorized || accessToken == "" {
		// The refresh protocol only applies to rejected access tokens. A
		// 401 on a request that carried none (a failed login, say) is an
		// ordinary backend rejection and must keep its message.
		return decodeResponse(status, respBody, out)
	}

	// First 401: refresh once, sharing any in-flight refresh with
	// concurrent callers, then replay the original request.
	newCred, err := c.refreshCredential(ctx)
	if err != nil {
		return err
	}

	status, respBody, err = c.dispatch(ctx, method, path, contentType, payload, newCred.AccessToken)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		// Already retried once. Surface expiry, never loop.
		return errors.Wrap(apperrors.ErrAuthExpired, "[Client.DoRaw] request rejected after refresh")
	}
	return decodeResponse(status, respBody, out)
}

// dispatch sends one HTTP request and returns the status and buffered body.
// Failure to obtain any response is a network failure.
func (c *Client) dispatch(ctx context.Context, method, path, contentType string, payload []byte, accessToken string) (int, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "[Client.dispatch] http.NewRequestWithContext")
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, errors.Wrapf(apperrors.ErrNetworkFailure, "[Client.dispatch] %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrapf(apperrors.ErrNetworkFailure, "[Client.dispatch] reading response: %v", err)
	}
	return resp.StatusCode, respBody, nil
}

// refreshCredential drives the refresh protocol. All concurrent callers are
// coalesced into a single refresh call; each receives the same new Credential
// or the same failure.
func (c *Client) refreshCredential(ctx context.Context) (*credentials.Credential, error) {
	result, err, _ := c.refreshing.Do(refreshGroup, func() (interface{}, error) {
		cred, err := c.store.Get()
		if err != nil {
			return nil, errors.Wrap(err, "[Client.refreshCredential] store.Get")
		}
		if cred == nil || cred.RefreshToken == "" {
			return nil, errors.New("no refresh token available")
		}

		newCred, err := c.callRefreshEndpoint(ctx, cred)
		if err != nil {
			return nil, err
		}

		// Both tokens are stored together: a concurrent reader never
		// sees the new access token next to a stale refresh token.
		if err := c.store.Set(*newCred); err != nil {
			return nil, errors.Wrap(err, "[Client.refreshCredential] store.Set")
		}
		return newCred, nil
	})
	c.refreshing.Forget(refreshGroup)

	if err != nil {
		log.Warn().Err(err).Msg("token refresh failed, session expired")
		c.expireSession()
		return nil, errors.Wrap(apperrors.ErrAuthExpired, err.Error())
	}
	return result.(*credentials.Credential), nil
}

// callRefreshEndpoint asks the backend for a new access token. The request is
// deliberately sent outside the authenticated path: a 401 here must not
// recurse into another refresh.
func (c *Client) callRefreshEndpoint(ctx context.Context, cred *credentials.Credential) (*credentials.Credential, error) {
	reqBody := struct {
		RefreshToken string `json:"refreshToken"`
	}{RefreshToken: cred.RefreshToken}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.callRefreshEndpoint] json.Marshal")
	}

	status, respBody, err := c.dispatch(ctx, http.MethodPost, refreshPath, contentJSON, payload, "")
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, newAPIError(status, respBody)
	}

	var tokenResp struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return nil, errors.Wrap(err, "[Client.callRefreshEndpoint] json.Unmarshal")
	}
	if tokenResp.Token == "" {
		return nil, errors.New("refresh response missing token")
	}

	newCred := &credentials.Credential{
		AccessToken:  tokenResp.Token,
		RefreshToken: cred.RefreshToken,
	}
	// The refresh token only changes when the backend rotates it.
	if tokenResp.RefreshToken != "" {
		newCred.RefreshToken = tokenResp.RefreshToken
	}
	log.Debug().Msg("access token refreshed")
	return newCred, nil
}

// expireSession clears the stored credential and notifies the host that
// re-authentication is required.
func (c *Client) expireSession() {
	if err := c.store.Clear(); err != nil {
		log.Error().Err(err).Msg("failed clearing credential store")
	}
	if c.onAuthExpired != nil {
		c.onAuthExpired()
	}
}

func decodeResponse(status int, respBody []byte, out interface{}) error {
	if status < 200 || status > 299 {
		return newAPIError(status, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "[transport.decodeResponse] json.Unmarshal")
	}
	return nil
}
