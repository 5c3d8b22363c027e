package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openjobs/go-jobboard/credentials"
	"github.com/openjobs/go-jobboard/credentials/storefakes"
	apperrors "github.com/openjobs/go-jobboard/internal/errors"
	"github.com/openjobs/go-jobboard/transport"
)

const (
	staleAccessToken = "stale-access"
	freshAccessToken = "fresh-access"
	goodRefreshToken = "good-refresh"
)

type fixture struct {
	store        *storefakes.FakeStore
	client       *transport.Client
	backend      *httptest.Server
	refreshCalls int32
	dataCalls    int32
	expiredFired int32
}

// newFixture wires a client against a backend that serves /data to fresh
// access tokens and refreshes good refresh tokens.
func newFixture(t *testing.T, rotatedRefreshToken string) *fixture {
	t.Helper()

	f := &fixture{store: storefakes.NewFakeStore()}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.refreshCalls, 1)
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		readJSON(t, r, &req)
		if req.RefreshToken != goodRefreshToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid refresh token"})
			return
		}
		resp := map[string]string{"token": freshAccessToken}
		if rotatedRefreshToken != "" {
			resp["refreshToken"] = rotatedRefreshToken
		}
		writeJSON(w, http.StatusOK, resp)
	})
	mux.HandleFunc("GET /data", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.dataCalls, 1)
		if r.Header.Get("Authorization") != "Bearer "+freshAccessToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"value": "payload"})
	})
	f.backend = httptest.NewServer(mux)
	t.Cleanup(f.backend.Close)

	client, err := transport.New(f.backend.URL, f.store,
		transport.WithOnAuthExpired(func() { atomic.AddInt32(&f.expiredFired, 1) }),
	)
	require.NoError(t, err)
	f.client = client
	return f
}

func (f *fixture) setCredential(access, refresh string) {
	_ = f.store.Set(credentials.Credential{AccessToken: access, RefreshToken: refresh})
}

func TestDoReturnsDataForValidToken(t *testing.T) {
	f := newFixture(t, "")
	f.setCredential(freshAccessToken, goodRefreshToken)

	var out struct {
		Value string `json:"value"`
	}
	require.NoError(t, f.client.Get(context.Background(), "/data", &out))
	require.Equal(t, "payload", out.Value)
	require.EqualValues(t, 0, f.refreshCalls)
}

func TestDoPassesThroughNonAuthErrors(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "missing field"})
	}))
	defer backend.Close()

	client, err := transport.New(backend.URL, storefakes.NewFakeStore())
	require.NoError(t, err)

	err = client.Post(context.Background(), "/things", map[string]string{}, nil)
	require.Error(t, err)

	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "missing field", apiErr.Message)
	require.ErrorIs(t, err, apperrors.ErrOperationFailed)
}

func TestUnauthenticatedRequestKeepsBackendRejection(t *testing.T) {
	f := newFixture(t, "")
	// Empty store: the request carries no bearer token, so a 401 is an
	// ordinary backend rejection, not an expired-token signal.

	err := f.client.Get(context.Background(), "/data", nil)
	require.Error(t, err)

	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "token expired", apiErr.Message, "backend message preserved")
	require.NotErrorIs(t, err, apperrors.ErrAuthExpired)

	require.EqualValues(t, 0, f.refreshCalls, "no refresh without an attached token")
	require.EqualValues(t, 0, f.expiredFired, "session not force-expired")
}

func TestSilentRefreshAndRetry(t *testing.T) {
	f := newFixture(t, "")
	f.setCredential(staleAccessToken, goodRefreshToken)

	var out struct {
		Value string `json:"value"`
	}
	require.NoError(t, f.client.Get(context.Background(), "/data", &out))
	require.Equal(t, "payload", out.Value, "caller sees the retried call's data, never the 401")

	require.EqualValues(t, 1, f.refreshCalls)
	require.EqualValues(t, 2, f.dataCalls, "original dispatch plus exactly one replay")
	require.EqualValues(t, 0, f.expiredFired)

	cred, err := f.store.Get()
	require.NoError(t, err)
	require.NotNil(t, cred)
	require.Equal(t, freshAccessToken, cred.AccessToken)
	require.Equal(t, goodRefreshToken, cred.RefreshToken, "refresh token unchanged when the backend does not rotate")
}

func TestRefreshRotationStoresBothTokensTogether(t *testing.T) {
	f := newFixture(t, "rotated-refresh")
	f.setCredential(staleAccessToken, goodRefreshToken)

	require.NoError(t, f.client.Get(context.Background(), "/data", nil))

	cred, err := f.store.Get()
	require.NoError(t, err)
	require.NotNil(t, cred)
	require.Equal(t, freshAccessToken, cred.AccessToken)
	require.Equal(t, "rotated-refresh", cred.RefreshToken)
}

func TestSingleRetryCap(t *testing.T) {
	store := storefakes.NewFakeStore()
	_ = store.Set(credentials.Credential{AccessToken: staleAccessToken, RefreshToken: goodRefreshToken})

	// The backend refreshes happily but refuses /data even afterwards.
	var refreshCalls, dataCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeJSON(w, http.StatusOK, map[string]string{"token": freshAccessToken})
	})
	mux.HandleFunc("GET /data", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&dataCalls, 1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "still unauthorized"})
	})
	stubborn := httptest.NewServer(mux)
	defer stubborn.Close()

	client, err := transport.New(stubborn.URL, store)
	require.NoError(t, err)

	err = client.Get(context.Background(), "/data", nil)
	require.ErrorIs(t, err, apperrors.ErrAuthExpired)
	require.EqualValues(t, 1, refreshCalls, "refresh is attempted at most once per call")
	require.EqualValues(t, 2, dataCalls, "the second 401 is not retried again")
}

func TestMissingRefreshTokenExpiresSession(t *testing.T) {
	f := newFixture(t, "")
	f.setCredential(staleAccessToken, "")

	err := f.client.Get(context.Background(), "/data", nil)
	require.ErrorIs(t, err, apperrors.ErrAuthExpired)
	require.EqualValues(t, 0, f.refreshCalls, "no refresh attempt without a refresh token")
	require.EqualValues(t, 1, f.expiredFired)

	cred, err := f.store.Get()
	require.NoError(t, err)
	require.Nil(t, cred, "credential store cleared")
}

func TestRefreshFailureExpiresSession(t *testing.T) {
	f := newFixture(t, "")
	f.setCredential(staleAccessToken, "revoked-refresh")

	err := f.client.Get(context.Background(), "/data", nil)
	require.ErrorIs(t, err, apperrors.ErrAuthExpired)
	require.EqualValues(t, 1, f.refreshCalls)
	require.EqualValues(t, 1, f.expiredFired)

	cred, err := f.store.Get()
	require.NoError(t, err)
	require.Nil(t, cred)
}

// TestConcurrentRefreshCoalesced holds several in-flight requests at their
// first 401 and releases them together: all waiters must share one refresh
// call instead of racing their own.
func TestConcurrentRefreshCoalesced(t *testing.T) {
	const concurrent = 8

	store := storefakes.NewFakeStore()
	_ = store.Set(credentials.Credential{AccessToken: staleAccessToken, RefreshToken: goodRefreshToken})

	var refreshCalls int32
	var arrived sync.WaitGroup
	arrived.Add(concurrent)
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		time.Sleep(100 * time.Millisecond) // keep the refresh slot occupied while waiters pile in
		writeJSON(w, http.StatusOK, map[string]string{"token": freshAccessToken})
	})
	mux.HandleFunc("GET /data", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+freshAccessToken {
			arrived.Done()
			<-release
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"value": "payload"})
	})
	backend := httptest.NewServer(mux)
	defer backend.Close()

	client, err := transport.New(backend.URL, store)
	require.NoError(t, err)

	go func() {
		arrived.Wait()
		close(release)
	}()

	var wg sync.WaitGroup
	errs := make([]error, concurrent)
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Get(context.Background(), "/data", nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "request %d", i)
	}
	require.EqualValues(t, 1, refreshCalls, "concurrent 401s must share a single refresh")
	require.EqualValues(t, 2, store.SetCalls, "the seed write plus a single write for the shared refresh")
}

func TestNetworkFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close() // deliberately unreachable

	client, err := transport.New(backend.URL, storefakes.NewFakeStore())
	require.NoError(t, err)

	err = client.Get(context.Background(), "/data", nil)
	require.ErrorIs(t, err, apperrors.ErrNetworkFailure)
}

func readJSON(t *testing.T, r *http.Request, out interface{}) {
	t.Helper()
	dec := jsonDecoder(r)
	require.NoError(t, dec.Decode(out))
}
