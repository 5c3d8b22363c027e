package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openjobs/go-jobboard/credentials"
	"github.com/openjobs/go-jobboard/credentials/storefakes"
	apperrors "github.com/openjobs/go-jobboard/internal/errors"
	"github.com/openjobs/go-jobboard/session"
	"github.com/openjobs/go-jobboard/transport"
	"github.com/openjobs/go-jobboard/users"
)

const (
	testEmail    = "alex@example.com"
	testPassword = "Password123"
	accessToken  = "valid-access"
	refreshToken = "valid-refresh"
)

// backend is a scripted job board API for session tests.
type backend struct {
	server *httptest.Server

	requests  int32 // every request increments this
	savedJobs []map[string]string
	saveCalls int32

	rejectLogin    bool
	rejectRegister bool
	rejectWhoAmI   bool
	rejectSave     int // HTTP status to reject saves with, 0 accepts
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		savedJobs: []map[string]string{},
	}

	user := users.User{ID: "user-1", Email: testEmail, FirstName: "Alex", LastName: "Kim", Role: users.RoleUser}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		if b.rejectLogin {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"token":        accessToken,
			"refreshToken": refreshToken,
			"user":         user,
		})
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		if b.rejectRegister {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "email already registered"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"token":        accessToken,
			"refreshToken": refreshToken,
			"user":         user,
		})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if b.rejectWhoAmI || r.Header.Get("Authorization") != "Bearer "+accessToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid or expired token"})
			return
		}
		writeJSON(w, http.StatusOK, user)
	})
	mux.HandleFunc("GET /users/saved-jobs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.savedJobs)
	})
	mux.HandleFunc("POST /jobs/{id}/save", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.saveCalls, 1)
		if r.Header.Get("Authorization") != "Bearer "+accessToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid or expired token"})
			return
		}
		if b.rejectSave != 0 {
			writeJSON(w, b.rejectSave, map[string]string{"message": "save rejected"})
			return
		}
		b.savedJobs = append(b.savedJobs, map[string]string{"id": r.PathValue("id")})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("DELETE /jobs/{id}/save", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
	})

	counting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.requests, 1)
		mux.ServeHTTP(w, r)
	})

	b.server = httptest.NewServer(counting)
	t.Cleanup(b.server.Close)
	return b
}

type fixture struct {
	backend *backend
	store   *storefakes.FakeStore
	manager *session.Manager
}

func setup(t *testing.T) *fixture {
	t.Helper()

	b := newBackend(t)
	store := storefakes.NewFakeStore()

	var manager *session.Manager
	client, err := transport.New(b.server.URL, store,
		transport.WithOnAuthExpired(func() {
			if manager != nil {
				manager.Expire()
			}
		}),
	)
	require.NoError(t, err)

	manager, err = session.NewManager(client, store)
	require.NoError(t, err)

	return &fixture{backend: b, store: store, manager: manager}
}

func TestBootstrapAnonymousWithoutCredential(t *testing.T) {
	f := setup(t)

	sess := f.manager.Bootstrap(context.Background())

	require.Nil(t, sess.User)
	require.Empty(t, sess.SavedJobIDs)
	require.EqualValues(t, 0, atomic.LoadInt32(&f.backend.requests), "anonymous bootstrap must not touch the network")
}

func TestBootstrapRestoresSession(t *testing.T) {
	f := setup(t)
	f.backend.savedJobs = []map[string]string{{"id": "job-7"}}
	require.NoError(t, f.store.Set(credentials.Credential{AccessToken: accessToken, RefreshToken: refreshToken}))

	sess := f.manager.Bootstrap(context.Background())

	require.True(t, sess.IsLoggedIn())
	require.Equal(t, testEmail, sess.User.Email)
	require.True(t, sess.HasSavedJob("job-7"))
}

func TestBootstrapNeverFailsVisibly(t *testing.T) {
	f := setup(t)
	f.backend.rejectWhoAmI = true
	require.NoError(t, f.store.Set(credentials.Credential{AccessToken: accessToken, RefreshToken: "dead-refresh"}))

	// The stored token is rejected and the refresh refused; bootstrap
	// still comes back anonymous with no error surfaced.
	sess := f.manager.Bootstrap(context.Background())

	require.Nil(t, sess.User)
	require.Empty(t, sess.SavedJobIDs)
}

func TestLoginPopulatesSessionAndSavedJobs(t *testing.T) {
	f := setup(t)
	f.backend.savedJobs = []map[string]string{{"id": "job-1"}, {"id": "job-2"}}

	sess, err := f.manager.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	require.True(t, sess.IsLoggedIn())
	require.Equal(t, testEmail, sess.User.Email)
	require.Len(t, sess.SavedJobIDs, 2)
	require.True(t, sess.HasSavedJob("job-1"))
	require.True(t, sess.HasSavedJob("job-2"))

	cred, err := f.store.Get()
	require.NoError(t, err)
	require.NotNil(t, cred)
	require.Equal(t, accessToken, cred.AccessToken)
	require.Equal(t, refreshToken, cred.RefreshToken)
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := setup(t)
	f.backend.rejectLogin = true

	sess, err := f.manager.Login(context.Background(), testEmail, "wrong")
	require.ErrorIs(t, err, apperrors.ErrAuthFailed)
	require.Contains(t, err.Error(), "invalid email or password", "backend message is surfaced")
	require.Nil(t, sess.User)

	cred, err := f.store.Get()
	require.NoError(t, err)
	require.Nil(t, cred, "no credential stored after a failed login")
}

func TestRegisterStartsWithEmptySavedSet(t *testing.T) {
	f := setup(t)
	// Even if the account somehow had saved jobs server-side, a fresh
	// registration starts from an empty local set.
	f.backend.savedJobs = []map[string]string{{"id": "job-9"}}

	sess, err := f.manager.Register(context.Background(), session.RegisterRequest{
		Email:     testEmail,
		Password:  testPassword,
		FirstName: "Alex",
		LastName:  "Kim",
	})
	require.NoError(t, err)
	require.True(t, sess.IsLoggedIn())
	require.Empty(t, sess.SavedJobIDs)
}

func TestRegisterDuplicate(t *testing.T) {
	f := setup(t)
	f.backend.rejectRegister = true

	_, err := f.manager.Register(context.Background(), session.RegisterRequest{
		Email:    testEmail,
		Password: testPassword,
	})
	require.ErrorIs(t, err, apperrors.ErrRegistrationFailed)
	require.Contains(t, err.Error(), "email already registered")
}

func TestLogoutAlwaysClearsLocalState(t *testing.T) {
	f := setup(t)
	_, err := f.manager.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	// Take the backend down entirely; logout must still clear local state.
	f.backend.server.Close()

	sess := f.manager.Logout(context.Background())
	require.Nil(t, sess.User)
	require.Empty(t, sess.SavedJobIDs)

	cred, err := f.store.Get()
	require.NoError(t, err)
	require.Nil(t, cred)

	require.False(t, f.manager.Current().IsLoggedIn())
}

func TestSaveJobMirrorsServerState(t *testing.T) {
	f := setup(t)
	_, err := f.manager.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	require.NoError(t, f.manager.SaveJob(context.Background(), "job-42"))
	require.True(t, f.manager.Current().HasSavedJob("job-42"))
	require.Len(t, f.manager.Current().SavedJobIDs, 1)
}

func TestSaveJobDoubleClick(t *testing.T) {
	f := setup(t)
	_, err := f.manager.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	require.NoError(t, f.manager.SaveJob(context.Background(), "job-42"))

	// Second click: the backend rejects the duplicate save. The error is
	// surfaced but the existing entry must survive, and there is never a
	// second entry for the same job.
	f.backend.rejectSave = http.StatusConflict
	err = f.manager.SaveJob(context.Background(), "job-42")
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrDuplicate)

	current := f.manager.Current()
	require.True(t, current.HasSavedJob("job-42"))
	require.Len(t, current.SavedJobIDs, 1)
	require.EqualValues(t, 2, atomic.LoadInt32(&f.backend.saveCalls))
}

func TestUnsaveJobFailureLeavesSetUntouched(t *testing.T) {
	f := setup(t)
	_, err := f.manager.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.NoError(t, f.manager.SaveJob(context.Background(), "job-42"))

	// The scripted backend always fails unsaves with a 500.
	err = f.manager.UnsaveJob(context.Background(), "job-42")
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrOperationFailed)
	require.True(t, f.manager.Current().HasSavedJob("job-42"), "local set untouched on backend failure")
}

func TestForcedExpiryResetsSession(t *testing.T) {
	f := setup(t)
	_, err := f.manager.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.True(t, f.manager.Current().IsLoggedIn())

	// Invalidate the access token and make the refresh token useless; the
	// next authenticated call forces a logout through the expiry hook.
	require.NoError(t, f.store.Set(credentials.Credential{AccessToken: "garbage", RefreshToken: "garbage"}))
	f.backend.rejectWhoAmI = true

	err = f.manager.SaveJob(context.Background(), "job-1")
	require.Error(t, err)

	require.False(t, f.manager.Current().IsLoggedIn(), "session reset after forced expiry")
	cred, err := f.store.Get()
	require.NoError(t, err)
	require.Nil(t, cred)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
