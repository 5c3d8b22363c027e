// Package session holds the client-side representation of the authenticated
// user and their saved jobs. All mutation goes through the Manager's
// operations; views read a snapshot and never write state directly.
package session

import (
	"context"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/openjobs/go-jobboard/credentials"
	apperrors "github.com/openjobs/go-jobboard/internal/errors"
	"github.com/openjobs/go-jobboard/transport"
	"github.com/openjobs/go-jobboard/users"
)

// Session is a snapshot of the current session state. User == nil means
// anonymous; SavedJobIDs is always empty when anonymous.
type Session struct {
	User        *users.User
	SavedJobIDs map[string]struct{}
}

// Anonymous returns the anonymous session.
func Anonymous() Session {
	return Session{SavedJobIDs: map[string]struct{}{}}
}

// IsLoggedIn reports whether the session has an authenticated user.
func (s Session) IsLoggedIn() bool {
	return s.User != nil
}

// HasSavedJob reports whether jobID is in the saved set.
func (s Session) HasSavedJob(jobID string) bool {
	_, ok := s.SavedJobIDs[jobID]
	return ok
}

// authResponse is the body returned by login and registration.
type authResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         *users.User `json:"user"`
}

// savedJob is the subset of the saved-jobs listing the session tracks.
type savedJob struct {
	ID string `json:"id"`
}

// RegisterRequest carries the profile fields sent at registration.
type RegisterRequest struct {
	Email     string         `json:"email"`
	Password  string         `json:"password"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Role      users.RoleType `json:"role,omitempty"`
}

// Manager owns the session state and the operations that mutate it.
type Manager struct {
	client *transport.Client
	store  credentials.Store

	lock        sync.RWMutex
	user        *users.User
	savedJobIDs map[string]struct{}
}

// NewManager creates a session Manager on top of the authenticated transport
// and the credential store the transport shares.
func NewManager(client *transport.Client, store credentials.Store) (*Manager, error) {
	if client == nil {
		return nil, errors.New("[session.NewManager] transport client is required")
	}
	if store == nil {
		return nil, errors.New("[session.NewManager] credential store is required")
	}
	return &Manager{
		client:      client,
		store:       store,
		savedJobIDs: map[string]struct{}{},
	}, nil
}

// Current returns a snapshot of the session.
func (m *Manager) Current() Session {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.snapshotLocked()
}

// Bootstrap restores the session from any persisted credential. It makes no
// network call when no access token is stored, and it never fails visibly:
// a rejected or unreachable backend yields an anonymous session so startup is
// never blocked by an expired credential.
func (m *Manager) Bootstrap(ctx context.Context) Session {
	cred, err := m.store.Get()
	if err != nil || cred == nil || cred.AccessToken == "" {
		return m.reset()
	}

	var user users.User
	if err := m.client.Get(ctx, "/auth/me", &user); err != nil {
		log.Debug().Err(err).Msg("session bootstrap fell back to anonymous")
		return m.reset()
	}

	saved, err := m.fetchSavedJobIDs(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("saved jobs unavailable during bootstrap")
		saved = map[string]struct{}{}
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.user = &user
	m.savedJobIDs = saved
	return m.snapshotLocked()
}

// Login authenticates with the backend, stores the returned credential pair
// and populates the session. Invalid credentials fail with ErrAuthFailed.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var resp authResponse
	if err := m.client.Post(ctx, "/auth/login", req, &resp); err != nil {
		return Anonymous(), loginError(err)
	}

	if err := m.establish(resp); err != nil {
		return Anonymous(), err
	}

	saved, err := m.fetchSavedJobIDs(ctx)
	if err != nil {
		saved = map[string]struct{}{}
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.savedJobIDs = saved
	return m.snapshotLocked(), nil
}

// Register creates an account, stores the returned credential pair and
// populates the session with an empty saved-jobs set. Validation and
// duplicate errors fail with ErrRegistrationFailed.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	var resp authResponse
	if err := m.client.Post(ctx, "/auth/register", req, &resp); err != nil {
		return Anonymous(), registerError(err)
	}

	if err := m.establish(resp); err != nil {
		return Anonymous(), err
	}
	return m.Current(), nil
}

// Logout clears the credential store and resets the session to anonymous.
// The backend is not involved: session termination is client-local, and local
// state is always cleared.
func (m *Manager) Logout(ctx context.Context) Session {
	if err := m.store.Clear(); err != nil {
		log.Error().Err(err).Msg("failed clearing credentials at logout")
	}
	return m.reset()
}

// SaveJob marks a job as saved for the current user. The backend call runs
// first; the local set only mirrors a successful save, so a rejected call
// leaves the session untouched. Requires a logged-in session.
func (m *Manager) SaveJob(ctx context.Context, jobID string) error {
	if err := m.client.Post(ctx, "/jobs/"+jobID+"/save", nil, nil); err != nil {
		return errors.Wrap(err, "[Manager.SaveJob]")
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.savedJobIDs[jobID] = struct{}{}
	return nil
}

// UnsaveJob removes a job from the saved set, backend first.
func (m *Manager) UnsaveJob(ctx context.Context, jobID string) error {
	if err := m.client.Delete(ctx, "/jobs/"+jobID+"/save", nil); err != nil {
		return errors.Wrap(err, "[Manager.UnsaveJob]")
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.savedJobIDs, jobID)
	return nil
}

// Expire resets the session to anonymous without touching the credential
// store. The transport wires this as its auth-expired hook so forced logout
// clears session state in step with the store.
func (m *Manager) Expire() {
	m.reset()
}

func (m *Manager) establish(resp authResponse) error {
	if resp.Token == "" || resp.User == nil {
		return errors.Wrap(apperrors.ErrInternal, "[Manager.establish] malformed auth response")
	}
	if err := m.store.Set(credentials.Credential{
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
	}); err != nil {
		return errors.Wrap(err, "[Manager.establish] store.Set")
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.user = resp.User
	m.savedJobIDs = map[string]struct{}{}
	return nil
}

func (m *Manager) fetchSavedJobIDs(ctx context.Context) (map[string]struct{}, error) {
	var jobs []savedJob
	if err := m.client.Get(ctx, "/users/saved-jobs", &jobs); err != nil {
		return nil, errors.Wrap(err, "[Manager.fetchSavedJobIDs]")
	}
	ids := make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		ids[j.ID] = struct{}{}
	}
	return ids, nil
}

func (m *Manager) reset() Session {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.user = nil
	m.savedJobIDs = map[string]struct{}{}
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Session {
	ids := make(map[string]struct{}, len(m.savedJobIDs))
	for id := range m.savedJobIDs {
		ids[id] = struct{}{}
	}
	var user *users.User
	if m.user != nil {
		copied := *m.user
		user = &copied
	}
	return Session{User: user, SavedJobIDs: ids}
}

// loginError maps a backend rejection to ErrAuthFailed while passing other
// failures (network and the like) through untouched.
func loginError(err error) error {
	if isStatus(err, http.StatusUnauthorized) || apperrors.Is(err, apperrors.ErrAuthExpired) {
		return errors.Wrap(apperrors.ErrAuthFailed, backendMessage(err, "login failed"))
	}
	return err
}

func registerError(err error) error {
	if isStatus(err, http.StatusBadRequest) || isStatus(err, http.StatusConflict) {
		return errors.Wrap(apperrors.ErrRegistrationFailed, backendMessage(err, "registration failed"))
	}
	return err
}

func isStatus(err error, status int) bool {
	var apiErr *transport.APIError
	return apperrors.As(err, &apiErr) && apiErr.Status == status
}

func backendMessage(err error, fallback string) string {
	var apiErr *transport.APIError
	if apperrors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
