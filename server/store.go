package server

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/openjobs/go-jobboard/companies"
	apperrors "github.com/openjobs/go-jobboard/internal/errors"
	"github.com/openjobs/go-jobboard/jobs"
	"github.com/openjobs/go-jobboard/users"
)

// refreshSession is the server-side record of an issued refresh token. Only
// the hash is stored; one active session per user.
type refreshSession struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
}

// memStore is the in-memory database behind the development server. The
// development server exists so the SDK has a faithful peer; nothing here
// survives a restart.
type memStore struct {
	lock sync.RWMutex

	users        map[string]*users.User // by ID
	usersByEmail map[string]string      // email -> ID
	sessions     map[string]*refreshSession
	companies    map[string]*companies.Company
	jobs         map[string]*jobs.Job
	applications map[string][]*jobs.Application // by user ID
	savedJobs    map[string]map[string]struct{} // user ID -> job ID set
	skills       map[string]*users.Skill        // by ID
	skillsByName map[string]string              // lowercase name -> ID
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[string]*users.User{},
		usersByEmail: map[string]string{},
		sessions:     map[string]*refreshSession{},
		companies:    map[string]*companies.Company{},
		jobs:         map[string]*jobs.Job{},
		applications: map[string][]*jobs.Application{},
		savedJobs:    map[string]map[string]struct{}{},
		skills:       map[string]*users.Skill{},
		skillsByName: map[string]string{},
	}
}

// ---- users ----

func (ms *memStore) CreateUser(user *users.User) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := ms.usersByEmail[email]; exists {
		return errors.Wrap(apperrors.ErrDuplicate, "email already registered")
	}
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	ms.users[user.ID] = user
	ms.usersByEmail[email] = user.ID
	ms.savedJobs[user.ID] = map[string]struct{}{}
	return nil
}

func (ms *memStore) GetUserByEmail(email string) (*users.User, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	id, ok := ms.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, errors.Wrap(apperrors.ErrNotFound, "user")
	}
	return copyUser(ms.users[id]), nil
}

func (ms *memStore) GetUserByID(id string) (*users.User, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	user, ok := ms.users[id]
	if !ok {
		return nil, errors.Wrap(apperrors.ErrNotFound, "user")
	}
	return copyUser(user), nil
}

// UpdateUser applies mutate to the stored user under the write lock and
// returns the result.
func (ms *memStore) UpdateUser(id string, mutate func(*users.User)) (*users.User, error) {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	user, ok := ms.users[id]
	if !ok {
		return nil, errors.Wrap(apperrors.ErrNotFound, "user")
	}
	mutate(user)
	user.UpdatedAt = time.Now()
	return copyUser(user), nil
}

// ---- refresh sessions ----

// CreateSession stores a new refresh session, displacing any existing session
// for the user.
func (ms *memStore) CreateSession(session *refreshSession) {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	for hash, existing := range ms.sessions {
		if existing.UserID == session.UserID {
			delete(ms.sessions, hash)
		}
	}
	ms.sessions[session.TokenHash] = session
}

// GetSessionByToken resolves a raw refresh token to its session, enforcing
// expiry.
func (ms *memStore) GetSessionByToken(rawToken string) (*refreshSession, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	session, ok := ms.sessions[hashRefreshToken(rawToken)]
	if !ok || !verifyRefreshToken(rawToken, session.TokenHash) {
		return nil, errors.Wrap(apperrors.ErrInvalidRefreshToken, "unknown refresh token")
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, errors.Wrap(apperrors.ErrRefreshTokenExpired, "refresh token expired")
	}
	copied := *session
	return &copied, nil
}

// ---- companies ----

func (ms *memStore) CreateCompany(company *companies.Company) {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	company.CreatedAt = time.Now()
	company.UpdatedAt = company.CreatedAt
	ms.companies[company.ID] = company
}

func (ms *memStore) GetCompany(id string) (*companies.Company, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	company, ok := ms.companies[id]
	if !ok {
		return nil, errors.Wrap(apperrors.ErrNotFound, "company")
	}
	copied := *company
	return &copied, nil
}

func (ms *memStore) UpdateCompany(id string, mutate func(*companies.Company)) (*companies.Company, error) {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	company, ok := ms.companies[id]
	if !ok {
		return nil, errors.Wrap(apperrors.ErrNotFound, "company")
	}
	mutate(company)
	company.UpdatedAt = time.Now()
	copied := *company
	return &copied, nil
}

// ---- jobs ----

func (ms *memStore) CreateJob(job *jobs.Job) {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.StatusActive
	}
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	ms.jobs[job.ID] = job
}

func (ms *memStore) GetJob(id string) (*jobs.Job, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	job, ok := ms.jobs[id]
	if !ok {
		return nil, errors.Wrap(apperrors.ErrNotFound, "job")
	}
	copied := *job
	return &copied, nil
}

func (ms *memStore) UpdateJob(id string, mutate func(*jobs.Job)) (*jobs.Job, error) {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	job, ok := ms.jobs[id]
	if !ok {
		return nil, errors.Wrap(apperrors.ErrNotFound, "job")
	}
	mutate(job)
	job.UpdatedAt = time.Now()
	copied := *job
	return &copied, nil
}

// SearchJobs filters active jobs the way the production search does: keyword
// against title and description, location substring, exact jobType and
// experienceLevel membership, any-skill match. Results are ordered newest
// first and paged.
func (ms *memStore) SearchJobs(filters jobs.SearchFilters) jobs.Page {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	var matched []jobs.Job
	for _, job := range ms.jobs {
		if job.Status != jobs.StatusActive {
			continue
		}
		if !matchesFilters(job, filters) {
			continue
		}
		matched = append(matched, *job)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	size := filters.Size
	if size <= 0 {
		size = 10
	}
	page := filters.Page
	if page < 0 {
		page = 0
	}

	total := len(matched)
	totalPages := (total + size - 1) / size
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return jobs.Page{
		Content:       matched[start:end],
		Number:        page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

func (ms *memStore) JobsByCompany(companyID string) []jobs.Job {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	var listed []jobs.Job
	for _, job := range ms.jobs {
		if job.Company != nil && job.Company.ID == companyID {
			listed = append(listed, *job)
		}
	}
	sort.Slice(listed, func(i, j int) bool {
		return listed[i].CreatedAt.After(listed[j].CreatedAt)
	})
	return listed
}

// ---- applications ----

func (ms *memStore) CreateApplication(userID string, application *jobs.Application) {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	application.ID = uuid.New().String()
	application.Status = jobs.ApplicationPending
	application.CreatedAt = time.Now()
	ms.applications[userID] = append(ms.applications[userID], application)
}

func (ms *memStore) ApplicationsByUser(userID string) []jobs.Application {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	apps := make([]jobs.Application, 0, len(ms.applications[userID]))
	for _, a := range ms.applications[userID] {
		apps = append(apps, *a)
	}
	return apps
}

// ---- saved jobs ----

// SaveJob adds the job to the user's saved set. Saving twice is a no-op, as
// set semantics dictate.
func (ms *memStore) SaveJob(userID, jobID string) {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	if ms.savedJobs[userID] == nil {
		ms.savedJobs[userID] = map[string]struct{}{}
	}
	ms.savedJobs[userID][jobID] = struct{}{}
}

func (ms *memStore) UnsaveJob(userID, jobID string) {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	delete(ms.savedJobs[userID], jobID)
}

func (ms *memStore) SavedJobsByUser(userID string) []jobs.Job {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	var saved []jobs.Job
	for jobID := range ms.savedJobs[userID] {
		if job, ok := ms.jobs[jobID]; ok {
			saved = append(saved, *job)
		}
	}
	sort.Slice(saved, func(i, j int) bool {
		return saved[i].CreatedAt.After(saved[j].CreatedAt)
	})
	return saved
}

// ---- skills ----

// GetOrCreateSkill resolves a skill by name, creating it if new. Names are
// case-insensitive.
func (ms *memStore) GetOrCreateSkill(name string) *users.Skill {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := ms.skillsByName[key]; ok {
		copied := *ms.skills[id]
		return &copied
	}
	skill := &users.Skill{ID: uuid.New().String(), Name: strings.TrimSpace(name)}
	ms.skills[skill.ID] = skill
	ms.skillsByName[key] = skill.ID
	copied := *skill
	return &copied
}

func matchesFilters(job *jobs.Job, filters jobs.SearchFilters) bool {
	if filters.Keyword != "" {
		keyword := strings.ToLower(filters.Keyword)
		if !strings.Contains(strings.ToLower(job.Title), keyword) &&
			!strings.Contains(strings.ToLower(job.Description), keyword) {
			return false
		}
	}
	if filters.Location != "" {
		if !strings.Contains(strings.ToLower(job.Location), strings.ToLower(filters.Location)) {
			return false
		}
	}
	if len(filters.JobTypes) > 0 && !containsString(filters.JobTypes, job.JobType) {
		return false
	}
	if len(filters.ExperienceLevels) > 0 && !containsString(filters.ExperienceLevels, job.ExperienceLevel) {
		return false
	}
	if len(filters.SkillIDs) > 0 {
		found := false
		for _, skill := range job.Skills {
			if containsString(filters.SkillIDs, skill.ID) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func copyUser(user *users.User) *users.User {
	copied := *user
	copied.Educations = append([]users.Education(nil), user.Educations...)
	copied.Experiences = append([]users.Experience(nil), user.Experiences...)
	copied.Skills = append([]users.Skill(nil), user.Skills...)
	return &copied
}
