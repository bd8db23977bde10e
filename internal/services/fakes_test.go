package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jobpilot/jobpilot/internal/models"
	"github.com/jobpilot/jobpilot/internal/providers/llm"
	"github.com/jobpilot/jobpilot/internal/utils"
)

// In-memory repository fakes. They keep only the behavior the services
// rely on: identity assignment, ownership scoping, and not-found
// signaling.

type fakeJobRepo struct {
	mu     sync.Mutex
	nextID uint
	jobs   map[uint]models.JobPosting
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uint]models.JobPosting)}
}

func (r *fakeJobRepo) Upsert(_ context.Context, job *models.JobPosting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.jobs {
		if existing.SourceID == job.SourceID && existing.ExternalID == job.ExternalID {
			job.ID = id
			r.jobs[id] = *job
			return nil
		}
	}
	r.nextID++
	job.ID = r.nextID
	r.jobs[job.ID] = *job
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id uint) (*models.JobPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &job, nil
}

func (r *fakeJobRepo) ListActive(_ context.Context) ([]models.JobPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.JobPosting
	for id := uint(1); id <= r.nextID; id++ {
		if job, ok := r.jobs[id]; ok && job.Status == models.JobStatusActive {
			out = append(out, job)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) ExpireOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, job := range r.jobs {
		if job.Status == models.JobStatusActive && job.PostedAt != nil && job.PostedAt.Before(cutoff) {
			job.Status = models.JobStatusExpired
			r.jobs[id] = job
			n++
		}
	}
	return n, nil
}

func (r *fakeJobRepo) add(job models.JobPosting) uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	job.ID = r.nextID
	if job.Status == "" {
		job.Status = models.JobStatusActive
	}
	r.jobs[job.ID] = job
	return job.ID
}

type fakeSavedJobRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]models.SavedJob
}

func newFakeSavedJobRepo() *fakeSavedJobRepo {
	return &fakeSavedJobRepo{rows: make(map[uint]models.SavedJob)}
}

func (r *fakeSavedJobRepo) GetByUserAndJob(_ context.Context, userID, jobID uint) (*models.SavedJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID == userID && row.JobID == jobID {
			cp := row
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeSavedJobRepo) Create(_ context.Context, saved *models.SavedJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	saved.ID = r.nextID
	r.rows[saved.ID] = *saved
	return nil
}

func (r *fakeSavedJobRepo) Save(_ context.Context, saved *models.SavedJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[saved.ID] = *saved
	return nil
}

func (r *fakeSavedJobRepo) ListActive(_ context.Context, userID uint) ([]models.SavedJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SavedJob
	for id := uint(1); id <= r.nextID; id++ {
		if row, ok := r.rows[id]; ok && row.UserID == userID && !row.Dismissed {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeSavedJobRepo) JobIDsForUser(_ context.Context, userID uint) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []uint
	for id := uint(1); id <= r.nextID; id++ {
		if row, ok := r.rows[id]; ok && row.UserID == userID {
			out = append(out, row.JobID)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]models.UserProfile
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]models.UserProfile)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByChatID(_ context.Context, chatID int64) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ChatID == chatID {
			cp := user
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Save(_ context.Context, user *models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) UpsertPreferences(_ context.Context, prefs *models.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[prefs.UserID]
	if !ok {
		return utils.ErrNotFound
	}
	user.Preferences = prefs
	r.users[prefs.UserID] = user
	return nil
}

func (r *fakeUserRepo) ReplaceSkills(_ context.Context, userID uint, skills []models.UserSkill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return utils.ErrNotFound
	}
	user.Skills = skills
	r.users[userID] = user
	return nil
}

func (r *fakeUserRepo) add(user models.UserProfile) uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return user.ID
}

type fakeDraftRepo struct {
	mu     sync.Mutex
	nextID uint
	drafts map[uint]models.ApplicationDraft
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{drafts: make(map[uint]models.ApplicationDraft)}
}

func (r *fakeDraftRepo) Create(_ context.Context, draft *models.ApplicationDraft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	draft.ID = r.nextID
	r.drafts[draft.ID] = *draft
	return nil
}

func (r *fakeDraftRepo) GetByIDForUser(_ context.Context, id, userID uint) (*models.ApplicationDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	draft, ok := r.drafts[id]
	if !ok || draft.UserID != userID {
		return nil, utils.ErrNotFound
	}
	return &draft, nil
}

func (r *fakeDraftRepo) Save(_ context.Context, draft *models.ApplicationDraft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[draft.ID] = *draft
	return nil
}

func (r *fakeDraftRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, draft := range r.drafts {
		if !draft.IsApproved && draft.ExpiresAt.Before(now) {
			delete(r.drafts, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeDraftRepo) ListPending(_ context.Context, userID uint, now time.Time) ([]models.ApplicationDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ApplicationDraft
	for id := r.nextID; id >= 1; id-- {
		if draft, ok := r.drafts[id]; ok && draft.UserID == userID && !draft.IsApproved && draft.ExpiresAt.After(now) {
			out = append(out, draft)
		}
	}
	return out, nil
}

type fakeApplicationRepo struct {
	mu     sync.Mutex
	nextID uint
	apps   map[uint]models.Application
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[uint]models.Application)}
}

func (r *fakeApplicationRepo) CreateIfAbsent(_ context.Context, app *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.apps {
		if existing.UserID == app.UserID && existing.JobID == app.JobID {
			return utils.ErrConflict
		}
	}
	r.nextID++
	app.ID = r.nextID
	r.apps[app.ID] = *app
	return nil
}

func (r *fakeApplicationRepo) GetByIDForUser(_ context.Context, id, userID uint) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.UserID != userID {
		return nil, utils.ErrNotFound
	}
	return &app, nil
}

func (r *fakeApplicationRepo) Save(_ context.Context, app *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[app.ID] = *app
	return nil
}

func (r *fakeApplicationRepo) ListByUser(_ context.Context, userID uint, status *models.ApplicationStatus) ([]models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Application
	for id := r.nextID; id >= 1; id-- {
		app, ok := r.apps[id]
		if !ok || app.UserID != userID {
			continue
		}
		if status != nil && app.Status != *status {
			continue
		}
		out = append(out, app)
	}
	return out, nil
}

func (r *fakeApplicationRepo) CountByStatus(_ context.Context, userID uint) (map[models.ApplicationStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[models.ApplicationStatus]int)
	for _, app := range r.apps {
		if app.UserID == userID {
			counts[app.Status]++
		}
	}
	return counts, nil
}

// stubProvider scripts the language model: each call pops the next
// canned reply and records the prompts it saw. Token counts here are
// deliberately uneven so accumulation bugs show up.
type stubProvider struct {
	mu      sync.Mutex
	replies []string
	inTok   int
	outTok  int
	err     error

	calls   int
	systems []string
	prompts []string
}

func (p *stubProvider) Complete(_ context.Context, system, user string, _ int) (*llm.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.calls++
	p.systems = append(p.systems, system)
	p.prompts = append(p.prompts, user)

	reply := "stub reply"
	if len(p.replies) > 0 {
		reply = p.replies[0]
		if len(p.replies) > 1 {
			p.replies = p.replies[1:]
		}
	}
	return &llm.Result{Text: reply, InputTokens: p.inTok, OutputTokens: p.outTok}, nil
}

func (p *stubProvider) Model() string { return "stub-model" }
func (p *stubProvider) Close() error  { return nil }

// fakeCache is a map-backed Cache with no TTL handling.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

// fakeResumeProvider serves a fixed résumé text.
type fakeResumeProvider struct {
	text string
	ok   bool
}

func (p *fakeResumeProvider) PrimaryText(_ context.Context, _ uint) (string, bool, error) {
	return p.text, p.ok, nil
}

type fakeResumeRepo struct {
	mu      sync.Mutex
	nextID  uint
	resumes map[uint]models.Resume
}

func newFakeResumeRepo() *fakeResumeRepo {
	return &fakeResumeRepo{resumes: make(map[uint]models.Resume)}
}

func (r *fakeResumeRepo) GetPrimary(_ context.Context, userID uint) (*models.Resume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.resumes {
		if res.UserID == userID && res.IsPrimary && res.IsActive {
			out := res
			return &out, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeResumeRepo) Create(_ context.Context, resume *models.Resume) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	resume.ID = r.nextID
	r.resumes[resume.ID] = *resume
	return nil
}

func (r *fakeResumeRepo) SetPrimary(_ context.Context, userID, resumeID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.resumes[resumeID]
	if !ok || target.UserID != userID {
		return utils.ErrNotFound
	}
	for id, res := range r.resumes {
		if res.UserID == userID {
			res.IsPrimary = id == resumeID
			r.resumes[id] = res
		}
	}
	return nil
}
