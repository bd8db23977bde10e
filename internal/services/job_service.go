package services

import (
	"context"
	"errors"
	"time"

	"github.com/jobpilot/jobpilot/internal/cache"
	"github.com/jobpilot/jobpilot/internal/matching"
	"github.com/jobpilot/jobpilot/internal/models"
	pgrepo "github.com/jobpilot/jobpilot/internal/repositories/postgres"
	"github.com/jobpilot/jobpilot/internal/utils"
)

const (
	defaultRecommendationLimit = 20

	// recommendationsCacheSize bounds the per-user cached candidate list.
	// Must cover the largest limit a handler accepts.
	recommendationsCacheSize = 50

	recommendationsTTL = time.Hour
	matchAnalysisTTL   = 24 * time.Hour
)

// SearchResult is one page of postings plus the pre-pagination total.
type SearchResult struct {
	Jobs     []models.JobPosting `json:"jobs"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

type JobService interface {
	Search(ctx context.Context, f matching.Filter, page, pageSize int) (*SearchResult, error)
	GetPosting(ctx context.Context, jobID uint) (*models.JobPosting, error)
	RecommendationsFor(ctx context.Context, userID uint, limit int) ([]models.JobPosting, error)
	MatchAnalysis(ctx context.Context, userID, jobID uint) (*models.MatchResult, error)
	SaveJob(ctx context.Context, userID, jobID uint, notes string, matchScore *float64) (*models.SavedJob, error)
	DismissJob(ctx context.Context, userID, jobID uint) error
	UpdateFeedback(ctx context.Context, userID, jobID uint, interested bool) (*models.SavedJob, error)
	SavedJobs(ctx context.Context, userID uint) ([]models.SavedJob, error)
}

type jobService struct {
	jobs  pgrepo.JobRepository
	saved pgrepo.SavedJobRepository
	users pgrepo.UserRepository
	ai    AIService
	cache cache.Cache
}

func NewJobService(jobs pgrepo.JobRepository, saved pgrepo.SavedJobRepository, users pgrepo.UserRepository, ai AIService, c cache.Cache) JobService {
	return &jobService{jobs: jobs, saved: saved, users: users, ai: ai, cache: c}
}

func (s *jobService) Search(ctx context.Context, f matching.Filter, page, pageSize int) (*SearchResult, error) {
	const op = "JobService.Search"

	page, pageSize = matching.ClampPage(page, pageSize)

	active, err := s.jobs.ListActive(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load active postings", err)
	}

	filtered := matching.Apply(active, f, time.Now().UTC())
	matching.SortByRecency(filtered)

	return &SearchResult{
		Jobs:     matching.Paginate(filtered, page, pageSize),
		Total:    len(filtered),
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *jobService) GetPosting(ctx context.Context, jobID uint) (*models.JobPosting, error) {
	const op = "JobService.GetPosting"

	job, err := s.jobs.GetByID(ctx, jobID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}
	return job, nil
}

// RecommendationsFor derives a filter from the user's stored preferences
// and returns the freshest matching postings. A user without preferences
// gets an empty list, not an error. Saved and dismissed postings are
// excluded alike.
func (s *jobService) RecommendationsFor(ctx context.Context, userID uint, limit int) ([]models.JobPosting, error) {
	const op = "JobService.RecommendationsFor"

	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	if s.cache != nil {
		var cached []models.JobPosting
		if hit, err := s.cache.GetJSON(ctx, cache.RecommendationsKey(userID), &cached); err == nil && hit {
			if len(cached) > limit {
				cached = cached[:limit]
			}
			return cached, nil
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	if user.Preferences == nil {
		return []models.JobPosting{}, nil
	}

	prefs := user.Preferences
	f := matching.Filter{
		Titles:           prefs.DesiredTitles,
		Locations:        prefs.PreferredLocations,
		JobTypes:         prefs.JobTypes,
		ExperienceLevels: prefs.ExperienceLevels,
		MinSalary:        prefs.MinSalary,
		ExcludeCompanies: prefs.ExcludedCompanies,

		IncludeRemote:       true,
		TolerateUnspecified: true,
	}

	active, err := s.jobs.ListActive(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load active postings", err)
	}

	seenIDs, err := s.saved.JobIDsForUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load saved jobs", err)
	}
	seen := make(map[uint]struct{}, len(seenIDs))
	for _, id := range seenIDs {
		seen[id] = struct{}{}
	}

	matched := make([]models.JobPosting, 0, limit)
	now := time.Now().UTC()
	for i := range active {
		if _, ok := seen[active[i].ID]; ok {
			continue
		}
		if f.Matches(&active[i], now) {
			matched = append(matched, active[i])
		}
	}

	matching.SortByRecency(matched)
	if len(matched) > recommendationsCacheSize {
		matched = matched[:recommendationsCacheSize]
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, cache.RecommendationsKey(userID), matched, recommendationsTTL)
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// MatchAnalysis runs the AI assessment of a (user, posting) pair, cached
// for a day since neither side changes often.
func (s *jobService) MatchAnalysis(ctx context.Context, userID, jobID uint) (*models.MatchResult, error) {
	const op = "JobService.MatchAnalysis"

	if s.cache != nil {
		var cached models.MatchResult
		if hit, err := s.cache.GetJSON(ctx, cache.MatchAnalysisKey(userID, jobID), &cached); err == nil && hit {
			return &cached, nil
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}

	result, err := s.ai.MatchJob(ctx, user, job)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, cache.MatchAnalysisKey(userID, jobID), result, matchAnalysisTTL)
	}
	return result, nil
}

func (s *jobService) SaveJob(ctx context.Context, userID, jobID uint, notes string, matchScore *float64) (*models.SavedJob, error) {
	const op = "JobService.SaveJob"

	if _, err := s.GetPosting(ctx, jobID); err != nil {
		return nil, err
	}

	existing, err := s.saved.GetByUserAndJob(ctx, userID, jobID)
	switch {
	case err == nil && !existing.Dismissed:
		return nil, utils.E(utils.CodeConflict, op, "job already saved", nil)
	case err == nil:
		// Re-saving a dismissed job revives the row.
		existing.Dismissed = false
		existing.Notes = notes
		existing.MatchScore = matchScore
		if err := s.saved.Save(ctx, existing); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to update saved job", err)
		}
		s.invalidateRecommendations(ctx, userID)
		return existing, nil
	case !errors.Is(err, utils.ErrNotFound):
		return nil, utils.E(utils.CodeInternal, op, "failed to check saved job", err)
	}

	saved := &models.SavedJob{
		UserID:     userID,
		JobID:      jobID,
		Notes:      notes,
		MatchScore: matchScore,
	}
	if err := s.saved.Create(ctx, saved); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save job", err)
	}
	s.invalidateRecommendations(ctx, userID)
	return saved, nil
}

// DismissJob hides a posting from future recommendations, creating the
// bookmark row on the fly when no prior save exists.
func (s *jobService) DismissJob(ctx context.Context, userID, jobID uint) error {
	const op = "JobService.DismissJob"

	existing, err := s.saved.GetByUserAndJob(ctx, userID, jobID)
	switch {
	case err == nil:
		existing.Dismissed = true
		if err := s.saved.Save(ctx, existing); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to dismiss job", err)
		}
	case errors.Is(err, utils.ErrNotFound):
		row := &models.SavedJob{UserID: userID, JobID: jobID, Dismissed: true}
		if err := s.saved.Create(ctx, row); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to dismiss job", err)
		}
	default:
		return utils.E(utils.CodeInternal, op, "failed to check saved job", err)
	}

	s.invalidateRecommendations(ctx, userID)
	return nil
}

func (s *jobService) UpdateFeedback(ctx context.Context, userID, jobID uint, interested bool) (*models.SavedJob, error) {
	const op = "JobService.UpdateFeedback"

	existing, err := s.saved.GetByUserAndJob(ctx, userID, jobID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "job is not saved", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load saved job", err)
	}

	existing.IsInterested = &interested
	if err := s.saved.Save(ctx, existing); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update feedback", err)
	}
	return existing, nil
}

func (s *jobService) SavedJobs(ctx context.Context, userID uint) ([]models.SavedJob, error) {
	const op = "JobService.SavedJobs"

	rows, err := s.saved.ListActive(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list saved jobs", err)
	}
	return rows, nil
}

func (s *jobService) invalidateRecommendations(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, cache.RecommendationsKey(userID))
}
