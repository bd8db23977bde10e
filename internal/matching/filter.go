// Package matching implements the deterministic half of the
// recommendation engine: filtering, ordering, and pagination of catalog
// postings. The filters run in memory over the active catalog so their
// semantics stay independent of the store.
package matching

import (
	"sort"
	"strings"
	"time"

	"github.com/jobpilot/jobpilot/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter narrows the active catalog. Categories combine with AND; values
// within a category combine with OR. Zero values mean "no constraint".
type Filter struct {
	Query            string
	Titles           []string
	Locations        []string
	IsRemote         *bool
	JobTypes         []string
	ExperienceLevels []string
	MinSalary        *int
	MaxSalary        *int
	Skills           []string
	Companies        []string
	ExcludeCompanies []string
	PostedWithinDays int

	// IncludeRemote widens the location category so remote postings always
	// pass it. Used by preference-derived recommendation filters.
	IncludeRemote bool

	// TolerateUnspecified lets postings with no declared job type or
	// experience level pass those categories instead of failing them.
	TolerateUnspecified bool
}

// Matches reports whether a posting passes every category of the filter.
// Unknown salary bounds never disqualify a posting.
func (f Filter) Matches(job *models.JobPosting, now time.Time) bool {
	if f.Query != "" && !matchesQuery(job, f.Query) {
		return false
	}
	if len(f.Titles) > 0 && !anySubstringFold(job.Title, f.Titles) {
		return false
	}
	if len(f.Locations) > 0 && !f.matchesLocation(job) {
		return false
	}
	if f.IsRemote != nil && job.IsRemote != *f.IsRemote {
		return false
	}
	if len(f.JobTypes) > 0 && !f.matchesEnum(string(job.JobType), f.JobTypes) {
		return false
	}
	if len(f.ExperienceLevels) > 0 && !f.matchesEnum(string(job.ExperienceLevel), f.ExperienceLevels) {
		return false
	}
	if f.MinSalary != nil && job.SalaryMax != nil && *job.SalaryMax < *f.MinSalary {
		return false
	}
	if f.MaxSalary != nil && job.SalaryMin != nil && *job.SalaryMin > *f.MaxSalary {
		return false
	}
	if len(f.Skills) > 0 && !matchesSkills(job, f.Skills) {
		return false
	}
	if len(f.Companies) > 0 && !anySubstringFold(job.Company, f.Companies) {
		return false
	}
	for _, excluded := range f.ExcludeCompanies {
		if excluded != "" && containsFold(job.Company, excluded) {
			return false
		}
	}
	if f.PostedWithinDays > 0 {
		cutoff := now.AddDate(0, 0, -f.PostedWithinDays)
		if job.PostedAt == nil || job.PostedAt.Before(cutoff) {
			return false
		}
	}
	return true
}

func (f Filter) matchesLocation(job *models.JobPosting) bool {
	if f.IncludeRemote && job.IsRemote {
		return true
	}
	return anySubstringFold(job.Location, f.Locations)
}

func (f Filter) matchesEnum(value string, wanted []string) bool {
	if value == "" {
		return f.TolerateUnspecified
	}
	for _, w := range wanted {
		if strings.EqualFold(value, w) {
			return true
		}
	}
	return false
}

func matchesQuery(job *models.JobPosting, query string) bool {
	return containsFold(job.Title, query) ||
		containsFold(job.Company, query) ||
		containsFold(job.Description, query)
}

func matchesSkills(job *models.JobPosting, wanted []string) bool {
	for _, w := range wanted {
		for _, have := range job.RequiredSkills {
			if strings.EqualFold(have, w) {
				return true
			}
		}
		for _, have := range job.PreferredSkills {
			if strings.EqualFold(have, w) {
				return true
			}
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func anySubstringFold(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && containsFold(haystack, n) {
			return true
		}
	}
	return false
}

// Apply filters postings in place order, keeping catalog order for ties.
func Apply(jobs []models.JobPosting, f Filter, now time.Time) []models.JobPosting {
	out := make([]models.JobPosting, 0, len(jobs))
	for i := range jobs {
		if f.Matches(&jobs[i], now) {
			out = append(out, jobs[i])
		}
	}
	return out
}

// SortByRecency orders postings most recent first. Postings without a
// posted timestamp sort last; ties keep their catalog order.
func SortByRecency(jobs []models.JobPosting) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return postedAt(&jobs[i]).After(postedAt(&jobs[j]))
	})
}

func postedAt(job *models.JobPosting) time.Time {
	if job.PostedAt == nil {
		return time.Time{}
	}
	return *job.PostedAt
}

// ClampPage normalizes pagination inputs: page minimum 1, page size
// clamped into [1, MaxPageSize] with a default when unset.
func ClampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Paginate slices one page out of the sorted result set. A page past the
// end yields an empty slice, not an error.
func Paginate(jobs []models.JobPosting, page, pageSize int) []models.JobPosting {
	start := (page - 1) * pageSize
	if start >= len(jobs) {
		return []models.JobPosting{}
	}
	end := start + pageSize
	if end > len(jobs) {
		end = len(jobs)
	}
	return jobs[start:end]
}
