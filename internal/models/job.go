package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

type JobStatus string

const (
	JobStatusActive  JobStatus = "active"
	JobStatusExpired JobStatus = "expired"
	JobStatusFilled  JobStatus = "filled"
	JobStatusRemoved JobStatus = "removed"
)

type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeFreelance  JobType = "freelance"
	JobTypeInternship JobType = "internship"
)

type ExperienceLevel string

const (
	ExperienceEntry     ExperienceLevel = "entry"
	ExperienceMid       ExperienceLevel = "mid"
	ExperienceSenior    ExperienceLevel = "senior"
	ExperienceLead      ExperienceLevel = "lead"
	ExperienceExecutive ExperienceLevel = "executive"
)

// JobSource is a scraper/board configuration that owns the postings it ingests.
type JobSource struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"size:255;uniqueIndex;not null" json:"name"`
	BaseURL       string     `gorm:"size:500" json:"base_url"`
	ScraperType   string     `gorm:"size:50" json:"scraper_type"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	LastScrapedAt *time.Time `json:"last_scraped_at"`
}

func (JobSource) TableName() string { return "job_sources" }

// JobPosting is a catalog entry. (SourceID, ExternalID) identifies it
// uniquely; re-ingestion updates fields in place.
type JobPosting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SourceID   uint   `gorm:"uniqueIndex:uq_posting_source_external" json:"source_id"`
	ExternalID string `gorm:"size:255;uniqueIndex:uq_posting_source_external" json:"external_id"`

	Title      string `gorm:"size:500;not null;index" json:"title"`
	Company    string `gorm:"size:255;index" json:"company"`
	Location   string `gorm:"size:255" json:"location"`
	IsRemote   bool   `gorm:"index" json:"is_remote"`
	RemoteType string `gorm:"size:50" json:"remote_type"`

	Description  string `gorm:"type:text" json:"description"`
	Requirements string `gorm:"type:text" json:"requirements"`
	Benefits     string `gorm:"type:text" json:"benefits"`

	// Empty string means the source did not specify.
	JobType         JobType         `gorm:"size:50" json:"job_type"`
	ExperienceLevel ExperienceLevel `gorm:"size:50" json:"experience_level"`
	Industry        string          `gorm:"size:255" json:"industry"`

	RequiredSkills  pq.StringArray `gorm:"type:text[]" json:"required_skills"`
	PreferredSkills pq.StringArray `gorm:"type:text[]" json:"preferred_skills"`
	Tags            pq.StringArray `gorm:"type:text[]" json:"tags"`

	SalaryMin      *int   `json:"salary_min"`
	SalaryMax      *int   `json:"salary_max"`
	SalaryCurrency string `gorm:"size:3" json:"salary_currency"`
	SalaryText     string `gorm:"size:255" json:"salary_text"`

	URL      string `gorm:"size:1000" json:"url"`
	ApplyURL string `gorm:"size:1000" json:"apply_url"`

	PostedAt  *time.Time `gorm:"index" json:"posted_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	ScrapedAt *time.Time `json:"scraped_at"`

	Status JobStatus `gorm:"size:20;default:'active';index" json:"status"`
}

func (JobPosting) TableName() string { return "job_postings" }

// SalaryRange formats the structured bounds, falling back to the raw
// salary text when no bounds were parsed.
func (j *JobPosting) SalaryRange() string {
	if j.SalaryMin == nil && j.SalaryMax == nil {
		return j.SalaryText
	}
	currency := j.SalaryCurrency
	if currency == "" {
		currency = "USD"
	}
	switch {
	case j.SalaryMin != nil && j.SalaryMax != nil:
		return fmt.Sprintf("%s %d - %d", currency, *j.SalaryMin, *j.SalaryMax)
	case j.SalaryMin != nil:
		return fmt.Sprintf("%s %d+", currency, *j.SalaryMin)
	default:
		return fmt.Sprintf("Up to %s %d", currency, *j.SalaryMax)
	}
}

// SavedJob is a user's bookmark or dismissal of a posting, unique per
// (user, job). A dismissed row without a prior save is created on the fly.
type SavedJob struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"uniqueIndex:uq_saved_user_job" json:"user_id"`
	JobID  uint `gorm:"uniqueIndex:uq_saved_user_job" json:"job_id"`

	Notes        string         `gorm:"type:text" json:"notes"`
	MatchScore   *float64       `json:"match_score"`
	MatchReasons pq.StringArray `gorm:"type:text[]" json:"match_reasons"`

	IsInterested *bool `json:"is_interested"`
	Dismissed    bool  `gorm:"default:false" json:"dismissed"`
}

func (SavedJob) TableName() string { return "saved_jobs" }
