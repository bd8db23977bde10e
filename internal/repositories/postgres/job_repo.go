package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jobpilot/jobpilot/internal/models"
	"github.com/jobpilot/jobpilot/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JobRepository interface {
	Upsert(ctx context.Context, job *models.JobPosting) error
	GetByID(ctx context.Context, id uint) (*models.JobPosting, error)
	ListActive(ctx context.Context) ([]models.JobPosting, error)
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type jobRepo struct {
	db *gorm.DB
}

func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

// Upsert keys on (source_id, external_id); re-ingestion updates the row
// in place rather than duplicating.
func (r *jobRepo) Upsert(ctx context.Context, job *models.JobPosting) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "source_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "company", "location", "is_remote", "remote_type",
				"description", "requirements", "benefits",
				"job_type", "experience_level", "industry",
				"required_skills", "preferred_skills", "tags",
				"salary_min", "salary_max", "salary_currency", "salary_text",
				"url", "apply_url", "posted_at", "expires_at", "scraped_at",
				"status", "updated_at",
			}),
		}).
		Create(job).Error
}

func (r *jobRepo) GetByID(ctx context.Context, id uint) (*models.JobPosting, error) {
	var job models.JobPosting
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &job, err
}

// ListActive returns the eligible catalog in insertion order; recency
// ordering is applied by the matching engine.
func (r *jobRepo) ListActive(ctx context.Context) ([]models.JobPosting, error) {
	var jobs []models.JobPosting
	err := r.db.WithContext(ctx).
		Where("status = ?", models.JobStatusActive).
		Order("id ASC").
		Find(&jobs).Error
	return jobs, err
}

func (r *jobRepo) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.JobPosting{}).
		Where("status = ? AND posted_at < ?", models.JobStatusActive, cutoff).
		Update("status", models.JobStatusExpired)
	return res.RowsAffected, res.Error
}

type JobSourceRepository interface {
	GetByName(ctx context.Context, name string) (*models.JobSource, error)
	Create(ctx context.Context, source *models.JobSource) error
	Save(ctx context.Context, source *models.JobSource) error
}

type jobSourceRepo struct {
	db *gorm.DB
}

func NewJobSourceRepo(db *gorm.DB) JobSourceRepository {
	return &jobSourceRepo{db: db}
}

func (r *jobSourceRepo) GetByName(ctx context.Context, name string) (*models.JobSource, error) {
	var source models.JobSource
	err := r.db.WithContext(ctx).Where("name = ?", name).Take(&source).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &source, err
}

func (r *jobSourceRepo) Create(ctx context.Context, source *models.JobSource) error {
	return r.db.WithContext(ctx).Create(source).Error
}

func (r *jobSourceRepo) Save(ctx context.Context, source *models.JobSource) error {
	return r.db.WithContext(ctx).Save(source).Error
}
