package postgres

import (
	"context"
	"errors"

	"github.com/jobpilot/jobpilot/internal/models"
	"github.com/jobpilot/jobpilot/internal/utils"
	"gorm.io/gorm"
)

type SavedJobRepository interface {
	GetByUserAndJob(ctx context.Context, userID, jobID uint) (*models.SavedJob, error)
	Create(ctx context.Context, saved *models.SavedJob) error
	Save(ctx context.Context, saved *models.SavedJob) error
	ListActive(ctx context.Context, userID uint) ([]models.SavedJob, error)
	JobIDsForUser(ctx context.Context, userID uint) ([]uint, error)
}

type savedJobRepo struct {
	db *gorm.DB
}

func NewSavedJobRepo(db *gorm.DB) SavedJobRepository {
	return &savedJobRepo{db: db}
}

func (r *savedJobRepo) GetByUserAndJob(ctx context.Context, userID, jobID uint) (*models.SavedJob, error) {
	var saved models.SavedJob
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Take(&saved).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &saved, err
}

func (r *savedJobRepo) Create(ctx context.Context, saved *models.SavedJob) error {
	return r.db.WithContext(ctx).Create(saved).Error
}

func (r *savedJobRepo) Save(ctx context.Context, saved *models.SavedJob) error {
	return r.db.WithContext(ctx).Save(saved).Error
}

func (r *savedJobRepo) ListActive(ctx context.Context, userID uint) ([]models.SavedJob, error) {
	var rows []models.SavedJob
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND dismissed = ?", userID, false).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// JobIDsForUser returns every posting the user has touched, saved or
// dismissed alike; both drop out of fresh recommendations.
func (r *savedJobRepo) JobIDsForUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.SavedJob{}).
		Where("user_id = ?", userID).
		Pluck("job_id", &ids).Error
	return ids, err
}
