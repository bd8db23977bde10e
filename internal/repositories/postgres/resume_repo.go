package postgres

import (
	"context"
	"errors"

	"github.com/jobpilot/jobpilot/internal/models"
	"github.com/jobpilot/jobpilot/internal/utils"
	"gorm.io/gorm"
)

type ResumeRepository interface {
	GetPrimary(ctx context.Context, userID uint) (*models.Resume, error)
	Create(ctx context.Context, resume *models.Resume) error
	SetPrimary(ctx context.Context, userID, resumeID uint) error
}

type resumeRepo struct {
	db *gorm.DB
}

func NewResumeRepo(db *gorm.DB) ResumeRepository {
	return &resumeRepo{db: db}
}

func (r *resumeRepo) GetPrimary(ctx context.Context, userID uint) (*models.Resume, error) {
	var resume models.Resume
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_primary = ? AND is_active = ?", userID, true, true).
		Take(&resume).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &resume, err
}

func (r *resumeRepo) Create(ctx context.Context, resume *models.Resume) error {
	return r.db.WithContext(ctx).Create(resume).Error
}

// SetPrimary marks one resume as primary and unsets the flag on the rest of
// the user's resumes in the same transaction.
func (r *resumeRepo) SetPrimary(ctx context.Context, userID, resumeID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Resume{}).
			Where("id = ? AND user_id = ?", resumeID, userID).
			Update("is_primary", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrNotFound
		}
		return tx.Model(&models.Resume{}).
			Where("user_id = ? AND id != ?", userID, resumeID).
			Update("is_primary", false).Error
	})
}
