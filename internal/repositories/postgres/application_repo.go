package postgres

import (
	"context"
	"errors"

	"github.com/jobpilot/jobpilot/internal/models"
	"github.com/jobpilot/jobpilot/internal/utils"
	"gorm.io/gorm"
)

type ApplicationRepository interface {
	CreateIfAbsent(ctx context.Context, app *models.Application) error
	GetByIDForUser(ctx context.Context, id, userID uint) (*models.Application, error)
	Save(ctx context.Context, app *models.Application) error
	ListByUser(ctx context.Context, userID uint, status *models.ApplicationStatus) ([]models.Application, error)
	CountByStatus(ctx context.Context, userID uint) (map[models.ApplicationStatus]int, error)
}

type applicationRepo struct {
	db *gorm.DB
}

func NewApplicationRepo(db *gorm.DB) ApplicationRepository {
	return &applicationRepo{db: db}
}

// CreateIfAbsent inserts the application unless one already exists for the
// same (user, job) pair, in which case it returns utils.ErrConflict. The
// check and insert run in one transaction; the unique index backs it up
// against races.
func (r *applicationRepo) CreateIfAbsent(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Application{}).
			Where("user_id = ? AND job_id = ?", app.UserID, app.JobID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return utils.ErrConflict
		}
		return tx.Create(app).Error
	})
}

func (r *applicationRepo) GetByIDForUser(ctx context.Context, id, userID uint) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &app, err
}

func (r *applicationRepo) Save(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Save(app).Error
}

func (r *applicationRepo) ListByUser(ctx context.Context, userID uint, status *models.ApplicationStatus) ([]models.Application, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var apps []models.Application
	err := q.Order("created_at DESC").Find(&apps).Error
	return apps, err
}

func (r *applicationRepo) CountByStatus(ctx context.Context, userID uint) (map[models.ApplicationStatus]int, error) {
	type row struct {
		Status models.ApplicationStatus
		N      int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Select("status, COUNT(*) AS n").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.ApplicationStatus]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.N
	}
	return counts, nil
}
