package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jobpilot/jobpilot/internal/models"
	"github.com/jobpilot/jobpilot/internal/utils"
	"gorm.io/gorm"
)

type DraftRepository interface {
	Create(ctx context.Context, draft *models.ApplicationDraft) error
	GetByIDForUser(ctx context.Context, id, userID uint) (*models.ApplicationDraft, error)
	Save(ctx context.Context, draft *models.ApplicationDraft) error
	ListPending(ctx context.Context, userID uint, now time.Time) ([]models.ApplicationDraft, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type draftRepo struct {
	db *gorm.DB
}

func NewDraftRepo(db *gorm.DB) DraftRepository {
	return &draftRepo{db: db}
}

func (r *draftRepo) Create(ctx context.Context, draft *models.ApplicationDraft) error {
	return r.db.WithContext(ctx).Create(draft).Error
}

func (r *draftRepo) GetByIDForUser(ctx context.Context, id, userID uint) (*models.ApplicationDraft, error) {
	var draft models.ApplicationDraft
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &draft, err
}

func (r *draftRepo) Save(ctx context.Context, draft *models.ApplicationDraft) error {
	return r.db.WithContext(ctx).Save(draft).Error
}

// ListPending returns unapproved, unexpired drafts newest first. Expired
// drafts drop out of this listing immediately and are purged later by the
// periodic sweep.
func (r *draftRepo) ListPending(ctx context.Context, userID uint, now time.Time) ([]models.ApplicationDraft, error) {
	var drafts []models.ApplicationDraft
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_approved = ? AND expires_at > ?", userID, false, now).
		Order("created_at DESC").
		Find(&drafts).Error
	return drafts, err
}

// DeleteExpired removes unapproved drafts past their expiry. Approved
// drafts are kept as the provenance of created applications.
func (r *draftRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_approved = ? AND expires_at < ?", false, now).
		Delete(&models.ApplicationDraft{})
	return res.RowsAffected, res.Error
}
