package postgres

import (
	"context"
	"errors"

	"github.com/jobpilot/jobpilot/internal/models"
	"github.com/jobpilot/jobpilot/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.UserProfile, error)
	GetByChatID(ctx context.Context, chatID int64) (*models.UserProfile, error)
	Create(ctx context.Context, user *models.UserProfile) error
	Save(ctx context.Context, user *models.UserProfile) error
	UpsertPreferences(ctx context.Context, prefs *models.Preferences) error
	ReplaceSkills(ctx context.Context, userID uint, skills []models.UserSkill) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*models.UserProfile, error) {
	var user models.UserProfile
	err := r.db.WithContext(ctx).
		Preload("Preferences").
		Preload("Skills").
		Where("id = ?", id).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &user, err
}

func (r *userRepo) GetByChatID(ctx context.Context, chatID int64) (*models.UserProfile, error) {
	var user models.UserProfile
	err := r.db.WithContext(ctx).
		Preload("Preferences").
		Preload("Skills").
		Where("chat_id = ?", chatID).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &user, err
}

func (r *userRepo) Create(ctx context.Context, user *models.UserProfile) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Save updates the profile row only; associations are managed through
// UpsertPreferences and ReplaceSkills.
func (r *userRepo) Save(ctx context.Context, user *models.UserProfile) error {
	return r.db.WithContext(ctx).
		Omit("Preferences", "Skills").
		Save(user).Error
}

func (r *userRepo) UpsertPreferences(ctx context.Context, prefs *models.Preferences) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"desired_titles", "desired_industries", "excluded_companies",
				"min_salary", "max_salary", "salary_currency",
				"preferred_locations", "job_types", "experience_levels",
				"notifications_enabled", "notification_frequency",
				"ai_matching_strictness", "auto_generate_cover_letters",
				"custom_filters",
			}),
		}).
		Create(prefs).Error
}

func (r *userRepo) ReplaceSkills(ctx context.Context, userID uint, skills []models.UserSkill) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserSkill{}).Error; err != nil {
			return err
		}
		if len(skills) == 0 {
			return nil
		}
		for i := range skills {
			skills[i].ID = 0
			skills[i].UserID = userID
		}
		return tx.Create(&skills).Error
	})
}
