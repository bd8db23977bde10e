package services

import (
	"context"
	"errors"
	"time"

	"github.com/jobpilot/jobpilot/internal/models"
	"github.com/jobpilot/jobpilot/internal/quota"
	pgrepo "github.com/jobpilot/jobpilot/internal/repositories/postgres"
	"github.com/jobpilot/jobpilot/internal/utils"
)

const DefaultDailyAICallLimit = 50

type UserService interface {
	GetByID(ctx context.Context, id uint) (*models.UserProfile, error)
	GetOrCreate(ctx context.Context, chatID int64, username, firstName, lastName string) (*models.UserProfile, error)
	Save(ctx context.Context, user *models.UserProfile) error
	UpsertPreferences(ctx context.Context, userID uint, prefs *models.Preferences) error
	ReplaceSkills(ctx context.Context, userID uint, skills []models.UserSkill) error
	AddResume(ctx context.Context, userID uint, fileName, rawText string) (*models.Resume, error)
	SetPrimaryResume(ctx context.Context, userID, resumeID uint) error
	IncrementAICalls(ctx context.Context, userID uint) error
}

type userService struct {
	users      pgrepo.UserRepository
	resumes    pgrepo.ResumeRepository
	dailyLimit int
}

func NewUserService(users pgrepo.UserRepository, resumes pgrepo.ResumeRepository, dailyLimit int) UserService {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyAICallLimit
	}
	return &userService{users: users, resumes: resumes, dailyLimit: dailyLimit}
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.UserProfile, error) {
	const op = "UserService.GetByID"

	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	return user, nil
}

// GetOrCreate resolves the profile behind a chat account, registering it
// on first contact.
func (s *userService) GetOrCreate(ctx context.Context, chatID int64, username, firstName, lastName string) (*models.UserProfile, error) {
	const op = "UserService.GetOrCreate"

	user, err := s.users.GetByChatID(ctx, chatID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}

	user = &models.UserProfile{
		ChatID:    chatID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create user", err)
	}
	return user, nil
}

func (s *userService) Save(ctx context.Context, user *models.UserProfile) error {
	const op = "UserService.Save"

	if err := s.users.Save(ctx, user); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to save user", err)
	}
	return nil
}

func (s *userService) UpsertPreferences(ctx context.Context, userID uint, prefs *models.Preferences) error {
	const op = "UserService.UpsertPreferences"

	if prefs == nil {
		return utils.E(utils.CodeInvalidArgument, op, "preferences are required", nil)
	}
	prefs.UserID = userID

	if err := s.users.UpsertPreferences(ctx, prefs); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to save preferences", err)
	}
	return nil
}

func (s *userService) ReplaceSkills(ctx context.Context, userID uint, skills []models.UserSkill) error {
	const op = "UserService.ReplaceSkills"

	if err := s.users.ReplaceSkills(ctx, userID, skills); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to replace skills", err)
	}
	return nil
}

// AddResume stores already-extracted résumé text for a user. The first
// résumé becomes primary automatically; later ones must be promoted with
// SetPrimaryResume.
func (s *userService) AddResume(ctx context.Context, userID uint, fileName, rawText string) (*models.Resume, error) {
	const op = "UserService.AddResume"

	if rawText == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "resume text is required", nil)
	}
	if _, err := s.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	_, err := s.resumes.GetPrimary(ctx, userID)
	isFirst := errors.Is(err, utils.ErrNotFound)
	if err != nil && !isFirst {
		return nil, utils.E(utils.CodeInternal, op, "failed to check resumes", err)
	}

	r := &models.Resume{
		UserID:    userID,
		FileName:  fileName,
		RawText:   rawText,
		IsPrimary: isFirst,
		IsActive:  true,
	}
	if err := s.resumes.Create(ctx, r); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store resume", err)
	}
	return r, nil
}

func (s *userService) SetPrimaryResume(ctx context.Context, userID, resumeID uint) error {
	const op = "UserService.SetPrimaryResume"

	err := s.resumes.SetPrimary(ctx, userID, resumeID)
	if errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeNotFound, op, "resume not found", err)
	}
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to switch primary resume", err)
	}
	return nil
}

// IncrementAICalls spends one unit of the user's daily AI allowance,
// rolling the window over lazily on the first call of a new day. An
// exhausted allowance returns CodeExhausted.
func (s *userService) IncrementAICalls(ctx context.Context, userID uint) error {
	const op = "UserService.IncrementAICalls"

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeNotFound, op, "user not found", err)
	}
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to load user", err)
	}

	q := quota.Quota{Count: user.AICallsToday}
	if user.AICallsResetAt != nil {
		q.WindowStart = *user.AICallsResetAt
	}

	allowed, next := quota.CheckAndAdvance(q, time.Now().UTC(), s.dailyLimit)
	if !allowed {
		return utils.E(utils.CodeExhausted, op, "daily AI call limit reached", nil)
	}

	user.AICallsToday = next.Count
	user.AICallsResetAt = &next.WindowStart
	if err := s.users.Save(ctx, user); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to persist call count", err)
	}
	return nil
}
