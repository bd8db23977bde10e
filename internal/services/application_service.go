package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"

	"github.com/jobpilot/jobpilot/internal/models"
	"github.com/jobpilot/jobpilot/internal/providers/resume"
	pgrepo "github.com/jobpilot/jobpilot/internal/repositories/postgres"
	"github.com/jobpilot/jobpilot/internal/utils"
)

const draftTTL = 7 * 24 * time.Hour

// ApplicationStats aggregates a user's pipeline. ResponseRate is the
// percentage of submitted applications the employer reacted to.
type ApplicationStats struct {
	Total        int                              `json:"total_applications"`
	ByStatus     map[models.ApplicationStatus]int `json:"by_status"`
	ResponseRate float64                          `json:"response_rate"`
}

type ApplicationService interface {
	GenerateDraft(ctx context.Context, userID, jobID uint, tone, customInstructions string) (*models.ApplicationDraft, error)
	RegenerateDraft(ctx context.Context, userID, draftID uint, feedback, newTone string) (*models.ApplicationDraft, error)
	DraftAnswers(ctx context.Context, userID, draftID uint, questions []string) (*models.ApplicationDraft, error)
	ApproveDraft(ctx context.Context, userID, draftID uint) (*models.ApplicationDraft, error)
	GetDraft(ctx context.Context, userID, draftID uint) (*models.ApplicationDraft, error)
	PendingDrafts(ctx context.Context, userID uint) ([]models.ApplicationDraft, error)

	CreateApplication(ctx context.Context, userID, draftID uint, coverLetterOverride, notes string) (*models.Application, error)
	SubmitApplication(ctx context.Context, userID, appID uint, method string) (*models.Application, error)
	UpdateStatus(ctx context.Context, userID, appID uint, status models.ApplicationStatus, notes string) (*models.Application, error)
	GetApplication(ctx context.Context, userID, appID uint) (*models.Application, error)
	Applications(ctx context.Context, userID uint, status *models.ApplicationStatus) ([]models.Application, error)
	Stats(ctx context.Context, userID uint) (*ApplicationStats, error)

	PurgeExpiredDrafts(ctx context.Context) (int64, error)
}

type applicationService struct {
	drafts  pgrepo.DraftRepository
	apps    pgrepo.ApplicationRepository
	jobs    pgrepo.JobRepository
	users   pgrepo.UserRepository
	resumes resume.TextProvider
	ai      AIService
}

func NewApplicationService(drafts pgrepo.DraftRepository, apps pgrepo.ApplicationRepository, jobs pgrepo.JobRepository, users pgrepo.UserRepository, resumes resume.TextProvider, ai AIService) ApplicationService {
	return &applicationService{drafts: drafts, apps: apps, jobs: jobs, users: users, resumes: resumes, ai: ai}
}

// GenerateDraft produces a fresh cover-letter draft for a posting. The
// primary résumé enriches the prompt when one exists; its absence is not
// an error.
func (s *applicationService) GenerateDraft(ctx context.Context, userID, jobID uint, tone, customInstructions string) (*models.ApplicationDraft, error) {
	const op = "ApplicationService.GenerateDraft"

	user, job, err := s.loadUserAndJob(ctx, op, userID, jobID)
	if err != nil {
		return nil, err
	}

	resumeText := s.resumeTextFor(ctx, userID)

	if tone == "" {
		tone = "professional"
	}

	letter, err := s.ai.GenerateCoverLetter(ctx, user, job, resumeText, tone, customInstructions)
	if err != nil {
		return nil, err
	}

	draft := &models.ApplicationDraft{
		UserID:           userID,
		JobID:            jobID,
		CoverLetter:      letter.Text,
		Tone:             tone,
		ModelUsed:        letter.Model,
		PromptTokens:     letter.InputTokens,
		CompletionTokens: letter.OutputTokens,
		ExpiresAt:        time.Now().UTC().Add(draftTTL),
	}
	if err := s.drafts.Create(ctx, draft); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store draft", err)
	}
	return draft, nil
}

// RegenerateDraft rewrites the draft in place using the user's feedback
// as extra instructions. Token counts accumulate across revisions so the
// draft carries its full cost.
func (s *applicationService) RegenerateDraft(ctx context.Context, userID, draftID uint, feedback, newTone string) (*models.ApplicationDraft, error) {
	const op = "ApplicationService.RegenerateDraft"

	draft, err := s.getDraft(ctx, op, userID, draftID)
	if err != nil {
		return nil, err
	}

	user, job, err := s.loadUserAndJob(ctx, op, userID, draft.JobID)
	if err != nil {
		return nil, err
	}

	tone := newTone
	if tone == "" {
		tone = draft.Tone
	}
	if tone == "" {
		tone = "professional"
	}

	resumeText := s.resumeTextFor(ctx, userID)

	letter, err := s.ai.GenerateCoverLetter(ctx, user, job, resumeText, tone, feedback)
	if err != nil {
		return nil, err
	}

	draft.CoverLetter = letter.Text
	draft.Tone = tone
	draft.UserFeedback = feedback
	draft.RevisionCount++
	draft.PromptTokens += letter.InputTokens
	draft.CompletionTokens += letter.OutputTokens

	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update draft", err)
	}
	return draft, nil
}

// DraftAnswers generates answers for a posting's screening questions and
// stores them on the draft next to the cover letter.
func (s *applicationService) DraftAnswers(ctx context.Context, userID, draftID uint, questions []string) (*models.ApplicationDraft, error) {
	const op = "ApplicationService.DraftAnswers"

	if len(questions) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "no questions provided", nil)
	}

	draft, err := s.getDraft(ctx, op, userID, draftID)
	if err != nil {
		return nil, err
	}

	user, job, err := s.loadUserAndJob(ctx, op, userID, draft.JobID)
	if err != nil {
		return nil, err
	}

	answers, err := s.ai.AnswerQuestions(ctx, user, job, questions)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to encode answers", err)
	}
	draft.Answers = datatypes.JSON(raw)

	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update draft", err)
	}
	return draft, nil
}

// ApproveDraft freezes the draft. Approving twice is a no-op that keeps
// the original approval timestamp.
func (s *applicationService) ApproveDraft(ctx context.Context, userID, draftID uint) (*models.ApplicationDraft, error) {
	const op = "ApplicationService.ApproveDraft"

	draft, err := s.getDraft(ctx, op, userID, draftID)
	if err != nil {
		return nil, err
	}
	if draft.IsApproved {
		return draft, nil
	}

	now := time.Now().UTC()
	draft.IsApproved = true
	draft.ApprovedAt = &now
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to approve draft", err)
	}
	return draft, nil
}

func (s *applicationService) GetDraft(ctx context.Context, userID, draftID uint) (*models.ApplicationDraft, error) {
	return s.getDraft(ctx, "ApplicationService.GetDraft", userID, draftID)
}

func (s *applicationService) PendingDrafts(ctx context.Context, userID uint) ([]models.ApplicationDraft, error) {
	const op = "ApplicationService.PendingDrafts"

	drafts, err := s.drafts.ListPending(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list drafts", err)
	}
	return drafts, nil
}

// CreateApplication turns an approved draft into the durable application
// record. One application per (user, job); re-applying requires a
// withdrawal first, which still counts as the same record.
func (s *applicationService) CreateApplication(ctx context.Context, userID, draftID uint, coverLetterOverride, notes string) (*models.Application, error) {
	const op = "ApplicationService.CreateApplication"

	draft, err := s.getDraft(ctx, op, userID, draftID)
	if err != nil {
		return nil, err
	}
	if !draft.IsApproved {
		return nil, utils.E(utils.CodeInvalidArgument, op, "draft must be approved before applying", nil)
	}

	coverLetter := draft.CoverLetter
	if coverLetterOverride != "" {
		coverLetter = coverLetterOverride
	}

	app := &models.Application{
		UserID:        userID,
		JobID:         draft.JobID,
		DraftID:       &draft.ID,
		CoverLetter:   coverLetter,
		Answers:       draft.Answers,
		Status:        models.StatusApproved,
		StatusHistory: models.StatusHistory{},
		UserNotes:     notes,
	}
	if err := s.apps.CreateIfAbsent(ctx, app); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.E(utils.CodeConflict, op, "an application for this job already exists", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create application", err)
	}
	return app, nil
}

func (s *applicationService) SubmitApplication(ctx context.Context, userID, appID uint, method string) (*models.Application, error) {
	const op = "ApplicationService.SubmitApplication"

	app, err := s.getApplication(ctx, op, userID, appID)
	if err != nil {
		return nil, err
	}

	if method == "" {
		method = "manual"
	}

	now := time.Now().UTC()
	transition(app, models.StatusSubmitted, "", now)
	app.SubmittedAt = &now
	app.SubmissionMethod = method

	if err := s.apps.Save(ctx, app); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to submit application", err)
	}
	return app, nil
}

func (s *applicationService) UpdateStatus(ctx context.Context, userID, appID uint, status models.ApplicationStatus, notes string) (*models.Application, error) {
	const op = "ApplicationService.UpdateStatus"

	if !status.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown application status", nil)
	}

	app, err := s.getApplication(ctx, op, userID, appID)
	if err != nil {
		return nil, err
	}

	transition(app, status, notes, time.Now().UTC())

	if err := s.apps.Save(ctx, app); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update status", err)
	}
	return app, nil
}

// transition moves the application to a new status, stamping the
// milestone timestamps and appending to the immutable history log. Notes
// land in the rejection reason only for a rejection; everywhere else
// they overwrite the user notes.
func transition(app *models.Application, status models.ApplicationStatus, notes string, now time.Time) {
	prev := app.Status
	app.Status = status

	switch status {
	case models.StatusViewed:
		app.ResponseReceivedAt = &now
	case models.StatusInProgress, models.StatusOffer:
		app.InterviewScheduledAt = &now
	}

	app.StatusHistory = append(app.StatusHistory, models.StatusChange{
		Status:         status,
		PreviousStatus: prev,
		Timestamp:      now,
		Notes:          notes,
	})

	if notes != "" {
		if status == models.StatusRejected {
			app.RejectionReason = notes
		} else {
			app.UserNotes = notes
		}
	}
}

func (s *applicationService) GetApplication(ctx context.Context, userID, appID uint) (*models.Application, error) {
	return s.getApplication(ctx, "ApplicationService.GetApplication", userID, appID)
}

func (s *applicationService) Applications(ctx context.Context, userID uint, status *models.ApplicationStatus) ([]models.Application, error) {
	const op = "ApplicationService.Applications"

	if status != nil && !status.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown application status", nil)
	}

	apps, err := s.apps.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list applications", err)
	}
	return apps, nil
}

func (s *applicationService) Stats(ctx context.Context, userID uint) (*ApplicationStats, error) {
	const op = "ApplicationService.Stats"

	counts, err := s.apps.CountByStatus(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count applications", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	byStatus := make(map[models.ApplicationStatus]int, len(models.ApplicationStatuses))
	for _, st := range models.ApplicationStatuses {
		byStatus[st] = counts[st]
	}

	return &ApplicationStats{
		Total:        total,
		ByStatus:     byStatus,
		ResponseRate: responseRate(counts),
	}, nil
}

// responseRate computes the employer response percentage. Applications
// that moved past submitted no longer count in the submitted bucket, so
// the denominator adds the responded set back in.
func responseRate(counts map[models.ApplicationStatus]int) float64 {
	responded := counts[models.StatusViewed] +
		counts[models.StatusInProgress] +
		counts[models.StatusOffer] +
		counts[models.StatusRejected]
	submitted := counts[models.StatusSubmitted] + responded
	if submitted == 0 {
		return 0
	}
	return float64(responded) / float64(submitted) * 100
}

// PurgeExpiredDrafts drops unapproved drafts past their expiry. Called by
// the periodic sweeper but safe to invoke from an external scheduler too.
func (s *applicationService) PurgeExpiredDrafts(ctx context.Context) (int64, error) {
	const op = "ApplicationService.PurgeExpiredDrafts"

	n, err := s.drafts.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to purge expired drafts", err)
	}
	return n, nil
}

func (s *applicationService) getDraft(ctx context.Context, op string, userID, draftID uint) (*models.ApplicationDraft, error) {
	draft, err := s.drafts.GetByIDForUser(ctx, draftID, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "draft not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load draft", err)
	}
	return draft, nil
}

func (s *applicationService) getApplication(ctx context.Context, op string, userID, appID uint) (*models.Application, error) {
	app, err := s.apps.GetByIDForUser(ctx, appID, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "application not found", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load application", err)
	}
	return app, nil
}

func (s *applicationService) loadUserAndJob(ctx context.Context, op string, userID, jobID uint) (*models.UserProfile, *models.JobPosting, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, nil, utils.E(utils.CodeNotFound, op, "user not found", err)
	}
	if err != nil {
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, nil, utils.E(utils.CodeNotFound, op, "job not found", err)
	}
	if err != nil {
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}
	return user, job, nil
}

func (s *applicationService) resumeTextFor(ctx context.Context, userID uint) string {
	if s.resumes == nil {
		return ""
	}
	text, ok, err := s.resumes.PrimaryText(ctx, userID)
	if err != nil || !ok {
		return ""
	}
	return text
}
