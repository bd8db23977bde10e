package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobpilot/jobpilot/internal/models"
	"github.com/jobpilot/jobpilot/internal/utils"
)

type applicationFixture struct {
	drafts  *fakeDraftRepo
	apps    *fakeApplicationRepo
	jobs    *fakeJobRepo
	users   *fakeUserRepo
	stub    *stubProvider
	svc     ApplicationService
	userID  uint
	jobID   uint
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	t.Helper()

	f := &applicationFixture{
		drafts: newFakeDraftRepo(),
		apps:   newFakeApplicationRepo(),
		jobs:   newFakeJobRepo(),
		users:  newFakeUserRepo(),
		stub:   &stubProvider{replies: []string{"Dear team, I am excited to apply."}, inTok: 500, outTok: 200},
	}
	ai := NewAIService(f.stub, time.Minute, nil)
	f.svc = NewApplicationService(f.drafts, f.apps, f.jobs, f.users, &fakeResumeProvider{text: "resume text", ok: true}, ai)

	f.userID = f.users.add(models.UserProfile{ChatID: 100, FirstName: "Ada"})
	f.jobID = f.jobs.add(models.JobPosting{Title: "Backend Engineer", Company: "Acme"})
	return f
}

func TestGenerateDraftSetsExpiryAndTokens(t *testing.T) {
	f := newApplicationFixture(t)

	draft, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "professional", "")
	require.NoError(t, err)

	assert.Equal(t, "Dear team, I am excited to apply.", draft.CoverLetter)
	assert.Equal(t, "professional", draft.Tone)
	assert.Equal(t, "stub-model", draft.ModelUsed)
	assert.Equal(t, 500, draft.PromptTokens)
	assert.Equal(t, 200, draft.CompletionTokens)
	assert.Zero(t, draft.RevisionCount)
	assert.False(t, draft.IsApproved)

	until := time.Until(draft.ExpiresAt)
	assert.InDelta(t, (7 * 24 * time.Hour).Hours(), until.Hours(), 1)
}

func TestGenerateDraftUnknownUser(t *testing.T) {
	f := newApplicationFixture(t)

	_, err := f.svc.GenerateDraft(context.Background(), 999, f.jobID, "", "")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestRegenerateDraftAccumulatesTokensAcrossRevisions(t *testing.T) {
	f := newApplicationFixture(t)

	draft, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "professional", "")
	require.NoError(t, err)

	draft, err = f.svc.RegenerateDraft(context.Background(), f.userID, draft.ID, "mention my open source work", "")
	require.NoError(t, err)
	draft, err = f.svc.RegenerateDraft(context.Background(), f.userID, draft.ID, "shorter please", "casual")
	require.NoError(t, err)

	assert.Equal(t, 2, draft.RevisionCount)
	assert.Equal(t, 1500, draft.PromptTokens)
	assert.Equal(t, 600, draft.CompletionTokens)
	assert.Equal(t, "casual", draft.Tone)
	assert.Equal(t, "shorter please", draft.UserFeedback)
}

func TestRegenerateDraftKeepsToneWhenNoneGiven(t *testing.T) {
	f := newApplicationFixture(t)

	draft, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "formal", "")
	require.NoError(t, err)

	draft, err = f.svc.RegenerateDraft(context.Background(), f.userID, draft.ID, "more detail", "")
	require.NoError(t, err)
	assert.Equal(t, "formal", draft.Tone)
}

func TestRegenerateDraftFeedbackReachesPrompt(t *testing.T) {
	f := newApplicationFixture(t)

	draft, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "", "")
	require.NoError(t, err)

	_, err = f.svc.RegenerateDraft(context.Background(), f.userID, draft.ID, "mention my open source work", "")
	require.NoError(t, err)

	require.Len(t, f.stub.prompts, 2)
	assert.Contains(t, f.stub.prompts[1], "mention my open source work")
}

func TestDraftAnswersStoredAndCopiedToApplication(t *testing.T) {
	f := newApplicationFixture(t)

	draft, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "", "")
	require.NoError(t, err)

	f.stub.replies = []string{`[{"question": "Why do you want this role?", "answer": "I enjoy building backend systems."}]`}

	draft, err = f.svc.DraftAnswers(context.Background(), f.userID, draft.ID, []string{"Why do you want this role?"})
	require.NoError(t, err)

	var answers []QuestionAnswer
	require.NoError(t, json.Unmarshal(draft.Answers, &answers))
	require.Len(t, answers, 1)
	assert.Equal(t, "Why do you want this role?", answers[0].Question)
	assert.Equal(t, "I enjoy building backend systems.", answers[0].Answer)

	_, err = f.svc.ApproveDraft(context.Background(), f.userID, draft.ID)
	require.NoError(t, err)
	app, err := f.svc.CreateApplication(context.Background(), f.userID, draft.ID, "", "")
	require.NoError(t, err)
	assert.JSONEq(t, string(draft.Answers), string(app.Answers))
}

func TestDraftAnswersRequireQuestions(t *testing.T) {
	f := newApplicationFixture(t)

	draft, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "", "")
	require.NoError(t, err)

	_, err = f.svc.DraftAnswers(context.Background(), f.userID, draft.ID, nil)
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestApproveDraftIsIdempotent(t *testing.T) {
	f := newApplicationFixture(t)

	draft, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "", "")
	require.NoError(t, err)

	approved, err := f.svc.ApproveDraft(context.Background(), f.userID, draft.ID)
	require.NoError(t, err)
	require.True(t, approved.IsApproved)
	require.NotNil(t, approved.ApprovedAt)
	first := *approved.ApprovedAt

	again, err := f.svc.ApproveDraft(context.Background(), f.userID, draft.ID)
	require.NoError(t, err)
	require.NotNil(t, again.ApprovedAt)
	assert.Equal(t, first, *again.ApprovedAt)
}

func TestPendingDraftsOmitApprovedAndExpired(t *testing.T) {
	f := newApplicationFixture(t)

	pending, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "", "")
	require.NoError(t, err)

	approved, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "", "")
	require.NoError(t, err)
	_, err = f.svc.ApproveDraft(context.Background(), f.userID, approved.ID)
	require.NoError(t, err)

	expired, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "", "")
	require.NoError(t, err)
	expired.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.drafts.Save(context.Background(), expired))

	drafts, err := f.svc.PendingDrafts(context.Background(), f.userID)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, pending.ID, drafts[0].ID)
}

func TestPurgeExpiredDraftsKeepsApprovedAndFresh(t *testing.T) {
	f := newApplicationFixture(t)

	fresh, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "", "")
	require.NoError(t, err)

	expired, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "", "")
	require.NoError(t, err)
	expired.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.drafts.Save(context.Background(), expired))

	approvedExpired, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "", "")
	require.NoError(t, err)
	_, err = f.svc.ApproveDraft(context.Background(), f.userID, approvedExpired.ID)
	require.NoError(t, err)
	approvedExpired, err = f.svc.GetDraft(context.Background(), f.userID, approvedExpired.ID)
	require.NoError(t, err)
	approvedExpired.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.drafts.Save(context.Background(), approvedExpired))

	n, err := f.svc.PurgeExpiredDrafts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.svc.GetDraft(context.Background(), f.userID, expired.ID)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	// The approved draft survives as the application's provenance, and the
	// fresh one is untouched.
	_, err = f.svc.GetDraft(context.Background(), f.userID, approvedExpired.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetDraft(context.Background(), f.userID, fresh.ID)
	assert.NoError(t, err)
}

func TestCreateApplicationRequiresApprovedDraft(t *testing.T) {
	f := newApplicationFixture(t)

	draft, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "", "")
	require.NoError(t, err)

	_, err = f.svc.CreateApplication(context.Background(), f.userID, draft.ID, "", "")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestCreateApplicationFromApprovedDraft(t *testing.T) {
	f := newApplicationFixture(t)

	draft, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "", "")
	require.NoError(t, err)
	_, err = f.svc.ApproveDraft(context.Background(), f.userID, draft.ID)
	require.NoError(t, err)

	app, err := f.svc.CreateApplication(context.Background(), f.userID, draft.ID, "", "priority role")
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, app.Status)
	assert.Equal(t, draft.CoverLetter, app.CoverLetter)
	require.NotNil(t, app.DraftID)
	assert.Equal(t, draft.ID, *app.DraftID)
	assert.Equal(t, "priority role", app.UserNotes)
}

func TestCreateApplicationDuplicateJobConflicts(t *testing.T) {
	f := newApplicationFixture(t)

	draft, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "", "")
	require.NoError(t, err)
	_, err = f.svc.ApproveDraft(context.Background(), f.userID, draft.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateApplication(context.Background(), f.userID, draft.ID, "", "")
	require.NoError(t, err)

	_, err = f.svc.CreateApplication(context.Background(), f.userID, draft.ID, "", "")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeConflict))
}

func TestCreateApplicationCoverLetterOverride(t *testing.T) {
	f := newApplicationFixture(t)

	draft, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "", "")
	require.NoError(t, err)
	_, err = f.svc.ApproveDraft(context.Background(), f.userID, draft.ID)
	require.NoError(t, err)

	app, err := f.svc.CreateApplication(context.Background(), f.userID, draft.ID, "My own letter.", "")
	require.NoError(t, err)
	assert.Equal(t, "My own letter.", app.CoverLetter)
}

func (f *applicationFixture) createdApplication(t *testing.T) *models.Application {
	t.Helper()
	draft, err := f.svc.GenerateDraft(context.Background(), f.userID, f.jobID, "", "")
	require.NoError(t, err)
	_, err = f.svc.ApproveDraft(context.Background(), f.userID, draft.ID)
	require.NoError(t, err)
	app, err := f.svc.CreateApplication(context.Background(), f.userID, draft.ID, "", "")
	require.NoError(t, err)
	return app
}

func TestSubmitApplicationStampsAndLogs(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.createdApplication(t)

	app, err := f.svc.SubmitApplication(context.Background(), f.userID, app.ID, "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusSubmitted, app.Status)
	require.NotNil(t, app.SubmittedAt)
	assert.Equal(t, "manual", app.SubmissionMethod)
	require.Len(t, app.StatusHistory, 1)
	assert.Equal(t, models.StatusSubmitted, app.StatusHistory[0].Status)
	assert.Equal(t, models.StatusApproved, app.StatusHistory[0].PreviousStatus)
}

func TestUpdateStatusViewedStampsResponseReceived(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.createdApplication(t)

	_, err := f.svc.SubmitApplication(context.Background(), f.userID, app.ID, "manual")
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), f.userID, app.ID, models.StatusViewed, "")
	require.NoError(t, err)

	assert.NotNil(t, updated.ResponseReceivedAt)
	assert.Nil(t, updated.InterviewScheduledAt)
}

func TestUpdateStatusInterviewStampsSchedule(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.createdApplication(t)

	for _, status := range []models.ApplicationStatus{models.StatusInProgress, models.StatusOffer} {
		updated, err := f.svc.UpdateStatus(context.Background(), f.userID, app.ID, status, "")
		require.NoError(t, err)
		assert.NotNil(t, updated.InterviewScheduledAt, "status %s", status)
	}
}

func TestUpdateStatusRejectionNotesBecomeReason(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.createdApplication(t)

	updated, err := f.svc.UpdateStatus(context.Background(), f.userID, app.ID, models.StatusRejected, "went with an internal candidate")
	require.NoError(t, err)

	assert.Equal(t, "went with an internal candidate", updated.RejectionReason)
	assert.Empty(t, updated.UserNotes)
}

func TestUpdateStatusOtherNotesStayUserNotes(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.createdApplication(t)

	updated, err := f.svc.UpdateStatus(context.Background(), f.userID, app.ID, models.StatusViewed, "recruiter opened it")
	require.NoError(t, err)

	assert.Equal(t, "recruiter opened it", updated.UserNotes)
	assert.Empty(t, updated.RejectionReason)
}

func TestUpdateStatusHistoryGrowsInOrder(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.createdApplication(t)

	_, err := f.svc.SubmitApplication(context.Background(), f.userID, app.ID, "manual")
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(context.Background(), f.userID, app.ID, models.StatusViewed, "")
	require.NoError(t, err)
	updated, err := f.svc.UpdateStatus(context.Background(), f.userID, app.ID, models.StatusOffer, "")
	require.NoError(t, err)

	require.Len(t, updated.StatusHistory, 3)
	assert.Equal(t, models.StatusSubmitted, updated.StatusHistory[0].Status)
	assert.Equal(t, models.StatusViewed, updated.StatusHistory[1].Status)
	assert.Equal(t, models.StatusOffer, updated.StatusHistory[2].Status)
	assert.Equal(t, models.StatusViewed, updated.StatusHistory[2].PreviousStatus)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.createdApplication(t)

	_, err := f.svc.UpdateStatus(context.Background(), f.userID, app.ID, "ghosted", "")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestUpdateStatusScopedToOwner(t *testing.T) {
	f := newApplicationFixture(t)
	app := f.createdApplication(t)

	otherID := f.users.add(models.UserProfile{ChatID: 200})
	_, err := f.svc.UpdateStatus(context.Background(), otherID, app.ID, models.StatusViewed, "")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestStatsResponseRate(t *testing.T) {
	f := newApplicationFixture(t)

	// Pipeline: 2 still submitted, 1 viewed, 1 offer, 1 rejected, 1 draft-stage.
	byStatus := []models.ApplicationStatus{
		models.StatusSubmitted,
		models.StatusSubmitted,
		models.StatusViewed,
		models.StatusOffer,
		models.StatusRejected,
		models.StatusApproved,
	}
	for i, status := range byStatus {
		jobID := f.jobs.add(models.JobPosting{Title: "Role", Company: "Acme"})
		app := &models.Application{UserID: f.userID, JobID: jobID, Status: status}
		require.NoError(t, f.apps.CreateIfAbsent(context.Background(), app), "app %d", i)
	}

	stats, err := f.svc.Stats(context.Background(), f.userID)
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 2, stats.ByStatus[models.StatusSubmitted])
	assert.Equal(t, 1, stats.ByStatus[models.StatusViewed])
	// 3 responded out of 2+3 ever submitted.
	assert.InDelta(t, 60.0, stats.ResponseRate, 0.001)
}

func TestStatsEmptyPipeline(t *testing.T) {
	f := newApplicationFixture(t)

	stats, err := f.svc.Stats(context.Background(), f.userID)
	require.NoError(t, err)

	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.ResponseRate)
	assert.Equal(t, 0, stats.ByStatus[models.StatusSubmitted])
}
