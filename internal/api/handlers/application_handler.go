package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jobpilot/jobpilot/internal/models"
	"github.com/jobpilot/jobpilot/internal/services"
	"github.com/jobpilot/jobpilot/internal/utils"
)

type ApplicationHandler struct {
	svc services.ApplicationService
}

func NewApplicationHandler(svc services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

type GenerateDraftRequest struct {
	JobID              uint   `json:"job_id" binding:"required"`
	Tone               string `json:"tone"`
	CustomInstructions string `json:"custom_instructions"`
}

func (h *ApplicationHandler) GenerateDraft(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req GenerateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ApplicationHandler.GenerateDraft", "job_id is required", err))
		return
	}

	draft, err := h.svc.GenerateDraft(c.Request.Context(), userID, req.JobID, req.Tone, req.CustomInstructions)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

type RegenerateDraftRequest struct {
	Feedback string `json:"feedback"`
	Tone     string `json:"tone"`
}

func (h *ApplicationHandler) RegenerateDraft(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	draftID, ok := pathID(c, "draft_id")
	if !ok {
		return
	}

	var req RegenerateDraftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "ApplicationHandler.RegenerateDraft", "invalid request body", err))
			return
		}
	}

	draft, err := h.svc.RegenerateDraft(c.Request.Context(), userID, draftID, req.Feedback, req.Tone)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

type DraftAnswersRequest struct {
	Questions []string `json:"questions" binding:"required"`
}

func (h *ApplicationHandler) DraftAnswers(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	draftID, ok := pathID(c, "draft_id")
	if !ok {
		return
	}

	var req DraftAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ApplicationHandler.DraftAnswers", "questions are required", err))
		return
	}

	draft, err := h.svc.DraftAnswers(c.Request.Context(), userID, draftID, req.Questions)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *ApplicationHandler) ApproveDraft(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	draftID, ok := pathID(c, "draft_id")
	if !ok {
		return
	}

	draft, err := h.svc.ApproveDraft(c.Request.Context(), userID, draftID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *ApplicationHandler) GetDraft(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	draftID, ok := pathID(c, "draft_id")
	if !ok {
		return
	}

	draft, err := h.svc.GetDraft(c.Request.Context(), userID, draftID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *ApplicationHandler) PendingDrafts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	drafts, err := h.svc.PendingDrafts(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, drafts)
}

type CreateApplicationRequest struct {
	DraftID             uint   `json:"draft_id" binding:"required"`
	CoverLetterOverride string `json:"cover_letter_override"`
	Notes               string `json:"notes"`
}

func (h *ApplicationHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ApplicationHandler.Create", "draft_id is required", err))
		return
	}

	app, err := h.svc.CreateApplication(c.Request.Context(), userID, req.DraftID, req.CoverLetterOverride, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

type SubmitRequest struct {
	Method string `json:"method"`
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	appID, ok := pathID(c, "application_id")
	if !ok {
		return
	}

	var req SubmitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "ApplicationHandler.Submit", "invalid request body", err))
			return
		}
	}

	app, err := h.svc.SubmitApplication(c.Request.Context(), userID, appID, req.Method)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

type UpdateStatusRequest struct {
	Status models.ApplicationStatus `json:"status" binding:"required"`
	Notes  string                   `json:"notes"`
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	appID, ok := pathID(c, "application_id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ApplicationHandler.UpdateStatus", "status is required", err))
		return
	}

	app, err := h.svc.UpdateStatus(c.Request.Context(), userID, appID, req.Status, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	appID, ok := pathID(c, "application_id")
	if !ok {
		return
	}

	app, err := h.svc.GetApplication(c.Request.Context(), userID, appID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var status *models.ApplicationStatus
	if raw := c.Query("status"); raw != "" {
		st := models.ApplicationStatus(raw)
		status = &st
	}

	apps, err := h.svc.Applications(c.Request.Context(), userID, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) Stats(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
