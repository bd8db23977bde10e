package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jobpilot/jobpilot/internal/models"
	"github.com/jobpilot/jobpilot/internal/services"
	"github.com/jobpilot/jobpilot/internal/utils"
)

type ProfileHandler struct {
	svc services.UserService
}

func NewProfileHandler(svc services.UserService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := h.svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`

	Headline          *string `json:"headline,omitempty"`
	Summary           *string `json:"summary,omitempty"`
	YearsOfExperience *int    `json:"years_of_experience,omitempty"`
	CurrentTitle      *string `json:"current_title,omitempty"`
	CurrentCompany    *string `json:"current_company,omitempty"`

	Location          *string `json:"location,omitempty"`
	WillingToRelocate *bool   `json:"willing_to_relocate,omitempty"`
	RemotePreference  *string `json:"remote_preference,omitempty"`
}

func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProfileHandler.Update", "invalid request body", err))
		return
	}

	user, err := h.svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	// Apply partial updates
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Headline != nil {
		user.Headline = *req.Headline
	}
	if req.Summary != nil {
		user.Summary = *req.Summary
	}
	if req.YearsOfExperience != nil {
		user.YearsOfExperience = req.YearsOfExperience
	}
	if req.CurrentTitle != nil {
		user.CurrentTitle = *req.CurrentTitle
	}
	if req.CurrentCompany != nil {
		user.CurrentCompany = *req.CurrentCompany
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.WillingToRelocate != nil {
		user.WillingToRelocate = *req.WillingToRelocate
	}
	if req.RemotePreference != nil {
		user.RemotePreference = *req.RemotePreference
	}

	if err := h.svc.Save(c.Request.Context(), user); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var prefs models.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProfileHandler.UpdatePreferences", "invalid request body", err))
		return
	}

	if err := h.svc.UpsertPreferences(c.Request.Context(), userID, &prefs); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

type SkillInput struct {
	Name            string `json:"name" binding:"required"`
	Proficiency     string `json:"proficiency"`
	YearsExperience *int   `json:"years_experience"`
	IsPrimary       bool   `json:"is_primary"`
}

func (h *ProfileHandler) ReplaceSkills(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req []SkillInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProfileHandler.ReplaceSkills", "invalid request body", err))
		return
	}

	skills := make([]models.UserSkill, 0, len(req))
	for _, in := range req {
		skills = append(skills, models.UserSkill{
			UserID:          userID,
			Name:            in.Name,
			Proficiency:     in.Proficiency,
			YearsExperience: in.YearsExperience,
			IsPrimary:       in.IsPrimary,
		})
	}

	if err := h.svc.ReplaceSkills(c.Request.Context(), userID, skills); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, skills)
}

type AddResumeRequest struct {
	FileName string `json:"file_name"`
	RawText  string `json:"raw_text" binding:"required"`
}

func (h *ProfileHandler) AddResume(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProfileHandler.AddResume", "raw_text is required", err))
		return
	}

	r, err := h.svc.AddResume(c.Request.Context(), userID, req.FileName, req.RawText)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *ProfileHandler) SetPrimaryResume(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	resumeID, ok := pathID(c, "resume_id")
	if !ok {
		return
	}

	if err := h.svc.SetPrimaryResume(c.Request.Context(), userID, resumeID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_primary": true})
}
