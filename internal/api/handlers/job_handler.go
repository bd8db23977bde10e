package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jobpilot/jobpilot/internal/matching"
	"github.com/jobpilot/jobpilot/internal/services"
	"github.com/jobpilot/jobpilot/internal/utils"
)

type JobHandler struct {
	svc services.JobService
}

func NewJobHandler(svc services.JobService) *JobHandler {
	return &JobHandler{svc: svc}
}

// Search handles GET /jobs with the filter spread across query params.
// Repeated params (locations, job_types, ...) OR together; separate
// params AND together.
func (h *JobHandler) Search(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	f := matching.Filter{
		Query:            c.Query("query"),
		Titles:           c.QueryArray("titles"),
		Locations:        c.QueryArray("locations"),
		JobTypes:         c.QueryArray("job_types"),
		ExperienceLevels: c.QueryArray("experience_levels"),
		Skills:           c.QueryArray("skills"),
		Companies:        c.QueryArray("companies"),
		ExcludeCompanies: c.QueryArray("exclude_companies"),
		PostedWithinDays: queryInt(c, "posted_within_days", 0),
	}
	if raw := c.Query("is_remote"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			f.IsRemote = &v
		}
	}
	if n := queryInt(c, "min_salary", 0); n > 0 {
		f.MinSalary = &n
	}
	if n := queryInt(c, "max_salary", 0); n > 0 {
		f.MaxSalary = &n
	}

	res, err := h.svc.Search(c.Request.Context(), f, queryInt(c, "page", 1), queryInt(c, "page_size", 0))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *JobHandler) Get(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}
	jobID, ok := pathID(c, "job_id")
	if !ok {
		return
	}

	job, err := h.svc.GetPosting(c.Request.Context(), jobID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Recommendations(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit := queryInt(c, "limit", 20)
	if limit > 50 {
		limit = 50
	}

	jobs, err := h.svc.RecommendationsFor(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) Match(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	jobID, ok := pathID(c, "job_id")
	if !ok {
		return
	}

	result, err := h.svc.MatchAnalysis(c.Request.Context(), userID, jobID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type SaveJobRequest struct {
	Notes      string   `json:"notes"`
	MatchScore *float64 `json:"match_score,omitempty"`
}

func (h *JobHandler) Save(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	jobID, ok := pathID(c, "job_id")
	if !ok {
		return
	}

	var req SaveJobRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "JobHandler.Save", "invalid request body", err))
			return
		}
	}

	saved, err := h.svc.SaveJob(c.Request.Context(), userID, jobID, req.Notes, req.MatchScore)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *JobHandler) Dismiss(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	jobID, ok := pathID(c, "job_id")
	if !ok {
		return
	}

	if err := h.svc.DismissJob(c.Request.Context(), userID, jobID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dismissed": true})
}

type FeedbackRequest struct {
	IsInterested *bool `json:"is_interested" binding:"required"`
}

func (h *JobHandler) Feedback(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	jobID, ok := pathID(c, "job_id")
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "JobHandler.Feedback", "is_interested is required", err))
		return
	}

	saved, err := h.svc.UpdateFeedback(c.Request.Context(), userID, jobID, *req.IsInterested)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *JobHandler) Saved(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.svc.SavedJobs(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
