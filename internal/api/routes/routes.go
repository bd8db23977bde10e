package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jobpilot/jobpilot/internal/api/handlers"
	"github.com/jobpilot/jobpilot/internal/api/middleware"
	"github.com/jobpilot/jobpilot/internal/cache"
	"github.com/jobpilot/jobpilot/internal/services"
)

type Deps struct {
	Jobs         *handlers.JobHandler
	Applications *handlers.ApplicationHandler
	Profile      *handlers.ProfileHandler

	// Users backs the per-user AI quota gate on model-backed routes.
	Users services.UserService
	// Cache lets the match gate skip the spend on cached analyses.
	Cache cache.Cache
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	aiGate := middleware.AIQuota(d.Users)
	matchGate := middleware.MatchQuota(d.Users, d.Cache)

	auth.GET("/jobs", d.Jobs.Search)
	auth.GET("/jobs/recommendations", d.Jobs.Recommendations)
	auth.GET("/jobs/saved", d.Jobs.Saved)
	auth.GET("/jobs/match/:job_id", matchGate, d.Jobs.Match)
	auth.GET("/jobs/:job_id", d.Jobs.Get)
	auth.POST("/jobs/:job_id/save", d.Jobs.Save)
	auth.POST("/jobs/:job_id/dismiss", d.Jobs.Dismiss)
	auth.PUT("/jobs/:job_id/feedback", d.Jobs.Feedback)

	auth.POST("/applications/drafts", aiGate, d.Applications.GenerateDraft)
	auth.GET("/applications/drafts", d.Applications.PendingDrafts)
	auth.GET("/applications/drafts/:draft_id", d.Applications.GetDraft)
	auth.POST("/applications/drafts/:draft_id/regenerate", aiGate, d.Applications.RegenerateDraft)
	auth.POST("/applications/drafts/:draft_id/answers", aiGate, d.Applications.DraftAnswers)
	auth.POST("/applications/drafts/:draft_id/approve", d.Applications.ApproveDraft)

	auth.POST("/applications", d.Applications.Create)
	auth.GET("/applications", d.Applications.List)
	auth.GET("/applications/stats", d.Applications.Stats)
	auth.GET("/applications/:application_id", d.Applications.Get)
	auth.POST("/applications/:application_id/submit", d.Applications.Submit)
	auth.PUT("/applications/:application_id/status", d.Applications.UpdateStatus)

	auth.GET("/profile/me", d.Profile.Me)
	auth.PUT("/profile/update", d.Profile.Update)
	auth.PUT("/profile/preferences", d.Profile.UpdatePreferences)
	auth.PUT("/profile/skills", d.Profile.ReplaceSkills)
	auth.POST("/profile/resumes", d.Profile.AddResume)
	auth.PUT("/profile/resumes/:resume_id/primary", d.Profile.SetPrimaryResume)
}
