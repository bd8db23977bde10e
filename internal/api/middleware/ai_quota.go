package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jobpilot/jobpilot/internal/cache"
	"github.com/jobpilot/jobpilot/internal/models"
	"github.com/jobpilot/jobpilot/internal/services"
	"github.com/jobpilot/jobpilot/internal/utils"
)

// AIQuota gates model-backed routes on the user's daily allowance. It
// spends one call up front; the handler behind it must therefore reach
// the model at most once.
func AIQuota(users services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("user_id")
		userID, isUint := v.(uint)
		if !ok || !isUint {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "unauthorized",
			})
			return
		}

		if err := users.IncrementAICalls(c.Request.Context(), userID); err != nil {
			var ae *utils.AppError
			msg := "quota check failed"
			code := utils.CodeInternal
			if errors.As(err, &ae) {
				msg = ae.Message
				code = ae.Code
			}
			c.AbortWithStatusJSON(utils.HTTPStatus(err), apiError{Code: code, Message: msg})
			return
		}
		c.Next()
	}
}

// MatchQuota gates the match-analysis route. A cached analysis for the
// (user, posting) pair is served without spending a daily call; only a
// cache miss goes through the quota.
func MatchQuota(users services.UserService, store cache.Cache) gin.HandlerFunc {
	gate := AIQuota(users)
	return func(c *gin.Context) {
		v, ok := c.Get("user_id")
		userID, isUint := v.(uint)
		if ok && isUint && store != nil {
			if jobID, err := strconv.ParseUint(c.Param("job_id"), 10, 32); err == nil {
				var cached models.MatchResult
				if hit, err := store.GetJSON(c.Request.Context(), cache.MatchAnalysisKey(userID, uint(jobID)), &cached); err == nil && hit {
					c.Next()
					return
				}
			}
		}
		gate(c)
	}
}
