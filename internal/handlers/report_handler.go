package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/tripbay/internal/models"
	"github.com/joshua-takyi/tripbay/internal/services"
)

// ReportSummary serves the admin dashboard aggregates. The route sits behind
// the admin-only middleware.
func ReportSummary(rs *services.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		days := 30
		if raw := c.Query("days"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid days parameter"))
				return
			}
			days = parsed
		}

		summary, err := rs.Summary(c.Request.Context(), days)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(summary, ""))
	}
}
