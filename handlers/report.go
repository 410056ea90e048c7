package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SendReport runs the full report pipeline immediately for a given date
// (default today), optionally for a single company.
func (h *Handler) SendReport(c *gin.Context) {
	date := c.Query("date")
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
	}

	companyID, ok := optionalUintQuery(c, "company_id")
	if !ok {
		return
	}

	summary, err := h.reporter.Run(c.Request.Context(), companyID, date)
	if err != nil {
		h.log.WithError(err).Error("manual report run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}
