package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"salespulse-wa/models"

	"github.com/gin-gonic/gin"
)

// ComputeMetrics recalculates daily metrics for a date (default today), for
// one salesperson or every active one, optionally scoped to a company.
func (h *Handler) ComputeMetrics(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	salespersonID, ok := optionalUintQuery(c, "salesperson_id")
	if !ok {
		return
	}
	companyID, ok := optionalUintQuery(c, "company_id")
	if !ok {
		return
	}

	results, err := h.engine.Compute(date, salespersonID, companyID)
	if err != nil {
		h.log.WithError(err).Error("metrics computation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "metrics": results})
}

// SalespersonMetrics returns one salesperson's metric history, newest first.
func (h *Handler) SalespersonMetrics(c *gin.Context) {
	salespersonID, ok := uintParam(c, "salesperson_id")
	if !ok {
		return
	}

	limit := 30
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit, expected 1-365"})
			return
		}
		limit = parsed
	}

	rows, err := h.store.MetricsBySalesperson(salespersonID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No metrics found"})
		return
	}

	c.JSON(http.StatusOK, rows)
}

// DayMetrics returns every salesperson's metric row for a date.
func (h *Handler) DayMetrics(c *gin.Context) {
	date := c.Param("date")
	companyID, ok := optionalUintQuery(c, "company_id")
	if !ok {
		return
	}

	rows, err := h.store.MetricsByDay(date, companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No metrics found for this day"})
		return
	}

	c.JSON(http.StatusOK, rows)
}

// Ranking orders a day's metrics by score then volume, both descending, and
// assigns 1-indexed positions.
func (h *Handler) Ranking(c *gin.Context) {
	date := c.Param("date")
	companyID, ok := optionalUintQuery(c, "company_id")
	if !ok {
		return
	}

	rows, err := h.store.MetricsByDay(date, companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No metrics found for this day"})
		return
	}

	c.JSON(http.StatusOK, rankMetrics(rows))
}

// rankMetrics sorts by score then volume, both descending, and assigns
// 1-indexed positions. Absent scores rank as zero.
func rankMetrics(rows []models.DailyMetric) []gin.H {
	sort.SliceStable(rows, func(i, j int) bool {
		si, sj := 0.0, 0.0
		if rows[i].AvgScore != nil {
			si = *rows[i].AvgScore
		}
		if rows[j].AvgScore != nil {
			sj = *rows[j].AvgScore
		}
		if si != sj {
			return si > sj
		}
		return rows[i].TotalConversations > rows[j].TotalConversations
	})

	out := make([]gin.H, 0, len(rows))
	for i, m := range rows {
		out = append(out, gin.H{
			"position":            i + 1,
			"salesperson_id":      m.SalespersonID,
			"avg_score":           m.AvgScore,
			"total_conversations": m.TotalConversations,
			"total_customers":     m.TotalCustomers,
			"unanswered_leads":    m.UnansweredLeads,
		})
	}
	return out
}
