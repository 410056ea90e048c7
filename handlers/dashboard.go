package handlers

import (
	"net/http"

	"salespulse-wa/middleware"
	"salespulse-wa/models"

	"github.com/gin-gonic/gin"
)

// companyFromContext returns the company resolved by the CompanyToken
// middleware.
func companyFromContext(c *gin.Context) *models.Company {
	value, ok := c.Get(middleware.CompanyKey)
	if !ok {
		return nil
	}
	company, _ := value.(*models.Company)
	return company
}

// DashboardDayMetrics is DayMetrics scoped to the token's company.
func (h *Handler) DashboardDayMetrics(c *gin.Context) {
	company := companyFromContext(c)
	if company == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing company context"})
		return
	}

	rows, err := h.store.MetricsByDay(c.Param("date"), &company.ID)
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

// DashboardRanking is Ranking scoped to the token's company.
func (h *Handler) DashboardRanking(c *gin.Context) {
	company := companyFromContext(c)
	if company == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing company context"})
		return
	}

	rows, err := h.store.MetricsByDay(c.Param("date"), &company.ID)
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

// DashboardSalespeople lists the token company's salespeople.
func (h *Handler) DashboardSalespeople(c *gin.Context) {
	company := companyFromContext(c)
	if company == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing company context"})
		return
	}

	people, err := h.store.ListSalespeople(&company.ID, c.Query("all") == "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, people)
}
