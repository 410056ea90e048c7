package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"salespulse-wa/store"

	"github.com/gin-gonic/gin"
)

type createCompanyRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) CreateCompany(c *gin.Context) {
	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	company, err := h.store.CreateCompany(req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, company)
}

func (h *Handler) ListCompanies(c *gin.Context) {
	companies, err := h.store.ListCompanies(c.Query("all") == "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, companies)
}

type createSalespersonRequest struct {
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	CompanyID *uint  `json:"company_id"`
}

func (h *Handler) CreateSalesperson(c *gin.Context) {
	var req createSalespersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and phone are required"})
		return
	}

	sp, err := h.store.CreateSalesperson(req.Name, req.Phone, req.CompanyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sp)
}

// DeactivateSalesperson soft-deletes: history stays attributable.
func (h *Handler) DeactivateSalesperson(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	companyID, ok := optionalUintQuery(c, "company_id")
	if !ok {
		return
	}
	if companyID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company_id is required"})
		return
	}

	err := h.store.DeactivateSalesperson(id, *companyID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Salesperson not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

type createInstanceRequest struct {
	CompanyID    uint   `json:"company_id" binding:"required"`
	InstanceName string `json:"instance_name" binding:"required"`
	Phone        string `json:"phone"`
}

func (h *Handler) CreateInstance(c *gin.Context) {
	var req createInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company_id and instance_name are required"})
		return
	}

	instance, err := h.store.CreateInstance(req.CompanyID, req.InstanceName, req.Phone)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, instance)
}

type updateInstanceRequest struct {
	CompanyID    uint    `json:"company_id" binding:"required"`
	InstanceName *string `json:"instance_name"`
	Phone        *string `json:"phone"`
}

func (h *Handler) UpdateInstance(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req updateInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company_id is required"})
		return
	}

	instance, err := h.store.UpdateInstance(id, req.CompanyID, req.InstanceName, req.Phone)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, instance)
}

func (h *Handler) DeactivateInstance(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	companyID, ok := optionalUintQuery(c, "company_id")
	if !ok {
		return
	}
	if companyID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company_id is required"})
		return
	}

	err := h.store.DeactivateInstance(id, *companyID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

type saveConfigRequest struct {
	Key       string `json:"key" binding:"required"`
	Value     string `json:"value"`
	CompanyID *uint  `json:"company_id"`
}

func (h *Handler) SaveConfig(c *gin.Context) {
	var req saveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Key is required"})
		return
	}
	if err := validateSetting(req.Key, req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	config, err := h.store.SaveSetting(req.Key, req.Value, req.CompanyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, config)
}

// validateSetting rejects values that would later break the report scheduler.
// The schedule settings feed cron registration at boot, so a bad value stored
// here would otherwise only surface on the next restart. An empty value always
// passes: it clears the override.
func validateSetting(key, value string) error {
	if value == "" {
		return nil
	}
	switch key {
	case "report_time":
		if _, err := time.Parse("15:04", value); err != nil {
			return fmt.Errorf("report_time %q is not HH:MM", value)
		}
	case "report_timezone":
		if _, err := time.LoadLocation(value); err != nil {
			return fmt.Errorf("unknown report_timezone %q", value)
		}
	}
	return nil
}

type savePromptRequest struct {
	Content   string `json:"content" binding:"required"`
	CompanyID *uint  `json:"company_id"`
	Name      string `json:"name"`
}

// SavePrompt stores a new active prompt, atomically deactivating the previous
// one for the same (company, name).
func (h *Handler) SavePrompt(c *gin.Context) {
	var req savePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}
	name := req.Name
	if name == "" {
		name = "analysis_prompt"
	}

	prompt, err := h.store.SavePrompt(req.Content, req.CompanyID, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prompt)
}
