package handlers

import (
	"net/http"
	"strconv"
	"time"

	"salespulse-wa/analysis"
	"salespulse-wa/metrics"
	"salespulse-wa/reports"
	"salespulse-wa/store"
	"salespulse-wa/whatsapp"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler bundles every HTTP endpoint with its injected dependencies.
type Handler struct {
	store    *store.Store
	resolver *whatsapp.Resolver
	analyzer *analysis.Analyzer
	engine   *metrics.Engine
	reporter *reports.Reporter
	log      *logrus.Entry
}

func New(st *store.Store, resolver *whatsapp.Resolver, analyzer *analysis.Analyzer,
	engine *metrics.Engine, reporter *reports.Reporter, log *logrus.Logger) *Handler {
	return &Handler{
		store:    st,
		resolver: resolver,
		analyzer: analyzer,
		engine:   engine,
		reporter: reporter,
		log:      log.WithField("module", "http"),
	}
}

// Home reports basic service status.
func (h *Handler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "running",
		"service": "salespulse-wa",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "salespulse-wa",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// uintParam parses a positive integer path parameter.
func uintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(value), true
}

// optionalUintQuery parses an optional uint query parameter, nil when absent.
func optionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return nil, false
	}
	id := uint(value)
	return &id, true
}
