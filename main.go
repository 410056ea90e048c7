package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salespulse-wa/analysis"
	"salespulse-wa/config"
	"salespulse-wa/database"
	"salespulse-wa/handlers"
	"salespulse-wa/logger"
	"salespulse-wa/metrics"
	"salespulse-wa/middleware"
	"salespulse-wa/reports"
	"salespulse-wa/store"
	"salespulse-wa/whatsapp"
	"salespulse-wa/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log.Level)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	log.Info("database connected")

	// Build services with explicit wiring; nothing here is a package-level
	// singleton, so shutdown ordering stays under main's control.
	st := store.New(db)
	engine := metrics.NewEngine(st, log)
	analyzer := analysis.NewAnalyzer(st, log)
	resolver := whatsapp.NewResolver(st, log)
	sender := whatsapp.NewSender(st, log)
	reporter := reports.NewReporter(st, engine, sender, log)
	scheduler := worker.NewReportScheduler(st, reporter, log)

	if err := scheduler.Start(); err != nil {
		log.WithError(err).Fatal("failed to start report scheduler")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(middleware.CORS())

	h := handlers.New(st, resolver, analyzer, engine, reporter, log)

	router.GET("/", h.Home)
	router.GET("/health", h.Health)

	// Inbound gateway events.
	router.POST("/webhook/messages", h.Webhook)

	// Conversation analysis.
	router.POST("/analyze/:conversation_id", h.Analyze)
	router.GET("/analyses/:conversation_id", h.ListAnalyses)

	// Daily metrics.
	metricsGroup := router.Group("/metrics")
	{
		metricsGroup.POST("/compute", h.ComputeMetrics)
		metricsGroup.GET("/salesperson/:salesperson_id", h.SalespersonMetrics)
		metricsGroup.GET("/day/:date", h.DayMetrics)
		metricsGroup.GET("/ranking/:date", h.Ranking)
	}

	// Manual report trigger.
	router.POST("/reports/send", h.SendReport)

	// Admin endpoints, JWT-protected.
	admin := router.Group("/admin")
	admin.Use(middleware.JWT())
	{
		admin.POST("/companies", h.CreateCompany)
		admin.GET("/companies", h.ListCompanies)
		admin.POST("/salespeople", h.CreateSalesperson)
		admin.DELETE("/salespeople/:id", h.DeactivateSalesperson)
		admin.POST("/instances", h.CreateInstance)
		admin.PUT("/instances/:id", h.UpdateInstance)
		admin.DELETE("/instances/:id", h.DeactivateInstance)
		admin.PUT("/config", h.SaveConfig)
		admin.PUT("/prompt", h.SavePrompt)
	}

	// Dashboard reads, scoped by the company access token.
	dashboard := router.Group("/dashboard")
	dashboard.Use(middleware.CompanyToken(st))
	{
		dashboard.GET("/metrics/day/:date", h.DashboardDayMetrics)
		dashboard.GET("/metrics/ranking/:date", h.DashboardRanking)
		dashboard.GET("/salespeople", h.DashboardSalespeople)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("port", cfg.Server.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	<-quit
	log.Info("shutting down")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited gracefully")
}
