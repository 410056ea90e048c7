package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"salespulse-wa/reports"
	"salespulse-wa/store"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	defaultReportTime = "20:00"
	defaultTimezone   = "America/Sao_Paulo"
	jobTimeout        = 5 * time.Minute
)

// ReportScheduler fires one independent daily report job per active tenant at
// its configured local time. Job failures are logged and never take down
// sibling jobs or the scheduler itself.
type ReportScheduler struct {
	cron     *cron.Cron
	store    *store.Store
	reporter *reports.Reporter
	log      *logrus.Entry
}

func NewReportScheduler(st *store.Store, reporter *reports.Reporter, log *logrus.Logger) *ReportScheduler {
	return &ReportScheduler{
		cron:     cron.New(),
		store:    st,
		reporter: reporter,
		log:      log.WithField("module", "scheduler"),
	}
}

// Start registers one cron entry per active company and begins running. When
// no company exists it falls back to a single global job (legacy single-tenant
// mode). A tenant whose stored schedule is invalid is logged and skipped: the
// settings are runtime-writable, and one bad tenant must not keep the other
// tenants' reports from running.
func (s *ReportScheduler) Start() error {
	companies, err := s.store.ListCompanies(true)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	if len(companies) == 0 {
		if err := s.addJob(nil, "global"); err != nil {
			s.log.WithError(err).Error("report job not scheduled")
		}
	}
	for _, company := range companies {
		companyID := company.ID
		if err := s.addJob(&companyID, company.Name); err != nil {
			s.log.WithField("company", company.Name).WithError(err).Error("report job not scheduled")
		}
	}

	s.cron.Start()
	s.log.WithField("jobs", len(s.cron.Entries())).Info("report scheduler started")
	return nil
}

// Stop halts scheduling and waits for any running job to finish.
func (s *ReportScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("report scheduler stopped")
}

func (s *ReportScheduler) addJob(companyID *uint, label string) error {
	spec, err := s.cronSpec(companyID)
	if err != nil {
		return fmt.Errorf("invalid report schedule for %s: %w", label, err)
	}

	_, err = s.cron.AddFunc(spec, func() {
		s.runJob(companyID, label)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule report for %s: %w", label, err)
	}

	s.log.WithFields(logrus.Fields{"company": label, "spec": spec}).Info("report job scheduled")
	return nil
}

// cronSpec builds a timezone-aware cron expression from the tenant's
// report_time (HH:MM) and report_timezone settings.
func (s *ReportScheduler) cronSpec(companyID *uint) (string, error) {
	reportTime := s.store.Setting("report_time", companyID, defaultReportTime)
	timezone := s.store.Setting("report_timezone", companyID, defaultTimezone)

	parts := strings.SplitN(reportTime, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("report_time %q is not HH:MM", reportTime)
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return "", fmt.Errorf("unknown report_timezone %q: %w", timezone, err)
	}

	var hour, minute int
	if _, err := fmt.Sscanf(reportTime, "%d:%d", &hour, &minute); err != nil {
		return "", fmt.Errorf("report_time %q is not HH:MM: %w", reportTime, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("report_time %q out of range", reportTime)
	}

	return fmt.Sprintf("CRON_TZ=%s %d %d * * *", timezone, minute, hour), nil
}

// runJob executes one tenant's report, isolating panics and errors so one
// failing tenant never aborts the others.
func (s *ReportScheduler) runJob(companyID *uint, label string) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.WithField("company", label).Errorf("report job panic: %v", rec)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	summary, err := s.reporter.Run(ctx, companyID, "")
	if err != nil {
		s.log.WithField("company", label).WithError(err).Error("report job failed")
		return
	}
	s.log.WithFields(logrus.Fields{
		"company":     label,
		"salespeople": summary.Salespeople,
		"alerts":      summary.Alerts,
	}).Info("report job finished")
}
