package reports

import (
	"context"
	"fmt"
	"time"

	"salespulse-wa/metrics"
	"salespulse-wa/store"
	"salespulse-wa/whatsapp"

	"github.com/sirupsen/logrus"
)

// Summary describes one report run.
type Summary struct {
	Date         string `json:"date"`
	CompanyID    *uint  `json:"company_id"`
	Salespeople  int    `json:"salespeople"`
	Alerts       int    `json:"alerts"`
	MessagesSent int    `json:"messages_sent"`
}

// Reporter runs the full report pipeline: compute metrics, detect alerts,
// render the text and push it to the manager's phone.
type Reporter struct {
	store  *store.Store
	engine *metrics.Engine
	sender *whatsapp.Sender
	log    *logrus.Entry
}

func NewReporter(st *store.Store, engine *metrics.Engine, sender *whatsapp.Sender, log *logrus.Logger) *Reporter {
	return &Reporter{
		store:  st,
		engine: engine,
		sender: sender,
		log:    log.WithField("module", "reports"),
	}
}

// Run generates and sends the report for one date (defaults to today).
// A missing manager phone is logged and skips the send, not an error.
func (r *Reporter) Run(ctx context.Context, companyID *uint, date string) (*Summary, error) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	rows, err := r.engine.Compute(date, nil, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}

	salespeople, err := r.store.ListSalespeople(companyID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list salespeople: %w", err)
	}
	names := make(map[uint]string, len(salespeople))
	for _, sp := range salespeople {
		names[sp.ID] = sp.Name
	}

	alerts := DetectAlerts(rows, names)
	text := BuildReport(date, rows, names, alerts)

	sent := 0
	managerPhone := r.store.Setting("manager_phone", companyID, "")
	if managerPhone != "" {
		sent, err = r.sender.SendReport(ctx, companyID, managerPhone, text)
		if err != nil {
			return nil, fmt.Errorf("failed to send report: %w", err)
		}
	} else {
		r.log.WithField("company_id", companyID).Warn("no manager_phone configured, report not sent")
	}

	r.log.WithFields(logrus.Fields{
		"date":        date,
		"company_id":  companyID,
		"salespeople": len(rows),
		"alerts":      len(alerts),
		"messages":    sent,
	}).Info("report generated")

	return &Summary{
		Date:         date,
		CompanyID:    companyID,
		Salespeople:  len(rows),
		Alerts:       len(alerts),
		MessagesSent: sent,
	}, nil
}
