package metrics

import (
	"fmt"

	"salespulse-wa/models"
	"salespulse-wa/store"

	"github.com/sirupsen/logrus"
)

// Engine computes and persists daily metrics per salesperson.
type Engine struct {
	store *store.Store
	log   *logrus.Entry
}

func NewEngine(st *store.Store, log *logrus.Logger) *Engine {
	return &Engine{store: st, log: log.WithField("module", "metrics")}
}

// Compute calculates metrics for one date (YYYY-MM-DD, local). With a
// salesperson id it computes that one row; otherwise it iterates every active
// salesperson, optionally scoped to one company. Each row is upserted, so the
// whole call is safely re-runnable.
func (e *Engine) Compute(date string, salespersonID, companyID *uint) ([]models.DailyMetric, error) {
	if salespersonID != nil {
		metric, err := e.computeSalesperson(date, *salespersonID)
		if err != nil {
			return nil, err
		}
		return []models.DailyMetric{*metric}, nil
	}

	salespeople, err := e.store.ListSalespeople(companyID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list salespeople: %w", err)
	}

	results := make([]models.DailyMetric, 0, len(salespeople))
	for _, sp := range salespeople {
		metric, err := e.computeSalesperson(date, sp.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, *metric)
	}
	return results, nil
}

// computeSalesperson builds and upserts one (salesperson, date) row. A day
// with no qualifying conversations still produces a zero row so reports never
// skip a salesperson silently.
func (e *Engine) computeSalesperson(date string, salespersonID uint) (*models.DailyMetric, error) {
	conversations, err := e.store.ConversationsForDay(date, &salespersonID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversations for %s: %w", date, err)
	}

	funnel := CountFunnel(conversations)
	score := AverageScore(conversations)
	unanswered := CountUnansweredLeads(conversations)

	// Aggregate response times as a mean of per-conversation values, not a
	// flat mean over pooled deltas. A long conversation therefore weighs the
	// same as a short one.
	var firsts, avgs []int
	for i := range conversations {
		if len(conversations[i].Messages) == 0 {
			continue
		}
		times := ComputeResponseTimes(conversations[i].Messages)
		if times.FirstResponseSeconds != nil {
			firsts = append(firsts, *times.FirstResponseSeconds)
		}
		if times.AvgResponseSeconds != nil {
			avgs = append(avgs, *times.AvgResponseSeconds)
		}
	}

	var firstResponse, avgResponse *int
	if len(firsts) > 0 {
		v := roundedMeanInt(firsts)
		firstResponse = &v
	}
	if len(avgs) > 0 {
		v := roundedMeanInt(avgs)
		avgResponse = &v
	}

	metric := &models.DailyMetric{
		SalespersonID:        salespersonID,
		Date:                 date,
		TotalConversations:   len(conversations),
		FirstResponseSeconds: firstResponse,
		AvgResponseSeconds:   avgResponse,
		TotalMQL:             funnel.MQL,
		TotalSQL:             funnel.SQL,
		TotalCustomers:       funnel.Customers,
		AvgScore:             score,
		UnansweredLeads:      unanswered,
	}

	if err := e.store.UpsertDailyMetric(metric); err != nil {
		return nil, fmt.Errorf("failed to upsert metric for salesperson %d: %w", salespersonID, err)
	}

	e.log.WithFields(logrus.Fields{
		"salesperson_id": salespersonID,
		"date":           date,
		"conversations":  len(conversations),
	}).Info("daily metrics computed")

	return metric, nil
}
