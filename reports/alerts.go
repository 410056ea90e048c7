package reports

import (
	"fmt"

	"salespulse-wa/models"
)

// Alert thresholds.
const (
	lowScoreThreshold     = 5.0
	slowResponseThreshold = 600 // seconds
)

// DetectAlerts scans metric rows for threshold breaches and returns
// human-readable alert lines. Per salesperson the order is unanswered leads,
// then score, then response time: unanswered leads surface first as the most
// urgent.
func DetectAlerts(metrics []models.DailyMetric, names map[uint]string) []string {
	var alerts []string
	for _, m := range metrics {
		name := names[m.SalespersonID]
		if name == "" {
			name = fmt.Sprintf("Salesperson %d", m.SalespersonID)
		}

		if m.UnansweredLeads > 0 {
			alerts = append(alerts, fmt.Sprintf("⚠ Unanswered leads: %s (%d leads)", name, m.UnansweredLeads))
		}
		if m.AvgScore != nil && *m.AvgScore < lowScoreThreshold {
			alerts = append(alerts, fmt.Sprintf("⚠ Low score: %s (%.1f)", name, *m.AvgScore))
		}
		if m.FirstResponseSeconds != nil && *m.FirstResponseSeconds > slowResponseThreshold {
			alerts = append(alerts, fmt.Sprintf("⚠ Slow response: %s (%s)", name, FormatDuration(m.FirstResponseSeconds)))
		}
	}
	return alerts
}
