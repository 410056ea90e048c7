package reports

import (
	"fmt"
	"math"
	"strings"
	"time"

	"salespulse-wa/models"
)

const sectionDivider = "--------------------------------"

// FormatDuration renders seconds as "2min30s", "2min", "45s", or "--" when
// absent.
func FormatDuration(seconds *int) string {
	if seconds == nil {
		return "--"
	}
	s := *seconds
	if s >= 60 {
		if rest := s % 60; rest != 0 {
			return fmt.Sprintf("%dmin%02ds", s/60, rest)
		}
		return fmt.Sprintf("%dmin", s/60)
	}
	return fmt.Sprintf("%ds", s)
}

func formatScore(score *float64) string {
	if score == nil {
		return "--"
	}
	return fmt.Sprintf("%.1f", *score)
}

func formatHeader(date string) string {
	display := date
	if dt, err := time.Parse("2006-01-02", date); err == nil {
		display = dt.Format("02/01/2006")
	}
	return fmt.Sprintf("*DAILY REPORT - %s*\n================================", display)
}

// formatSummary aggregates totals across all salespeople. The overall score is
// the mean of per-salesperson averages.
func formatSummary(metrics []models.DailyMetric) string {
	totalConversations, totalMQL, totalSQL, totalCustomers, totalUnanswered := 0, 0, 0, 0, 0
	var scores []float64
	for _, m := range metrics {
		totalConversations += m.TotalConversations
		totalMQL += m.TotalMQL
		totalSQL += m.TotalSQL
		totalCustomers += m.TotalCustomers
		totalUnanswered += m.UnansweredLeads
		if m.AvgScore != nil {
			scores = append(scores, *m.AvgScore)
		}
	}

	scoreText := "--"
	if len(scores) > 0 {
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		scoreText = fmt.Sprintf("%.1f", math.Round(sum/float64(len(scores))*10)/10)
	}

	return fmt.Sprintf("\n*OVERALL SUMMARY*\n"+
		"Total conversations: %d\n"+
		"Average score: %s\n"+
		"MQL: %d | SQL: %d | Closed: %d\n"+
		"Unanswered leads: %d",
		totalConversations, scoreText, totalMQL, totalSQL, totalCustomers, totalUnanswered)
}

func formatSalesperson(m models.DailyMetric, name string) string {
	return fmt.Sprintf("\n*%s*\n"+
		"Conversations: %d | Score: %s\n"+
		"1st response: %s | Average: %s\n"+
		"MQL: %d | SQL: %d | Closed: %d",
		name,
		m.TotalConversations, formatScore(m.AvgScore),
		FormatDuration(m.FirstResponseSeconds), FormatDuration(m.AvgResponseSeconds),
		m.TotalMQL, m.TotalSQL, m.TotalCustomers)
}

// BuildReport assembles the full report text: header, overall summary, one
// section per salesperson, and an alerts section when any alerts fired.
func BuildReport(date string, metrics []models.DailyMetric, names map[uint]string, alerts []string) string {
	parts := []string{formatHeader(date), formatSummary(metrics)}

	for _, m := range metrics {
		name := names[m.SalespersonID]
		if name == "" {
			name = fmt.Sprintf("Salesperson %d", m.SalespersonID)
		}
		parts = append(parts, sectionDivider, formatSalesperson(m, name))
	}

	if len(alerts) > 0 {
		parts = append(parts, sectionDivider, "\n*ALERTS*\n"+strings.Join(alerts, "\n"))
	}

	return strings.Join(parts, "\n")
}
