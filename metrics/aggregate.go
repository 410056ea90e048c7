package metrics

import (
	"math"

	"salespulse-wa/models"
)

// FunnelCounts are conversation counts by the latest classification per
// conversation. Cold conversations are not counted anywhere.
type FunnelCounts struct {
	MQL       int
	SQL       int
	Customers int
}

// CountFunnel buckets conversations by the classification of their most
// recent analysis. Conversations without analyses contribute nothing.
func CountFunnel(conversations []models.Conversation) FunnelCounts {
	var counts FunnelCounts
	for i := range conversations {
		latest := conversations[i].Latest()
		if latest == nil {
			continue
		}
		switch latest.Classification {
		case models.ClassMQL:
			counts.MQL++
		case models.ClassSQL:
			counts.SQL++
		case models.ClassCustomer:
			counts.Customers++
		}
	}
	return counts
}

// AverageScore is the mean of the latest analysis scores across conversations,
// rounded to one decimal. Nil when no conversation carries a score.
func AverageScore(conversations []models.Conversation) *float64 {
	var scores []float64
	for i := range conversations {
		latest := conversations[i].Latest()
		if latest == nil || latest.Score == nil {
			continue
		}
		scores = append(scores, *latest.Score)
	}
	if len(scores) == 0 {
		return nil
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	mean := math.Round(sum/float64(len(scores))*10) / 10
	return &mean
}

// CountUnansweredLeads counts conversations where the lead spoke and the
// salesperson never replied at all.
func CountUnansweredLeads(conversations []models.Conversation) int {
	count := 0
	for i := range conversations {
		hasLead := false
		hasSalesperson := false
		for _, msg := range conversations[i].Messages {
			switch msg.Sender {
			case models.SenderLead:
				hasLead = true
			case models.SenderSalesperson:
				hasSalesperson = true
			}
		}
		if hasLead && !hasSalesperson {
			count++
		}
	}
	return count
}
