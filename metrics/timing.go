package metrics

import (
	"math"

	"salespulse-wa/models"
)

// ResponseTimes holds per-conversation response latency, in seconds. Nil means
// not applicable (the salesperson never answered an open lead turn).
type ResponseTimes struct {
	FirstResponseSeconds *int
	AvgResponseSeconds   *int
}

// ComputeResponseTimes walks a conversation's messages in chronological order
// and measures how long the salesperson took to answer each lead turn.
//
// A lead message opens a turn; further lead messages while a turn is open are
// coalesced into it. The next salesperson message closes the turn and records
// the delta. Salesperson messages with no open turn (proactive follow-ups) are
// not penalized and record nothing.
func ComputeResponseTimes(messages []models.Message) ResponseTimes {
	var first *int
	var deltas []int
	var leadAt *models.Message

	for i := range messages {
		msg := &messages[i]
		switch msg.Sender {
		case models.SenderLead:
			if leadAt == nil {
				leadAt = msg
			}
		case models.SenderSalesperson:
			if leadAt == nil {
				continue
			}
			delta := int(msg.SentAt.Sub(leadAt.SentAt).Seconds())
			if first == nil {
				first = &delta
			}
			deltas = append(deltas, delta)
			leadAt = nil
		}
	}

	var avg *int
	if len(deltas) > 0 {
		mean := roundedMeanInt(deltas)
		avg = &mean
	}

	return ResponseTimes{FirstResponseSeconds: first, AvgResponseSeconds: avg}
}

func roundedMeanInt(values []int) int {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}
