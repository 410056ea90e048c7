package metrics

import (
	"testing"
	"time"

	"salespulse-wa/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var timingBase = time.Date(2025, 6, 10, 10, 0, 0, 0, time.Local)

func msg(sender string, offset time.Duration) models.Message {
	return models.Message{Sender: sender, SentAt: timingBase.Add(offset)}
}

func TestComputeResponseTimesEmpty(t *testing.T) {
	times := ComputeResponseTimes(nil)
	assert.Nil(t, times.FirstResponseSeconds)
	assert.Nil(t, times.AvgResponseSeconds)
}

func TestComputeResponseTimesOnlyLead(t *testing.T) {
	times := ComputeResponseTimes([]models.Message{
		msg(models.SenderLead, 0),
		msg(models.SenderLead, time.Minute),
	})
	assert.Nil(t, times.FirstResponseSeconds)
	assert.Nil(t, times.AvgResponseSeconds)
}

func TestComputeResponseTimesOnlySalesperson(t *testing.T) {
	times := ComputeResponseTimes([]models.Message{
		msg(models.SenderSalesperson, 0),
		msg(models.SenderSalesperson, time.Minute),
	})
	assert.Nil(t, times.FirstResponseSeconds)
	assert.Nil(t, times.AvgResponseSeconds)
}

func TestComputeResponseTimesSingleTurn(t *testing.T) {
	// Lead at 10:00:00, reply at 10:02:00.
	times := ComputeResponseTimes([]models.Message{
		msg(models.SenderLead, 0),
		msg(models.SenderSalesperson, 2*time.Minute),
	})
	require.NotNil(t, times.FirstResponseSeconds)
	require.NotNil(t, times.AvgResponseSeconds)
	assert.Equal(t, 120, *times.FirstResponseSeconds)
	assert.Equal(t, 120, *times.AvgResponseSeconds)
}

func TestComputeResponseTimesTwoTurns(t *testing.T) {
	// Turn 1: lead@0, reply@60s (delta 60).
	// Turn 2: lead@5min, reply@8min (delta 180).
	times := ComputeResponseTimes([]models.Message{
		msg(models.SenderLead, 0),
		msg(models.SenderSalesperson, time.Minute),
		msg(models.SenderLead, 5*time.Minute),
		msg(models.SenderSalesperson, 8*time.Minute),
	})
	require.NotNil(t, times.FirstResponseSeconds)
	require.NotNil(t, times.AvgResponseSeconds)
	assert.Equal(t, 60, *times.FirstResponseSeconds)
	assert.Equal(t, 120, *times.AvgResponseSeconds)
}

func TestComputeResponseTimesCoalescesLeadBursts(t *testing.T) {
	// Three lead messages before the reply count as one open turn measured
	// from the first of them.
	times := ComputeResponseTimes([]models.Message{
		msg(models.SenderLead, 0),
		msg(models.SenderLead, 30*time.Second),
		msg(models.SenderLead, time.Minute),
		msg(models.SenderSalesperson, 3*time.Minute),
	})
	require.NotNil(t, times.FirstResponseSeconds)
	assert.Equal(t, 180, *times.FirstResponseSeconds)
	assert.Equal(t, 180, *times.AvgResponseSeconds)
}

func TestComputeResponseTimesIgnoresProactiveFollowUps(t *testing.T) {
	// A salesperson message with no pending lead turn records nothing.
	times := ComputeResponseTimes([]models.Message{
		msg(models.SenderSalesperson, 0),
		msg(models.SenderLead, time.Minute),
		msg(models.SenderSalesperson, 2*time.Minute),
		msg(models.SenderSalesperson, 10*time.Minute),
	})
	require.NotNil(t, times.FirstResponseSeconds)
	assert.Equal(t, 60, *times.FirstResponseSeconds)
	assert.Equal(t, 60, *times.AvgResponseSeconds)
}

func TestComputeResponseTimesFirstDeltaIsFirstPair(t *testing.T) {
	// The first recorded delta must correspond to the first lead→salesperson
	// pair in temporal order even when later turns are faster.
	times := ComputeResponseTimes([]models.Message{
		msg(models.SenderLead, 0),
		msg(models.SenderSalesperson, 10*time.Minute),
		msg(models.SenderLead, 11*time.Minute),
		msg(models.SenderSalesperson, 11*time.Minute+5*time.Second),
	})
	require.NotNil(t, times.FirstResponseSeconds)
	assert.Equal(t, 600, *times.FirstResponseSeconds)
	// Mean of 600 and 5 rounds to 303 (302.5 rounds half away from zero).
	assert.Equal(t, 303, *times.AvgResponseSeconds)
}

func TestComputeResponseTimesTruncatesSubSecond(t *testing.T) {
	times := ComputeResponseTimes([]models.Message{
		msg(models.SenderLead, 0),
		msg(models.SenderSalesperson, 90*time.Second+700*time.Millisecond),
	})
	require.NotNil(t, times.FirstResponseSeconds)
	assert.Equal(t, 90, *times.FirstResponseSeconds)
}
