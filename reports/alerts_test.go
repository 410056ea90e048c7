package reports

import (
	"testing"

	"salespulse-wa/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

func metric(id uint, score *float64, firstResponse *int, unanswered int) models.DailyMetric {
	return models.DailyMetric{
		SalespersonID:        id,
		AvgScore:             score,
		FirstResponseSeconds: firstResponse,
		UnansweredLeads:      unanswered,
	}
}

func TestDetectAlertsAllThreeInOrder(t *testing.T) {
	metrics := []models.DailyMetric{
		metric(1, floatPtr(4.2), intPtr(750), 3),
	}
	names := map[uint]string{1: "João"}

	alerts := DetectAlerts(metrics, names)
	require.Len(t, alerts, 3)
	assert.Equal(t, "⚠ Unanswered leads: João (3 leads)", alerts[0])
	assert.Equal(t, "⚠ Low score: João (4.2)", alerts[1])
	assert.Equal(t, "⚠ Slow response: João (12min30s)", alerts[2])
}

func TestDetectAlertsHealthyMetricsSilent(t *testing.T) {
	metrics := []models.DailyMetric{
		metric(1, floatPtr(8.0), intPtr(90), 0),
	}
	assert.Empty(t, DetectAlerts(metrics, map[uint]string{1: "Ana"}))
}

func TestDetectAlertsThresholdsAreExclusive(t *testing.T) {
	// Exactly at the limits fires nothing.
	metrics := []models.DailyMetric{
		metric(1, floatPtr(5.0), intPtr(600), 0),
	}
	assert.Empty(t, DetectAlerts(metrics, map[uint]string{1: "Ana"}))
}

func TestDetectAlertsNilValuesSkipped(t *testing.T) {
	metrics := []models.DailyMetric{
		metric(1, nil, nil, 0),
	}
	assert.Empty(t, DetectAlerts(metrics, map[uint]string{1: "Ana"}))
}

func TestDetectAlertsFallbackName(t *testing.T) {
	metrics := []models.DailyMetric{
		metric(7, nil, nil, 1),
	}
	alerts := DetectAlerts(metrics, map[uint]string{})
	require.Len(t, alerts, 1)
	assert.Equal(t, "⚠ Unanswered leads: Salesperson 7 (1 leads)", alerts[0])
}

func TestDetectAlertsMultipleSalespeople(t *testing.T) {
	metrics := []models.DailyMetric{
		metric(1, floatPtr(3.0), intPtr(30), 0),
		metric(2, floatPtr(9.0), intPtr(900), 0),
	}
	names := map[uint]string{1: "Ana", 2: "Bruno"}

	alerts := DetectAlerts(metrics, names)
	require.Len(t, alerts, 2)
	assert.Equal(t, "⚠ Low score: Ana (3.0)", alerts[0])
	assert.Equal(t, "⚠ Slow response: Bruno (15min)", alerts[1])
}
