package analysis

import (
	"context"
	"testing"
	"time"

	"salespulse-wa/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayloadComplete(t *testing.T) {
	result, err := parsePayload(`{
		"score_qualidade": 8.5,
		"classificacao": "sql",
		"erros": [{"erro": "demora", "detalhe": "respondeu após 15 minutos"}],
		"sentimento_lead": "positive",
		"feedback_ia": "Bom atendimento, fechar mais rápido."
	}`)
	require.NoError(t, err)

	assert.Equal(t, 8.5, result.Score)
	assert.Equal(t, models.ClassSQL, result.Classification)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "demora", result.Errors[0].Error)
	assert.Equal(t, "respondeu após 15 minutos", result.Errors[0].Detail)
	assert.Equal(t, models.SentimentPositive, result.LeadSentiment)
	assert.Equal(t, "Bom atendimento, fechar mais rápido.", result.Feedback)
}

func TestParsePayloadClampsScore(t *testing.T) {
	result, err := parsePayload(`{"score_qualidade": 15.0}`)
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.Score)

	result, err = parsePayload(`{"score_qualidade": -3}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)

	result, err = parsePayload(`{"score_qualidade": 7.46}`)
	require.NoError(t, err)
	assert.Equal(t, 7.5, result.Score)
}

func TestParsePayloadDefaults(t *testing.T) {
	result, err := parsePayload(`{}`)
	require.NoError(t, err)

	assert.Equal(t, 5.0, result.Score)
	assert.Equal(t, models.ClassCold, result.Classification)
	assert.Empty(t, result.Errors)
	assert.Equal(t, models.SentimentNeutral, result.LeadSentiment)
	assert.Equal(t, fallbackRemarks, result.Feedback)
}

func TestParsePayloadMalformedFieldsFallBack(t *testing.T) {
	result, err := parsePayload(`{
		"score_qualidade": "abc",
		"classificacao": "unknown-label",
		"sentimento_lead": 42,
		"erros": "not a list"
	}`)
	require.NoError(t, err)

	assert.Equal(t, 5.0, result.Score)
	assert.Equal(t, models.ClassCold, result.Classification)
	assert.Equal(t, models.SentimentNeutral, result.LeadSentiment)
	assert.Empty(t, result.Errors)
}

func TestParsePayloadLegacyLabels(t *testing.T) {
	result, err := parsePayload(`{"classificacao": "cliente", "sentimento_lead": "positivo"}`)
	require.NoError(t, err)
	assert.Equal(t, models.ClassCustomer, result.Classification)
	assert.Equal(t, models.SentimentPositive, result.LeadSentiment)

	result, err = parsePayload(`{"classificacao": "frio", "sentimento_lead": "negativo"}`)
	require.NoError(t, err)
	assert.Equal(t, models.ClassCold, result.Classification)
	assert.Equal(t, models.SentimentNegative, result.LeadSentiment)
}

func TestParsePayloadSkipsDefectsWithoutName(t *testing.T) {
	result, err := parsePayload(`{"erros": [
		{"detalhe": "sem nome"},
		{"erro": "sem detalhe"}
	]}`)
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "sem detalhe", result.Errors[0].Error)
	assert.Equal(t, "", result.Errors[0].Detail)
}

func TestParsePayloadNonJSONFails(t *testing.T) {
	_, err := parsePayload("I cannot analyze this conversation.")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestFormatTranscript(t *testing.T) {
	base := time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)
	messages := []models.Message{
		{Sender: models.SenderLead, Content: "quanto custa?", SentAt: base},
		{Sender: models.SenderSalesperson, Content: "R$ 500", SentAt: base.Add(2 * time.Minute)},
	}

	transcript := FormatTranscript(messages)
	assert.Contains(t, transcript, "LEAD: quanto custa?")
	assert.Contains(t, transcript, "SALESPERSON: R$ 500")
	assert.Contains(t, transcript, "14:30")
}

func TestAnalyzeConversationEmpty(t *testing.T) {
	analyzer := &Analyzer{}
	_, err := analyzer.AnalyzeConversation(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrEmptyConversation)
}
