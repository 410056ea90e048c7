package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"salespulse-wa/models"
	"salespulse-wa/store"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	defaultModel    = "gpt-4o-mini"
	requestTimeout  = 30 * time.Second
	maxAttempts     = 3
	fallbackRemarks = "Analysis not available."
)

var (
	// ErrEmptyConversation means there is nothing to analyze.
	ErrEmptyConversation = errors.New("conversation has no messages")
	// ErrAnalysisFailed wraps transient LLM invocation failures: API errors
	// and fully malformed (non-JSON) responses. Retried with backoff.
	ErrAnalysisFailed = errors.New("analysis invocation failed")
)

var validClassifications = map[string]string{
	models.ClassCold:     models.ClassCold,
	models.ClassMQL:      models.ClassMQL,
	models.ClassSQL:      models.ClassSQL,
	models.ClassCustomer: models.ClassCustomer,
	// legacy labels from older prompt revisions
	"frio":    models.ClassCold,
	"cliente": models.ClassCustomer,
}

var validSentiments = map[string]string{
	models.SentimentPositive: models.SentimentPositive,
	models.SentimentNeutral:  models.SentimentNeutral,
	models.SentimentNegative: models.SentimentNegative,
	"positivo":               models.SentimentPositive,
	"neutro":                 models.SentimentNeutral,
	"negativo":               models.SentimentNegative,
}

// DefectEntry is one structured mistake flagged by the analysis.
type DefectEntry struct {
	Error  string `json:"erro"`
	Detail string `json:"detalhe"`
}

// Result is the normalized analysis outcome.
type Result struct {
	Score          float64
	Classification string
	Errors         []DefectEntry
	LeadSentiment  string
	Feedback       string
}

// Analyzer runs LLM scoring over conversation transcripts.
type Analyzer struct {
	store *store.Store
	log   *logrus.Entry
}

func NewAnalyzer(st *store.Store, log *logrus.Logger) *Analyzer {
	return &Analyzer{store: st, log: log.WithField("module", "analysis")}
}

// AnalyzeConversation scores a message history. The system prompt and API key
// resolve through the settings cascade for the company. Transient failures are
// retried with exponential backoff before surfacing.
func (a *Analyzer) AnalyzeConversation(ctx context.Context, messages []models.Message, companyID *uint) (*Result, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyConversation
	}

	systemPrompt := DefaultSystemPrompt
	if prompt, err := a.store.ActivePrompt(companyID, PromptName); err == nil {
		systemPrompt = prompt.Content
	}

	apiKey := a.store.Setting("openai_api_key", companyID, "")
	if apiKey == "" {
		return nil, fmt.Errorf("openai_api_key not configured")
	}
	model := a.store.Setting("openai_model", companyID, defaultModel)

	client := openai.NewClient(apiKey)
	userPrompt := UserPrompt(messages)

	var result *Result
	operation := func() error {
		r, err := a.invoke(ctx, client, model, systemPrompt, userPrompt)
		if err != nil {
			a.log.WithError(err).Warn("analysis attempt failed")
			return err
		}
		result = r
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxAttempts-1), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return result, nil
}

// invoke performs a single LLM call and parses the response. Both API errors
// and non-JSON bodies come back wrapped in ErrAnalysisFailed.
func (a *Analyzer) invoke(ctx context.Context, client *openai.Client, model, systemPrompt, userPrompt string) (*Result, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := client.CreateChatCompletion(timeoutCtx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrAnalysisFailed)
	}

	result, err := parsePayload(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	a.log.WithField("model", model).Info("analysis received")
	return result, nil
}

// parsePayload decodes and normalizes the LLM JSON. Individual missing or
// malformed fields fall back to defaults; only a fully non-JSON body fails.
func parsePayload(raw string) (*Result, error) {
	var data map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("%w: response is not valid JSON: %v", ErrAnalysisFailed, err)
	}

	result := &Result{
		Score:          5.0,
		Classification: models.ClassCold,
		Errors:         []DefectEntry{},
		LeadSentiment:  models.SentimentNeutral,
		Feedback:       fallbackRemarks,
	}

	if rawScore, ok := data["score_qualidade"]; ok {
		var score float64
		if err := json.Unmarshal(rawScore, &score); err == nil {
			score = math.Max(0.0, math.Min(10.0, score))
			result.Score = math.Round(score*10) / 10
		}
	}

	if rawClass, ok := data["classificacao"]; ok {
		var label string
		if err := json.Unmarshal(rawClass, &label); err == nil {
			if normalized, valid := validClassifications[label]; valid {
				result.Classification = normalized
			}
		}
	}

	if rawErrors, ok := data["erros"]; ok {
		var entries []map[string]any
		if err := json.Unmarshal(rawErrors, &entries); err == nil {
			for _, entry := range entries {
				name, hasName := entry["erro"]
				if !hasName {
					continue
				}
				detail := ""
				if d, hasDetail := entry["detalhe"]; hasDetail {
					detail = fmt.Sprintf("%v", d)
				}
				result.Errors = append(result.Errors, DefectEntry{
					Error:  fmt.Sprintf("%v", name),
					Detail: detail,
				})
			}
		}
	}

	if rawSentiment, ok := data["sentimento_lead"]; ok {
		var label string
		if err := json.Unmarshal(rawSentiment, &label); err == nil {
			if normalized, valid := validSentiments[label]; valid {
				result.LeadSentiment = normalized
			}
		}
	}

	if rawFeedback, ok := data["feedback_ia"]; ok {
		var feedback string
		if err := json.Unmarshal(rawFeedback, &feedback); err == nil && feedback != "" {
			result.Feedback = feedback
		}
	}

	return result, nil
}
