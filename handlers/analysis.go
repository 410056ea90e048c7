package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"salespulse-wa/analysis"
	"salespulse-wa/models"
	"salespulse-wa/store"

	"github.com/gin-gonic/gin"
)

// Analyze runs LLM scoring over a conversation's full history and persists
// the result as a new Analysis row.
func (h *Handler) Analyze(c *gin.Context) {
	conversationID, ok := uintParam(c, "conversation_id")
	if !ok {
		return
	}

	conversation, err := h.store.ConversationWithMessages(conversationID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := h.analyzer.AnalyzeConversation(c.Request.Context(), conversation.Messages, conversation.CompanyID)
	if errors.Is(err, analysis.ErrEmptyConversation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Conversation has no messages"})
		return
	}
	if err != nil {
		h.log.WithError(err).Error("analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	encodedErrors, err := json.Marshal(result.Errors)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	record := models.Analysis{
		ConversationID: conversationID,
		Score:          &result.Score,
		Classification: result.Classification,
		Errors:         string(encodedErrors),
		LeadSentiment:  result.LeadSentiment,
		Feedback:       result.Feedback,
	}
	if err := h.store.CreateAnalysis(&record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis_id":    record.ID,
		"score":          result.Score,
		"classification": result.Classification,
		"errors":         result.Errors,
		"lead_sentiment": result.LeadSentiment,
		"feedback":       result.Feedback,
	})
}

// ListAnalyses returns the analysis history of a conversation, newest first.
func (h *Handler) ListAnalyses(c *gin.Context) {
	conversationID, ok := uintParam(c, "conversation_id")
	if !ok {
		return
	}

	analyses, err := h.store.AnalysesByConversation(conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(analyses) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No analyses found for this conversation"})
		return
	}

	out := make([]gin.H, 0, len(analyses))
	for _, a := range analyses {
		var defects []analysis.DefectEntry
		if a.Errors != "" {
			_ = json.Unmarshal([]byte(a.Errors), &defects)
		}
		out = append(out, gin.H{
			"analysis_id":    a.ID,
			"score":          a.Score,
			"classification": a.Classification,
			"errors":         defects,
			"lead_sentiment": a.LeadSentiment,
			"feedback":       a.Feedback,
			"analyzed_at":    a.AnalyzedAt,
		})
	}

	c.JSON(http.StatusOK, out)
}
