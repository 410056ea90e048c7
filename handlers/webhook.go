package handlers

import (
	"net/http"

	"salespulse-wa/whatsapp"

	"github.com/gin-gonic/gin"
)

// Webhook receives gateway events. Routing ambiguity always answers 200 with
// an ignored status: delivery must succeed at the transport level so the
// gateway never retries storms at us.
func (h *Handler) Webhook(c *gin.Context) {
	// Shared-secret gate, only when configured.
	if secret := h.store.Setting("webhook_secret", nil, ""); secret != "" {
		if c.GetHeader("apikey") != secret {
			h.log.Warn("webhook rejected: invalid apikey")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Webhook not authorized"})
			return
		}
	}

	var payload whatsapp.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	msg := whatsapp.Parse(&payload)
	if msg == nil {
		c.JSON(http.StatusOK, gin.H{"status": whatsapp.StatusIgnored, "reason": "event not processable"})
		return
	}

	resolution, err := h.resolver.Resolve(msg)
	if err != nil {
		h.log.WithError(err).Error("failed to process webhook message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}

	c.JSON(http.StatusOK, resolution)
}
