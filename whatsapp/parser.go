package whatsapp

import (
	"strings"
	"time"

	"salespulse-wa/models"
)

// Content placeholders for media messages without captions.
const (
	placeholderImage    = "[image]"
	placeholderAudio    = "[audio]"
	placeholderVideo    = "[video]"
	placeholderDocument = "[document]"
)

const (
	eventMessageUpsert = "messages.upsert"
	groupJIDSuffix     = "@g.us"
	userJIDSuffix      = "@s.whatsapp.net"
)

// WebhookPayload mirrors the gateway's "messages.upsert" event schema.
type WebhookPayload struct {
	Event    string `json:"event"`
	Instance string `json:"instance"`
	Sender   string `json:"sender"` // JID of the line that owns the instance
	Data     struct {
		Key struct {
			RemoteJID string `json:"remoteJid"`
			FromMe    bool   `json:"fromMe"`
			ID        string `json:"id"`
		} `json:"key"`
		PushName         string         `json:"pushName"`
		Message          MessageContent `json:"message"`
		MessageTimestamp int64          `json:"messageTimestamp"`
	} `json:"data"`
}

// MessageContent carries the per-kind payload variants.
type MessageContent struct {
	Conversation        string `json:"conversation"`
	ExtendedTextMessage struct {
		Text string `json:"text"`
	} `json:"extendedTextMessage"`
	ImageMessage *struct {
		Caption string `json:"caption"`
	} `json:"imageMessage"`
	AudioMessage *struct{} `json:"audioMessage"`
	VideoMessage *struct {
		Caption string `json:"caption"`
	} `json:"videoMessage"`
	DocumentMessage *struct {
		FileName string `json:"fileName"`
	} `json:"documentMessage"`
}

// InboundMessage is the structured result of parsing one webhook payload.
type InboundMessage struct {
	CounterpartPhone string // phone on the other end of the line
	ContactName      string // push name of the counterpart
	Content          string
	Kind             string
	FromMe           bool // true when the business (salesperson) sent it
	Timestamp        time.Time
	MessageID        string
	InstanceName     string
	InstancePhone    string // phone of the instance owner, may be empty
}

// Parse turns a webhook payload into an InboundMessage. It returns nil when
// the payload is not processable: any event other than a new message, group
// chats, and messages with no extractable content.
func Parse(payload *WebhookPayload) *InboundMessage {
	if payload.Event != eventMessageUpsert {
		return nil
	}

	remoteJID := payload.Data.Key.RemoteJID
	if remoteJID == "" || strings.Contains(remoteJID, groupJIDSuffix) {
		return nil
	}

	content, kind := extractContent(&payload.Data.Message)
	if content == "" {
		return nil
	}

	timestamp := time.Now()
	if payload.Data.MessageTimestamp > 0 {
		timestamp = time.Unix(payload.Data.MessageTimestamp, 0)
	}

	return &InboundMessage{
		CounterpartPhone: strings.TrimSuffix(remoteJID, userJIDSuffix),
		ContactName:      payload.Data.PushName,
		Content:          content,
		Kind:             kind,
		FromMe:           payload.Data.Key.FromMe,
		Timestamp:        timestamp,
		MessageID:        payload.Data.Key.ID,
		InstanceName:     payload.Instance,
		InstancePhone:    strings.TrimSuffix(payload.Sender, userJIDSuffix),
	}
}

// extractContent pulls text and kind out of the per-type message variants.
// Media without captions get fixed placeholders so the transcript still shows
// that something was sent.
func extractContent(msg *MessageContent) (string, string) {
	if msg.Conversation != "" {
		return msg.Conversation, models.KindText
	}
	if msg.ExtendedTextMessage.Text != "" {
		return msg.ExtendedTextMessage.Text, models.KindText
	}
	if msg.ImageMessage != nil {
		if msg.ImageMessage.Caption != "" {
			return msg.ImageMessage.Caption, models.KindImage
		}
		return placeholderImage, models.KindImage
	}
	if msg.AudioMessage != nil {
		return placeholderAudio, models.KindAudio
	}
	if msg.VideoMessage != nil {
		if msg.VideoMessage.Caption != "" {
			return msg.VideoMessage.Caption, models.KindVideo
		}
		return placeholderVideo, models.KindVideo
	}
	if msg.DocumentMessage != nil {
		if msg.DocumentMessage.FileName != "" {
			return msg.DocumentMessage.FileName, models.KindDocument
		}
		return placeholderDocument, models.KindDocument
	}
	return "", models.KindUnknown
}
