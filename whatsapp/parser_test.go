package whatsapp

import (
	"encoding/json"
	"testing"
	"time"

	"salespulse-wa/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloadFromJSON(t *testing.T, raw string) *WebhookPayload {
	t.Helper()
	var p WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return &p
}

func textPayload(event, remoteJID, text string) *WebhookPayload {
	p := &WebhookPayload{Event: event, Instance: "sales-01"}
	p.Sender = "5511999990000@s.whatsapp.net"
	p.Data.Key.RemoteJID = remoteJID
	p.Data.Key.ID = "MSG1"
	p.Data.PushName = "Maria"
	p.Data.Message.Conversation = text
	p.Data.MessageTimestamp = 1749558000
	return p
}

func TestParseTextMessage(t *testing.T) {
	msg := Parse(textPayload("messages.upsert", "5511888880000@s.whatsapp.net", "oi, tudo bem?"))
	require.NotNil(t, msg)

	assert.Equal(t, "5511888880000", msg.CounterpartPhone)
	assert.Equal(t, "5511999990000", msg.InstancePhone)
	assert.Equal(t, "Maria", msg.ContactName)
	assert.Equal(t, "oi, tudo bem?", msg.Content)
	assert.Equal(t, models.KindText, msg.Kind)
	assert.False(t, msg.FromMe)
	assert.Equal(t, "MSG1", msg.MessageID)
	assert.Equal(t, "sales-01", msg.InstanceName)
	assert.Equal(t, time.Unix(1749558000, 0), msg.Timestamp)
}

func TestParseIgnoresOtherEvents(t *testing.T) {
	for _, event := range []string{"connection.update", "messages.update", "presence.update", ""} {
		assert.Nil(t, Parse(textPayload(event, "5511888880000@s.whatsapp.net", "oi")), "event %q", event)
	}
}

func TestParseIgnoresGroupChats(t *testing.T) {
	assert.Nil(t, Parse(textPayload("messages.upsert", "120363041234567890@g.us", "oi grupo")))
}

func TestParseIgnoresEmptyRemoteJID(t *testing.T) {
	assert.Nil(t, Parse(textPayload("messages.upsert", "", "oi")))
}

func TestParseIgnoresEmptyContent(t *testing.T) {
	assert.Nil(t, Parse(textPayload("messages.upsert", "5511888880000@s.whatsapp.net", "")))
}

func TestParseFromMe(t *testing.T) {
	p := textPayload("messages.upsert", "5511888880000@s.whatsapp.net", "bom dia!")
	p.Data.Key.FromMe = true
	msg := Parse(p)
	require.NotNil(t, msg)
	assert.True(t, msg.FromMe)
	// Counterpart is still the lead even when the business sent the message.
	assert.Equal(t, "5511888880000", msg.CounterpartPhone)
}

func TestParseExtendedText(t *testing.T) {
	p := payloadFromJSON(t, `{
		"event": "messages.upsert",
		"instance": "sales-01",
		"data": {
			"key": {"remoteJid": "5511888880000@s.whatsapp.net", "fromMe": false, "id": "M2"},
			"message": {"extendedTextMessage": {"text": "segue o link"}},
			"messageTimestamp": 1749558000
		}
	}`)
	msg := Parse(p)
	require.NotNil(t, msg)
	assert.Equal(t, "segue o link", msg.Content)
	assert.Equal(t, models.KindText, msg.Kind)
}

func TestParseMediaVariants(t *testing.T) {
	cases := []struct {
		name    string
		message string
		content string
		kind    string
	}{
		{"image with caption", `{"imageMessage": {"caption": "foto do produto"}}`, "foto do produto", models.KindImage},
		{"image without caption", `{"imageMessage": {}}`, "[image]", models.KindImage},
		{"audio", `{"audioMessage": {}}`, "[audio]", models.KindAudio},
		{"video with caption", `{"videoMessage": {"caption": "demo"}}`, "demo", models.KindVideo},
		{"video without caption", `{"videoMessage": {}}`, "[video]", models.KindVideo},
		{"document with name", `{"documentMessage": {"fileName": "proposta.pdf"}}`, "proposta.pdf", models.KindDocument},
		{"document without name", `{"documentMessage": {}}`, "[document]", models.KindDocument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var content MessageContent
			require.NoError(t, json.Unmarshal([]byte(tc.message), &content))

			got, kind := extractContent(&content)
			assert.Equal(t, tc.content, got)
			assert.Equal(t, tc.kind, kind)
		})
	}
}

func TestParseTextWinsOverMedia(t *testing.T) {
	var content MessageContent
	require.NoError(t, json.Unmarshal([]byte(`{
		"conversation": "texto",
		"imageMessage": {"caption": "foto"}
	}`), &content))

	got, kind := extractContent(&content)
	assert.Equal(t, "texto", got)
	assert.Equal(t, models.KindText, kind)
}

func TestParseMissingTimestampFallsBackToNow(t *testing.T) {
	p := textPayload("messages.upsert", "5511888880000@s.whatsapp.net", "oi")
	p.Data.MessageTimestamp = 0

	before := time.Now()
	msg := Parse(p)
	require.NotNil(t, msg)
	assert.False(t, msg.Timestamp.Before(before))
}
