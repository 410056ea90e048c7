package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salespulse-wa/database"
	"salespulse-wa/logger"
	"salespulse-wa/store"
	"salespulse-wa/whatsapp"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newWebhookTest(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	st := store.New(db)
	log := logger.New("error")
	h := New(st, whatsapp.NewResolver(st, log), nil, nil, nil, log)

	router := gin.New()
	router.POST("/webhook/messages", h.Webhook)
	return router, st
}

func webhookBody(instance string) string {
	return fmt.Sprintf(`{
		"event": "messages.upsert",
		"instance": %q,
		"sender": "5511999990000@s.whatsapp.net",
		"data": {
			"key": {"remoteJid": "5511888880000@s.whatsapp.net", "fromMe": false, "id": "M1"},
			"pushName": "Maria",
			"message": {"conversation": "oi"},
			"messageTimestamp": 1749558000
		}
	}`, instance)
}

func post(router *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhookSecretGate(t *testing.T) {
	router, st := newWebhookTest(t)
	_, err := st.SaveSetting("webhook_secret", "hush", nil)
	require.NoError(t, err)

	rec := post(router, webhookBody("ghost"), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(router, webhookBody("ghost"), map[string]string{"apikey": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(router, webhookBody("ghost"), map[string]string{"apikey": "hush"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookNoSecretConfiguredOpen(t *testing.T) {
	router, _ := newWebhookTest(t)
	t.Setenv("WEBHOOK_SECRET", "")

	rec := post(router, webhookBody("ghost"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), whatsapp.StatusIgnored)
}

func TestWebhookMalformedBody(t *testing.T) {
	router, _ := newWebhookTest(t)

	rec := post(router, "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookUnprocessableEventStill200(t *testing.T) {
	router, _ := newWebhookTest(t)

	body := `{"event": "connection.update", "instance": "sales-01", "data": {}}`
	rec := post(router, body, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event not processable")
}

func TestWebhookSavesRoutableMessage(t *testing.T) {
	router, st := newWebhookTest(t)

	company, err := st.CreateCompany("Acme")
	require.NoError(t, err)
	_, err = st.CreateInstance(company.ID, "sales-01", "5511999990000")
	require.NoError(t, err)
	_, err = st.CreateSalesperson("Ana", "5511999990000", &company.ID)
	require.NoError(t, err)

	rec := post(router, webhookBody("sales-01"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), whatsapp.StatusSaved)
}
