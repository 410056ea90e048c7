package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"salespulse-wa/store"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// MaxMessageLength is the per-send character budget; longer reports are split
// on paragraph boundaries into sequential sends.
const MaxMessageLength = 4000

const sendTimeout = 10 * time.Second

// StatusError is a non-2xx reply from the gateway. This is the only error
// class the sender retries: malformed requests and local failures are final.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.Code, e.Body)
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// Sender posts text messages through the WhatsApp gateway's sendText endpoint
// using the tenant's bound instance.
type Sender struct {
	store  *store.Store
	client *http.Client
	log    *logrus.Entry

	newBackOff func() backoff.BackOff
}

func NewSender(st *store.Store, log *logrus.Logger) *Sender {
	return &Sender{
		store:  st,
		client: &http.Client{Timeout: sendTimeout},
		log:    log.WithField("module", "sender"),
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
		},
	}
}

// SendText delivers one text message to a phone number via the company's
// active instance. HTTP status errors are retried with backoff; anything else
// fails immediately.
func (s *Sender) SendText(ctx context.Context, companyID *uint, phone, text string) error {
	instanceName, err := s.instanceName(companyID)
	if err != nil {
		return err
	}

	apiURL := s.store.Setting("gateway_api_url", companyID, "http://localhost:8080")
	apiKey := s.store.Setting("gateway_api_key", companyID, "")

	body, err := json.Marshal(sendTextRequest{Number: phone, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal send payload: %w", err)
	}
	url := fmt.Sprintf("%s/message/sendText/%s", strings.TrimRight(apiURL, "/"), instanceName)

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to build send request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			req.Header.Set("apikey", apiKey)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("send request failed: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			statusErr := &StatusError{Code: resp.StatusCode, Body: string(raw)}
			s.log.WithError(statusErr).Warn("send attempt failed")
			return statusErr
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(s.newBackOff(), ctx)); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"to": phone, "instance": instanceName}).Info("message sent")
	return nil
}

// SendReport splits long text at paragraph boundaries and sends the parts in
// order.
func (s *Sender) SendReport(ctx context.Context, companyID *uint, phone, text string) (int, error) {
	parts := SplitMessage(text, MaxMessageLength)
	for _, part := range parts {
		if err := s.SendText(ctx, companyID, phone, part); err != nil {
			return 0, err
		}
	}
	return len(parts), nil
}

// instanceName picks the company's first active instance, falling back to the
// configured default instance name.
func (s *Sender) instanceName(companyID *uint) (string, error) {
	if companyID != nil {
		instances, err := s.store.ListCompanyInstances(*companyID)
		if err != nil {
			return "", fmt.Errorf("failed to list instances: %w", err)
		}
		for _, instance := range instances {
			if instance.Active {
				return instance.InstanceName, nil
			}
		}
	}

	name := s.store.Setting("gateway_instance_name", companyID, "")
	if name == "" {
		return "", fmt.Errorf("no active instance for company and no default configured")
	}
	return name, nil
}

// SplitMessage breaks text into blocks of at most limit characters, always at
// paragraph ("\n\n") boundaries, never mid-paragraph.
func SplitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var parts []string
	current := ""
	for _, block := range strings.Split(text, "\n\n") {
		candidate := block
		if current != "" {
			candidate = current + "\n\n" + block
		}
		if len(candidate) <= limit {
			current = candidate
			continue
		}
		if current != "" {
			parts = append(parts, current)
		}
		current = block
	}
	if current != "" {
		parts = append(parts, current)
	}
	return parts
}
