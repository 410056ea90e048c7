package whatsapp

import (
	"errors"
	"fmt"

	"salespulse-wa/models"
	"salespulse-wa/store"

	"github.com/sirupsen/logrus"
)

// Resolution statuses.
const (
	StatusSaved   = "saved"
	StatusIgnored = "ignored"
)

// Resolution is the outcome of routing one inbound message.
type Resolution struct {
	Status         string `json:"status"`
	Reason         string `json:"reason,omitempty"`
	CompanyID      uint   `json:"company_id,omitempty"`
	ConversationID uint   `json:"conversation_id,omitempty"`
	MessageID      uint   `json:"message_id,omitempty"`
}

// Resolver routes inbound messages to their tenant, salesperson and
// conversation, persisting the message on success.
type Resolver struct {
	store *store.Store
	log   *logrus.Entry
}

func NewResolver(st *store.Store, log *logrus.Logger) *Resolver {
	return &Resolver{store: st, log: log.WithField("module", "resolver")}
}

// Resolve runs the matching cascade and persists the message. Routing
// ambiguity (unknown instance, no salesperson) is not an error: the message is
// dropped with a logged reason and an ignored resolution, so webhook delivery
// always succeeds at the transport level.
func (r *Resolver) Resolve(msg *InboundMessage) (*Resolution, error) {
	instance, err := r.store.InstanceByName(msg.InstanceName)
	if errors.Is(err, store.ErrNotFound) {
		r.log.WithField("instance", msg.InstanceName).Warn("instance not registered, message dropped")
		return &Resolution{Status: StatusIgnored, Reason: "instance not registered"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("instance lookup failed: %w", err)
	}

	companyID := instance.CompanyID

	// Role assignment: a fromMe message was sent by the business, so the
	// counterpart is the lead it was sent to.
	sender := models.SenderLead
	leadName := msg.ContactName
	if msg.FromMe {
		sender = models.SenderSalesperson
		leadName = ""
	}
	leadPhone := msg.CounterpartPhone

	salesperson, err := r.findSalesperson(companyID, instance.Phone, leadPhone, msg.FromMe)
	if err != nil {
		return nil, err
	}
	if salesperson == nil {
		r.log.WithField("company_id", companyID).Warn("no resolvable salesperson, message dropped")
		return &Resolution{Status: StatusIgnored, Reason: "no salesperson in company"}, nil
	}

	conversation, err := r.store.FindOrCreateConversation(salesperson.ID, leadPhone, leadName, &companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create conversation: %w", err)
	}

	saved, err := r.store.AppendMessage(conversation.ID, sender, msg.Content, msg.Kind, msg.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"company_id":      companyID,
		"conversation_id": conversation.ID,
		"sender":          sender,
		"kind":            msg.Kind,
	}).Info("message saved")

	return &Resolution{
		Status:         StatusSaved,
		CompanyID:      companyID,
		ConversationID: conversation.ID,
		MessageID:      saved.ID,
	}, nil
}

// findSalesperson applies the prioritized matching cascade, stopping at the
// first hit. Returns nil (no error) when nothing matches.
func (r *Resolver) findSalesperson(companyID uint, instancePhone, leadPhone string, fromMe bool) (*models.Salesperson, error) {
	// 1. The instance's bound phone maps to one salesperson.
	if instancePhone != "" {
		sp, err := r.store.SalespersonByInstancePhone(companyID, instancePhone)
		if err == nil {
			return sp, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("salesperson lookup by instance phone failed: %w", err)
		}
	}

	// 2. The lead already talks to someone in this company.
	if !fromMe {
		conv, err := r.store.ConversationByLeadPhone(companyID, leadPhone)
		if err == nil {
			sp, err := r.store.SalespersonByID(conv.SalespersonID)
			if err == nil {
				return sp, nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("salesperson lookup failed: %w", err)
			}
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("conversation lookup failed: %w", err)
		}
	}

	// 3. Fallback: first active salesperson of the company.
	sp, err := r.store.FirstActiveSalesperson(companyID)
	if err == nil {
		return sp, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("fallback salesperson lookup failed: %w", err)
}
