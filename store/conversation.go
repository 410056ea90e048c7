package store

import (
	"errors"
	"time"

	"salespulse-wa/models"

	"gorm.io/gorm"
)

// FindOrCreateConversation returns the conversation between a salesperson and
// a lead phone, creating it on first contact. The lead name is backfilled when
// a later message finally carries one.
func (s *Store) FindOrCreateConversation(salespersonID uint, leadPhone, leadName string, companyID *uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.
		Where("salesperson_id = ? AND lead_phone = ?", salespersonID, leadPhone).
		First(&conv).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		conv = models.Conversation{
			SalespersonID: salespersonID,
			CompanyID:     companyID,
			LeadPhone:     leadPhone,
			LeadName:      leadName,
			Status:        "new",
			StartedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		if err := s.db.Create(&conv).Error; err != nil {
			return nil, err
		}
		return &conv, nil
	}
	if err != nil {
		return nil, err
	}

	if leadName != "" && conv.LeadName == "" {
		conv.LeadName = leadName
		if err := s.db.Model(&conv).Update("lead_name", leadName).Error; err != nil {
			return nil, err
		}
	}

	return &conv, nil
}

// ConversationWithMessages loads a conversation with its messages in
// chronological order.
func (s *Store) ConversationWithMessages(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sent_at")
		}).
		First(&conv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ConversationsForDay returns conversations that had at least one message
// within the calendar day (00:00:00 through 23:59:59 inclusive), with messages
// and analyses preloaded. date is YYYY-MM-DD in local time.
func (s *Store) ConversationsForDay(date string, salespersonID, companyID *uint) ([]models.Conversation, error) {
	return s.ConversationsForPeriod(date, date, salespersonID, companyID)
}

// ConversationsForPeriod is the range variant of ConversationsForDay.
func (s *Store) ConversationsForPeriod(startDate, endDate string, salespersonID, companyID *uint) ([]models.Conversation, error) {
	start, err := time.ParseInLocation("2006-01-02", startDate, time.Local)
	if err != nil {
		return nil, err
	}
	end, err := time.ParseInLocation("2006-01-02", endDate, time.Local)
	if err != nil {
		return nil, err
	}
	end = end.Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	sub := s.db.Model(&models.Message{}).
		Select("DISTINCT conversation_id").
		Where("sent_at >= ? AND sent_at <= ?", start, end)

	query := s.db.
		Where("id IN (?)", sub).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sent_at")
		}).
		Preload("Analyses")
	if salespersonID != nil {
		query = query.Where("salesperson_id = ?", *salespersonID)
	}
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}

	var conversations []models.Conversation
	if err := query.Order("id").Find(&conversations).Error; err != nil {
		return nil, err
	}
	return conversations, nil
}

// AppendMessage persists a message and bumps the conversation's UpdatedAt.
func (s *Store) AppendMessage(conversationID uint, sender, content, kind string, sentAt time.Time) (*models.Message, error) {
	msg := models.Message{
		ConversationID: conversationID,
		Sender:         sender,
		Content:        content,
		Kind:           kind,
		SentAt:         sentAt,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ConversationByLeadPhone finds any conversation of the company with the given
// lead phone whose salesperson is still active. Used by the routing cascade.
func (s *Store) ConversationByLeadPhone(companyID uint, leadPhone string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.
		Joins("JOIN salespeople ON salespeople.id = conversations.salesperson_id").
		Where("conversations.company_id = ? AND conversations.lead_phone = ? AND salespeople.active = ?",
			companyID, leadPhone, true).
		Order("conversations.id").
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// === Analyses ===

func (s *Store) CreateAnalysis(a *models.Analysis) error {
	if a.AnalyzedAt.IsZero() {
		a.AnalyzedAt = time.Now()
	}
	return s.db.Create(a).Error
}

// AnalysesByConversation returns the analysis history, newest first.
func (s *Store) AnalysesByConversation(conversationID uint) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := s.db.
		Where("conversation_id = ?", conversationID).
		Order("analyzed_at DESC").
		Find(&analyses).Error
	if err != nil {
		return nil, err
	}
	return analyses, nil
}
