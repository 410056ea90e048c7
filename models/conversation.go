package models

import "time"

// Message sender roles.
const (
	SenderSalesperson = "salesperson"
	SenderLead        = "lead"
)

// Message content kinds.
const (
	KindText     = "text"
	KindAudio    = "audio"
	KindImage    = "image"
	KindVideo    = "video"
	KindDocument = "document"
	KindUnknown  = "unknown"
)

// Funnel classifications assigned by analysis.
const (
	ClassCold     = "cold"
	ClassMQL      = "mql"
	ClassSQL      = "sql"
	ClassCustomer = "customer"
)

// Lead sentiments.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Conversation is the unit of analysis: one salesperson talking to one lead.
// Keyed logically by (SalespersonID, LeadPhone); reused across days.
type Conversation struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SalespersonID uint      `gorm:"index;not null" json:"salesperson_id"`
	CompanyID     *uint     `gorm:"index" json:"company_id"`
	LeadPhone     string    `gorm:"size:20;not null;index" json:"lead_phone"`
	LeadName      string    `gorm:"size:100" json:"lead_name"`
	Status        string    `gorm:"size:20;default:'new'" json:"status"`
	StartedAt     time.Time `json:"started_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Messages []Message  `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
	Analyses []Analysis `gorm:"foreignKey:ConversationID" json:"analyses,omitempty"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message is immutable once created; ordering within a conversation is by SentAt.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	Sender         string    `gorm:"size:12;not null" json:"sender"` // salesperson | lead
	Content        string    `gorm:"type:text;not null" json:"content"`
	Kind           string    `gorm:"size:20;default:'text'" json:"kind"`
	SentAt         time.Time `gorm:"index" json:"sent_at"`
}

func (Message) TableName() string {
	return "messages"
}

// Analysis is append-only; the current analysis of a conversation is the one
// with the greatest AnalyzedAt.
type Analysis struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	Score          *float64  `json:"score"`                            // 0.0-10.0, one decimal
	Classification string    `gorm:"size:20" json:"classification"`    // cold | mql | sql | customer
	Errors         string    `gorm:"type:text" json:"errors"`          // JSON list of {error, detail}
	LeadSentiment  string    `gorm:"size:20" json:"lead_sentiment"`    // positive | neutral | negative
	Feedback       string    `gorm:"type:text" json:"feedback"`
	AnalyzedAt     time.Time `gorm:"index" json:"analyzed_at"`
}

func (Analysis) TableName() string {
	return "analyses"
}

// Latest returns the most recent analysis of the conversation, or nil.
func (c *Conversation) Latest() *Analysis {
	var latest *Analysis
	for i := range c.Analyses {
		if latest == nil || c.Analyses[i].AnalyzedAt.After(latest.AnalyzedAt) {
			latest = &c.Analyses[i]
		}
	}
	return latest
}
