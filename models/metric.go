package models

import "time"

// DailyMetric is the computed aggregate for one salesperson on one calendar
// date. Functionally keyed by (SalespersonID, Date): recomputation overwrites,
// never duplicates.
type DailyMetric struct {
	ID                   uint     `gorm:"primaryKey" json:"id"`
	SalespersonID        uint     `gorm:"not null;uniqueIndex:idx_salesperson_date" json:"salesperson_id"`
	Date                 string   `gorm:"size:10;not null;uniqueIndex:idx_salesperson_date" json:"date"` // YYYY-MM-DD
	TotalConversations   int      `gorm:"default:0" json:"total_conversations"`
	FirstResponseSeconds *int     `json:"first_response_seconds"`
	AvgResponseSeconds   *int     `json:"avg_response_seconds"`
	TotalMQL             int      `gorm:"default:0" json:"total_mql"`
	TotalSQL             int      `gorm:"default:0" json:"total_sql"`
	TotalCustomers       int      `gorm:"default:0" json:"total_customers"`
	AvgScore             *float64 `json:"avg_score"`
	UnansweredLeads      int      `gorm:"default:0" json:"unanswered_leads"`
}

func (DailyMetric) TableName() string {
	return "daily_metrics"
}

// PromptConfig stores an overridable analysis prompt. CompanyID nil means
// global. Only one active row per (CompanyID, Name); writing a new one
// deactivates the previous actives in the same transaction.
type PromptConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID *uint     `gorm:"index" json:"company_id"`
	Name      string    `gorm:"size:50;not null;index" json:"name"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Active    bool      `gorm:"default:true;index" json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PromptConfig) TableName() string {
	return "prompt_configs"
}

// AppConfig is a tenant-scoped key/value setting with global fallback
// (CompanyID nil = global).
type AppConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID *uint     `gorm:"index;uniqueIndex:idx_company_key" json:"company_id"`
	Key       string    `gorm:"size:50;not null;uniqueIndex:idx_company_key" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AppConfig) TableName() string {
	return "app_configs"
}
