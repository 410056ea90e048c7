package models

import "time"

// Company is the tenant boundary. Everything else (salespeople, instances,
// conversations, configs, prompts) hangs off a company.
type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Token     string    `gorm:"uniqueIndex;size:64;not null" json:"token"` // opaque bearer for dashboard access
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (Company) TableName() string {
	return "companies"
}

// MessagingInstance binds one WhatsApp connection (gateway instance) to a company.
// Inbound webhooks carry the instance name; that is how a message finds its tenant.
type MessagingInstance struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CompanyID    uint      `gorm:"index;not null;uniqueIndex:idx_company_instance" json:"company_id"`
	InstanceName string    `gorm:"size:100;not null;uniqueIndex:idx_company_instance" json:"instance_name"`
	Phone        string    `gorm:"size:20" json:"phone"` // phone of the line bound to this instance, may be empty
	Active       bool      `gorm:"default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (MessagingInstance) TableName() string {
	return "messaging_instances"
}

// Salesperson is soft-deleted via Active so historical conversations and
// metrics stay attributable after deactivation.
type Salesperson struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID *uint     `gorm:"index" json:"company_id"` // nullable: legacy single-tenant rows
	Name      string    `gorm:"size:100;not null" json:"name"`
	Phone     string    `gorm:"size:20;not null;index" json:"phone"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (Salesperson) TableName() string {
	return "salespeople"
}
