package store

import (
	"errors"
	"os"
	"time"

	"salespulse-wa/models"

	"gorm.io/gorm"
)

// Known setting keys and their environment fallbacks.
var settingEnvVars = map[string]string{
	"openai_api_key":        "OPENAI_API_KEY",
	"openai_model":          "OPENAI_MODEL",
	"gateway_api_url":       "GATEWAY_API_URL",
	"gateway_api_key":       "GATEWAY_API_KEY",
	"gateway_instance_name": "GATEWAY_INSTANCE_NAME",
	"manager_phone":         "MANAGER_PHONE",
	"report_time":           "REPORT_TIME",
	"report_timezone":       "REPORT_TZ",
	"webhook_secret":        "WEBHOOK_SECRET",
}

// Setting resolves a tunable through the precedence cascade:
// company-scoped stored value, then global stored value, then environment,
// then the caller-supplied default.
func (s *Store) Setting(key string, companyID *uint, fallback string) string {
	if companyID != nil {
		if value, ok := s.configValue(key, companyID); ok {
			return value
		}
	}
	if value, ok := s.configValue(key, nil); ok {
		return value
	}
	if envVar, ok := settingEnvVars[key]; ok {
		if value := os.Getenv(envVar); value != "" {
			return value
		}
	}
	return fallback
}

func (s *Store) configValue(key string, companyID *uint) (string, bool) {
	query := s.db.Where("key = ?", key)
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	} else {
		query = query.Where("company_id IS NULL")
	}

	var config models.AppConfig
	if err := query.First(&config).Error; err != nil {
		return "", false
	}
	if config.Value == "" {
		return "", false
	}
	return config.Value, true
}

// SaveSetting upserts an AppConfig row keyed by (companyID, key).
func (s *Store) SaveSetting(key, value string, companyID *uint) (*models.AppConfig, error) {
	query := s.db.Where("key = ?", key)
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	} else {
		query = query.Where("company_id IS NULL")
	}

	var config models.AppConfig
	err := query.First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		config = models.AppConfig{CompanyID: companyID, Key: key, Value: value, UpdatedAt: time.Now()}
		if err := s.db.Create(&config).Error; err != nil {
			return nil, err
		}
		return &config, nil
	}
	if err != nil {
		return nil, err
	}

	config.Value = value
	config.UpdatedAt = time.Now()
	if err := s.db.Save(&config).Error; err != nil {
		return nil, err
	}
	return &config, nil
}

// ActivePrompt returns the active prompt for (companyID, name): company first,
// global fallback. Returns ErrNotFound when neither exists.
func (s *Store) ActivePrompt(companyID *uint, name string) (*models.PromptConfig, error) {
	if companyID != nil {
		var prompt models.PromptConfig
		err := s.db.
			Where("company_id = ? AND name = ? AND active = ?", *companyID, name, true).
			Order("updated_at DESC").
			First(&prompt).Error
		if err == nil {
			return &prompt, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var prompt models.PromptConfig
	err := s.db.
		Where("company_id IS NULL AND name = ? AND active = ?", name, true).
		Order("updated_at DESC").
		First(&prompt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}

// SavePrompt inserts a new active prompt and deactivates all prior active
// rows with the same (companyID, name) in the same transaction.
func (s *Store) SavePrompt(content string, companyID *uint, name string) (*models.PromptConfig, error) {
	prompt := models.PromptConfig{
		CompanyID: companyID,
		Name:      name,
		Content:   content,
		Active:    true,
		UpdatedAt: time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		deactivate := tx.Model(&models.PromptConfig{}).
			Where("name = ? AND active = ?", name, true)
		if companyID != nil {
			deactivate = deactivate.Where("company_id = ?", *companyID)
		} else {
			deactivate = deactivate.Where("company_id IS NULL")
		}
		if err := deactivate.Update("active", false).Error; err != nil {
			return err
		}
		return tx.Create(&prompt).Error
	})
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}
