package store

import (
	"errors"

	"salespulse-wa/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Store wraps all database access. One instance is shared by every service;
// each call runs its own short transaction against the underlying pool.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for callers that need a raw query.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// === Companies ===

// CreateCompany creates a tenant with a fresh opaque access token.
func (s *Store) CreateCompany(name string) (*models.Company, error) {
	company := models.Company{Name: name, Token: uuid.New().String(), Active: true}
	if err := s.db.Create(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (s *Store) CompanyByToken(token string) (*models.Company, error) {
	var company models.Company
	err := s.db.Where("token = ? AND active = ?", token, true).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (s *Store) ListCompanies(activeOnly bool) ([]models.Company, error) {
	query := s.db.Order("id")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var companies []models.Company
	if err := query.Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// === Messaging instances ===

func (s *Store) CreateInstance(companyID uint, name, phone string) (*models.MessagingInstance, error) {
	instance := models.MessagingInstance{
		CompanyID:    companyID,
		InstanceName: name,
		Phone:        phone,
		Active:       true,
	}
	if err := s.db.Create(&instance).Error; err != nil {
		return nil, err
	}
	return &instance, nil
}

// InstanceByName resolves an inbound channel name to its registered instance.
// Inactive instances never match: a disabled line must stop routing messages.
func (s *Store) InstanceByName(name string) (*models.MessagingInstance, error) {
	var instance models.MessagingInstance
	err := s.db.Where("instance_name = ? AND active = ?", name, true).First(&instance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func (s *Store) ListCompanyInstances(companyID uint) ([]models.MessagingInstance, error) {
	var instances []models.MessagingInstance
	err := s.db.Where("company_id = ?", companyID).Order("id").Find(&instances).Error
	if err != nil {
		return nil, err
	}
	return instances, nil
}

func (s *Store) UpdateInstance(id, companyID uint, name, phone *string) (*models.MessagingInstance, error) {
	var instance models.MessagingInstance
	err := s.db.Where("id = ? AND company_id = ?", id, companyID).First(&instance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if name != nil {
		instance.InstanceName = *name
	}
	if phone != nil {
		instance.Phone = *phone
	}
	if err := s.db.Save(&instance).Error; err != nil {
		return nil, err
	}
	return &instance, nil
}

// DeactivateInstance soft-deletes an instance.
func (s *Store) DeactivateInstance(id, companyID uint) error {
	result := s.db.Model(&models.MessagingInstance{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// === Salespeople ===

func (s *Store) CreateSalesperson(name, phone string, companyID *uint) (*models.Salesperson, error) {
	sp := models.Salesperson{Name: name, Phone: phone, CompanyID: companyID, Active: true}
	if err := s.db.Create(&sp).Error; err != nil {
		return nil, err
	}
	return &sp, nil
}

func (s *Store) SalespersonByID(id uint) (*models.Salesperson, error) {
	var sp models.Salesperson
	err := s.db.First(&sp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

// ListSalespeople returns salespeople, optionally scoped to a company and to
// the active ones only, in a deterministic order.
func (s *Store) ListSalespeople(companyID *uint, activeOnly bool) ([]models.Salesperson, error) {
	query := s.db.Order("id")
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var people []models.Salesperson
	if err := query.Find(&people).Error; err != nil {
		return nil, err
	}
	return people, nil
}

// SalespersonByInstancePhone finds an active salesperson of the company whose
// phone contains the instance phone as a substring. Country-code and
// formatting variance make an exact match unreliable; first match wins.
func (s *Store) SalespersonByInstancePhone(companyID uint, phone string) (*models.Salesperson, error) {
	var sp models.Salesperson
	err := s.db.
		Where("company_id = ? AND active = ? AND phone LIKE ?", companyID, true, "%"+phone+"%").
		Order("id").
		First(&sp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

// FirstActiveSalesperson is the routing fallback: arbitrary but deterministic.
func (s *Store) FirstActiveSalesperson(companyID uint) (*models.Salesperson, error) {
	var sp models.Salesperson
	err := s.db.
		Where("company_id = ? AND active = ?", companyID, true).
		Order("id").
		First(&sp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

// DeactivateSalesperson soft-deletes; conversations, messages and metrics of
// the salesperson remain untouched.
func (s *Store) DeactivateSalesperson(id uint, companyID uint) error {
	result := s.db.Model(&models.Salesperson{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
