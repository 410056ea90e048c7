package store

import (
	"errors"

	"salespulse-wa/models"

	"gorm.io/gorm"
)

// UpsertDailyMetric writes the metric row for (salesperson, date), updating in
// place when one exists. Recomputing a day overwrites, never accumulates.
func (s *Store) UpsertDailyMetric(metric *models.DailyMetric) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.DailyMetric
		err := tx.
			Where("salesperson_id = ? AND date = ?", metric.SalespersonID, metric.Date).
			First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(metric).Error
		}
		if err != nil {
			return err
		}

		metric.ID = existing.ID
		return tx.Model(&existing).Select("*").Omit("id").Updates(metric).Error
	})
}

// MetricsBySalesperson returns the metric history of one salesperson, newest
// date first, capped at limit rows.
func (s *Store) MetricsBySalesperson(salespersonID uint, limit int) ([]models.DailyMetric, error) {
	var metrics []models.DailyMetric
	err := s.db.
		Where("salesperson_id = ?", salespersonID).
		Order("date DESC").
		Limit(limit).
		Find(&metrics).Error
	if err != nil {
		return nil, err
	}
	return metrics, nil
}

// MetricsByDay returns every salesperson's metric row for a date, optionally
// scoped to one company.
func (s *Store) MetricsByDay(date string, companyID *uint) ([]models.DailyMetric, error) {
	query := s.db.Where("daily_metrics.date = ?", date)
	if companyID != nil {
		query = query.
			Joins("JOIN salespeople ON salespeople.id = daily_metrics.salesperson_id").
			Where("salespeople.company_id = ?", *companyID)
	}
	var metrics []models.DailyMetric
	if err := query.Order("daily_metrics.salesperson_id").Find(&metrics).Error; err != nil {
		return nil, err
	}
	return metrics, nil
}

// MetricsByPeriod returns metric rows in a date range ordered by date.
func (s *Store) MetricsByPeriod(startDate, endDate string, companyID *uint) ([]models.DailyMetric, error) {
	query := s.db.Where("daily_metrics.date >= ? AND daily_metrics.date <= ?", startDate, endDate)
	if companyID != nil {
		query = query.
			Joins("JOIN salespeople ON salespeople.id = daily_metrics.salesperson_id").
			Where("salespeople.company_id = ?", *companyID)
	}
	var metrics []models.DailyMetric
	if err := query.Order("daily_metrics.date").Find(&metrics).Error; err != nil {
		return nil, err
	}
	return metrics, nil
}
