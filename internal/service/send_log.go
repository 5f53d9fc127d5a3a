package service

import (
	"time"

	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
)

type ListSendLogFilters struct {
	Status       string
	CampaignType string
	Page         int
	PerPage      int
}

// SendLogService reads the per-recipient delivery log for the
// troubleshooting UI. Rows are written by EmailService; the log is
// append-only.
type SendLogService struct {
	db *gorm.DB
}

func NewSendLogService(db *gorm.DB) *SendLogService {
	return &SendLogService{db: db}
}

func (s *SendLogService) List(filters ListSendLogFilters) ([]model.SendLog, int64, error) {
	query := s.db.Model(&model.SendLog{})

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.CampaignType != "" {
		query = query.Where("campaign_type = ?", filters.CampaignType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	perPage := filters.PerPage
	if perPage < 1 {
		perPage = 50
	}

	var entries []model.SendLog
	err := query.Order("sent_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&entries).Error
	return entries, total, err
}

// CountsSince aggregates delivery outcomes in the trailing window, for
// the dashboard and the weekly report.
func (s *SendLogService) CountsSince(since time.Time) (sent int64, failed int64, err error) {
	err = s.db.Model(&model.SendLog{}).
		Where("sent_at >= ? AND status = ?", since, model.SendStatusSuccess).
		Count(&sent).Error
	if err != nil {
		return 0, 0, err
	}
	err = s.db.Model(&model.SendLog{}).
		Where("sent_at >= ? AND status = ?", since, model.SendStatusFailed).
		Count(&failed).Error
	return sent, failed, err
}
