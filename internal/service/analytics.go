package service

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
)

// AnalyticsService records open and click events and maintains the
// hashed link table behind the redirect endpoint.
type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// RecordOpen logs a tracking-pixel hit.
func (s *AnalyticsService) RecordOpen(emailID, subscriberID uint, ip, userAgent string) error {
	event := model.AnalyticsEvent{
		EmailID:      emailID,
		SubscriberID: subscriberID,
		EventType:    model.EventOpen,
		EventAt:      time.Now(),
		IPAddress:    ip,
		UserAgent:    userAgent,
	}
	return s.db.Create(&event).Error
}

// TrackLink registers a URL for click tracking, reusing the existing row
// when the same URL was registered before.
func (s *AnalyticsService) TrackLink(originalURL string) (*model.AnalyticsLink, error) {
	hash := hashURL(originalURL)

	var link model.AnalyticsLink
	err := s.db.Where("url_hash = ?", hash).First(&link).Error
	if err == nil {
		return &link, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	link = model.AnalyticsLink{OriginalURL: originalURL, URLHash: hash}
	if err := s.db.Create(&link).Error; err != nil {
		if isDuplicateKeyError(err) {
			findErr := s.db.Where("url_hash = ?", hash).First(&link).Error
			return &link, findErr
		}
		return nil, err
	}
	return &link, nil
}

// ResolveLink records the click and returns the destination URL.
func (s *AnalyticsService) ResolveLink(hash string, emailID, subscriberID uint, ip, userAgent string) (string, error) {
	var link model.AnalyticsLink
	if err := s.db.Where("url_hash = ?", hash).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	linkID := link.ID
	event := model.AnalyticsEvent{
		EmailID:      emailID,
		SubscriberID: subscriberID,
		EventType:    model.EventClick,
		LinkID:       &linkID,
		EventAt:      time.Now(),
		IPAddress:    ip,
		UserAgent:    userAgent,
	}
	if err := s.db.Create(&event).Error; err != nil {
		return "", err
	}
	return link.OriginalURL, nil
}

// AnalyticsSummary aggregates event counts for the dashboard.
type AnalyticsSummary struct {
	Opens        int64 `json:"opens"`
	Clicks       int64 `json:"clicks"`
	TrackedLinks int64 `json:"tracked_links"`
}

func (s *AnalyticsService) Summary(days int) (AnalyticsSummary, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	var summary AnalyticsSummary
	base := s.db.Model(&model.AnalyticsEvent{}).Where("event_at >= ?", since)

	if err := base.Session(&gorm.Session{}).Where("event_type = ?", model.EventOpen).Count(&summary.Opens).Error; err != nil {
		return summary, err
	}
	if err := base.Session(&gorm.Session{}).Where("event_type = ?", model.EventClick).Count(&summary.Clicks).Error; err != nil {
		return summary, err
	}
	if err := s.db.Model(&model.AnalyticsLink{}).Count(&summary.TrackedLinks).Error; err != nil {
		return summary, err
	}
	return summary, nil
}

func hashURL(originalURL string) string {
	sum := md5.Sum([]byte(originalURL))
	return hex.EncodeToString(sum[:])
}
