package service

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/plan"
)

var nonLetters = regexp.MustCompile(`[^a-zA-Z]`)

type CreateSubscriberInput struct {
	Email     string
	FirstName string
	LastName  string
}

type SubscriberStats struct {
	Total        int64 `json:"total"`
	Confirmed    int64 `json:"confirmed"`
	Pending      int64 `json:"pending"`
	Unsubscribed int64 `json:"unsubscribed"`
}

type ListSubscribersFilters struct {
	Search  string
	Status  string
	Page    int
	PerPage int
}

// SubscriberService owns subscriber CRUD and status transitions.
type SubscriberService struct {
	db     *gorm.DB
	limits plan.PlanLimits
}

func NewSubscriberService(db *gorm.DB, limits plan.PlanLimits) *SubscriberService {
	return &SubscriberService{db: db, limits: limits}
}

// Create validates and inserts a new pending subscriber. The duplicate
// check runs before the insert; the unique index on email is the
// backstop for concurrent submissions of the same address.
func (s *SubscriberService) Create(input CreateSubscriberInput) (*model.Subscriber, error) {
	address := strings.TrimSpace(strings.ToLower(input.Email))
	if _, err := mail.ParseAddress(address); err != nil {
		return nil, ErrInvalidEmail
	}

	if s.limits.MaxSubscribers > 0 {
		var count int64
		if err := s.db.Model(&model.Subscriber{}).Count(&count).Error; err != nil {
			return nil, err
		}
		if count >= int64(s.limits.MaxSubscribers) {
			return nil, ErrSubscriberLimit
		}
	}

	exists, err := s.EmailExists(address)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" && lastName == "" {
		firstName = deriveFirstName(address)
	}

	subscriber := model.Subscriber{
		Email:          address,
		FirstName:      firstName,
		LastName:       lastName,
		Status:         model.StatusPending,
		UnsubscribeKey: uuid.NewString(),
	}

	if err := s.db.Create(&subscriber).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return &subscriber, nil
}

// deriveFirstName builds a greeting name from the email local part when
// the form carried no name: letters only, first letter capitalised.
func deriveFirstName(address string) string {
	local := address
	if at := strings.Index(address, "@"); at > 0 {
		local = address[:at]
	}
	name := nonLetters.ReplaceAllString(local, "")
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func (s *SubscriberService) Get(id uint) (*model.Subscriber, error) {
	var subscriber model.Subscriber
	if err := s.db.First(&subscriber, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &subscriber, nil
}

// GetByEmailAndKey looks up the subscriber addressed by a public
// confirm/unsubscribe link. The key is the sole capability token.
func (s *SubscriberService) GetByEmailAndKey(address, key string) (*model.Subscriber, error) {
	if address == "" || key == "" {
		return nil, ErrInvalidKey
	}
	var subscriber model.Subscriber
	err := s.db.Where("email = ? AND unsubscribe_key = ?", strings.ToLower(address), key).
		First(&subscriber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidKey
		}
		return nil, err
	}
	return &subscriber, nil
}

// Confirm transitions a subscriber to confirmed. Idempotent: confirming
// an already-confirmed subscriber reports changed=false without error.
func (s *SubscriberService) Confirm(id uint) (bool, error) {
	subscriber, err := s.Get(id)
	if err != nil {
		return false, err
	}
	if subscriber.Status == model.StatusConfirmed {
		return false, nil
	}
	if err := s.db.Model(subscriber).Update("status", model.StatusConfirmed).Error; err != nil {
		return false, err
	}
	return true, nil
}

// Unsubscribe transitions a subscriber to the terminal unsubscribed
// state.
func (s *SubscriberService) Unsubscribe(id uint) error {
	subscriber, err := s.Get(id)
	if err != nil {
		return err
	}
	if subscriber.Status == model.StatusUnsubscribed {
		return nil
	}
	return s.db.Model(subscriber).Update("status", model.StatusUnsubscribed).Error
}

func (s *SubscriberService) EmailExists(address string) (bool, error) {
	var count int64
	err := s.db.Model(&model.Subscriber{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(address))).
		Count(&count).Error
	return count > 0, err
}

// Confirmed returns every subscriber eligible to receive a send.
func (s *SubscriberService) Confirmed() ([]model.Subscriber, error) {
	var subscribers []model.Subscriber
	err := s.db.Where("status = ?", model.StatusConfirmed).
		Order("id ASC").
		Find(&subscribers).Error
	return subscribers, err
}

// List returns a page of subscribers with optional substring search
// across name and email, and an optional status filter.
func (s *SubscriberService) List(filters ListSubscribersFilters) ([]model.Subscriber, int64, error) {
	query := s.db.Model(&model.Subscriber{})

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
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
		perPage = 20
	}

	var subscribers []model.Subscriber
	err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&subscribers).Error
	return subscribers, total, err
}

func (s *SubscriberService) Stats() (SubscriberStats, error) {
	var stats SubscriberStats

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	err := s.db.Model(&model.Subscriber{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return stats, err
	}

	for _, c := range counts {
		stats.Total += c.Count
		switch c.Status {
		case model.StatusConfirmed:
			stats.Confirmed = c.Count
		case model.StatusPending:
			stats.Pending = c.Count
		case model.StatusUnsubscribed:
			stats.Unsubscribed = c.Count
		}
	}
	return stats, nil
}

// CountCreatedSince supports the weekly report.
func (s *SubscriberService) CountCreatedSince(since time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&model.Subscriber{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// GenerateMissingKeys backfills an unsubscribe key onto every
// subscriber that lacks one. Run once at startup, gated by a persisted
// option flag.
func (s *SubscriberService) GenerateMissingKeys() (int, error) {
	var subscribers []model.Subscriber
	if err := s.db.Where("unsubscribe_key = '' OR unsubscribe_key IS NULL").Find(&subscribers).Error; err != nil {
		return 0, err
	}

	updated := 0
	for _, subscriber := range subscribers {
		err := s.db.Model(&subscriber).Update("unsubscribe_key", uuid.NewString()).Error
		if err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (s *SubscriberService) Update(id uint, firstName, lastName, status string) (*model.Subscriber, error) {
	subscriber, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if firstName != "" {
		updates["first_name"] = firstName
	}
	if lastName != "" {
		updates["last_name"] = lastName
	}
	switch status {
	case model.StatusPending, model.StatusConfirmed, model.StatusUnsubscribed:
		updates["status"] = status
	}

	if len(updates) > 0 {
		if err := s.db.Model(subscriber).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return subscriber, nil
}

func (s *SubscriberService) Delete(id uint) error {
	result := s.db.Delete(&model.Subscriber{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
