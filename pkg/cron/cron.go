package cron

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"blogmailer_backend/pkg/logger"
)

// Cron hook names. The scheduler fires these; handlers are attached at
// startup.
const (
	HookSendNewsletter = "blogmailer_send_newsletter"
	HookProcessQueue   = "blogmailer_process_email_queue"
	HookCleanup        = "blogmailer_cleanup_old_data"
	HookWeeklyReport   = "blogmailer_send_weekly_report"
)

// Named cadences available to callers, including the custom short
// intervals.
var intervalSpecs = map[string]string{
	"hourly":                "@hourly",
	"daily":                 "@daily",
	"weekly":                "@weekly",
	"every_five_minutes":    "@every 5m",
	"every_fifteen_minutes": "@every 15m",
}

// SpecForInterval resolves a named cadence to a cron spec.
func SpecForInterval(name string) (string, bool) {
	spec, ok := intervalSpecs[name]
	return spec, ok
}

var weekdays = map[string]int{
	"sunday":    0,
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
}

// SpecForSchedule converts the settings frequency/day/time into a cron
// spec. Unparseable input falls back to weekly Monday 09:00.
func SpecForSchedule(frequency, day, clock string) string {
	hour, minute := 9, 0
	if parts := strings.SplitN(clock, ":", 2); len(parts) == 2 {
		if h, err := strconv.Atoi(parts[0]); err == nil && h >= 0 && h <= 23 {
			hour = h
		}
		if m, err := strconv.Atoi(parts[1]); err == nil && m >= 0 && m <= 59 {
			minute = m
		}
	}

	switch frequency {
	case "hourly":
		return "@hourly"
	case "daily":
		return fmt.Sprintf("%d %d * * *", minute, hour)
	default: // weekly
		weekday, ok := weekdays[strings.ToLower(day)]
		if !ok {
			weekday = 1
		}
		return fmt.Sprintf("%d %d * * %d", minute, hour, weekday)
	}
}

// CadenceForFrequency gives the expected gap between runs, used by the
// health check's overdue rule.
func CadenceForFrequency(frequency string) time.Duration {
	switch frequency {
	case "hourly":
		return time.Hour
	case "daily":
		return 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// Service wraps the cron runner with named, idempotently scheduled
// hooks.
type Service struct {
	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewService() *Service {
	return &Service{
		cron:    cron.New(),
		entries: make(map[string]cron.EntryID),
	}
}

func (s *Service) Start() {
	s.cron.Start()
}

func (s *Service) Stop() {
	s.cron.Stop()
}

// Schedule registers a hook unless an entry for it is already pending;
// repeated calls never create duplicate triggers.
func (s *Service) Schedule(hook, spec string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[hook]; exists {
		return nil
	}

	id, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("could not schedule %s: %w", hook, err)
	}
	s.entries[hook] = id
	logger.Log.Info("scheduled cron hook", zap.String("hook", hook), zap.String("spec", spec))
	return nil
}

// Reschedule replaces a hook's cadence. Used when the settings-save
// handler recomputes the newsletter schedule.
func (s *Service) Reschedule(hook, spec string, job func()) error {
	s.Unschedule(hook)
	return s.Schedule(hook, spec, job)
}

// Unschedule removes one hook if present.
func (s *Service) Unschedule(hook string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.entries[hook]; exists {
		s.cron.Remove(id)
		delete(s.entries, hook)
	}
}

// Clear removes every known hook unconditionally.
func (s *Service) Clear() {
	for _, hook := range []string{HookSendNewsletter, HookProcessQueue, HookCleanup, HookWeeklyReport} {
		s.Unschedule(hook)
	}
}

// IsScheduled reports whether a hook has a pending entry.
func (s *Service) IsScheduled(hook string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.entries[hook]
	return exists
}

// NextRun returns the pending fire time for a hook.
func (s *Service) NextRun(hook string) (time.Time, bool) {
	s.mu.Lock()
	id, exists := s.entries[hook]
	s.mu.Unlock()
	if !exists {
		return time.Time{}, false
	}

	entry := s.cron.Entry(id)
	if !entry.Valid() {
		return time.Time{}, false
	}
	next := entry.Next
	if next.IsZero() {
		// Runner not started yet; derive from the schedule directly.
		next = entry.Schedule.Next(time.Now())
	}
	return next, true
}

// EntryCount reports how many triggers are pending in total.
func (s *Service) EntryCount() int {
	return len(s.cron.Entries())
}
