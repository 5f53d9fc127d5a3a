package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/logger"
)

// A hook is considered overdue when its most recent log entry is older
// than the expected cadence times this tolerance.
const overdueTolerance = 2.0

// Scheduler is the slice of the cron service the health check needs.
type Scheduler interface {
	NextRun(hook string) (time.Time, bool)
}

// HookSpec describes one known cron hook for the health derivation.
// Disabled hooks (gated off by the current plan) are skipped entirely.
type HookSpec struct {
	Name    string
	Cadence time.Duration
	Enabled bool
}

type HookHealth struct {
	Hook        string     `json:"hook"`
	Status      string     `json:"status"`
	NextRun     *time.Time `json:"next_run"`
	LastStatus  string     `json:"last_status"`
	LastRunAt   *time.Time `json:"last_run_at"`
	LastMessage string     `json:"last_message"`
	Issues      []string   `json:"issues"`
}

type HealthReport struct {
	OverallStatus string       `json:"overall_status"`
	Hooks         []HookHealth `json:"hooks"`
	Issues        []string     `json:"issues"`
}

type CronStatistics struct {
	Total       int64   `json:"total"`
	Successful  int64   `json:"successful"`
	Failed      int64   `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// CronStatusService appends execution outcomes to the cron log and
// derives the scheduler health summary from it.
type CronStatusService struct {
	db        *gorm.DB
	scheduler Scheduler
}

func NewCronStatusService(db *gorm.DB, scheduler Scheduler) *CronStatusService {
	return &CronStatusService{db: db, scheduler: scheduler}
}

// LogExecution appends one row and returns its id. The log is
// append-only; no update or delete is exposed.
func (s *CronStatusService) LogExecution(hook, status, message string, details interface{}) uint {
	entry := model.CronLog{
		Hook:       hook,
		Status:     status,
		Message:    message,
		ExecutedAt: time.Now(),
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = datatypes.JSON(raw)
		}
	}
	if err := s.db.Create(&entry).Error; err != nil {
		logger.Log.Error("failed to write cron log", zap.String("hook", hook), zap.Error(err))
		return 0
	}
	return entry.ID
}

// HealthStatus derives per-hook health: schedule presence, staleness of
// the last run against the expected cadence, and last-run outcome.
func (s *CronStatusService) HealthStatus(hooks []HookSpec) (HealthReport, error) {
	report := HealthReport{OverallStatus: "healthy"}
	hasError := false
	hasWarning := false

	for _, spec := range hooks {
		if !spec.Enabled {
			continue
		}

		health := HookHealth{Hook: spec.Name, Status: "healthy", Issues: []string{}}

		if next, ok := s.scheduler.NextRun(spec.Name); ok {
			health.NextRun = &next
		} else {
			health.Issues = append(health.Issues,
				fmt.Sprintf("%s is not scheduled", spec.Name))
		}

		last, err := s.lastEntry(spec.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return report, err
		}
		if last != nil {
			health.LastStatus = last.Status
			health.LastRunAt = &last.ExecutedAt
			health.LastMessage = last.Message

			maxAge := time.Duration(float64(spec.Cadence) * overdueTolerance)
			if spec.Cadence > 0 && time.Since(last.ExecutedAt) > maxAge {
				health.Issues = append(health.Issues,
					fmt.Sprintf("%s is overdue: last run %s", spec.Name, last.ExecutedAt.Format(time.RFC3339)))
			}
			if last.Status == model.CronStatusFailed {
				health.Issues = append(health.Issues,
					fmt.Sprintf("%s: last run failed: %s", spec.Name, last.Message))
				hasError = true
				health.Status = "error"
			}
		}

		if len(health.Issues) > 0 {
			if health.Status != "error" {
				health.Status = "warning"
			}
			hasWarning = true
			report.Issues = append(report.Issues, health.Issues...)
		}

		report.Hooks = append(report.Hooks, health)
	}

	if hasError {
		report.OverallStatus = "error"
	} else if hasWarning {
		report.OverallStatus = "warning"
	}
	return report, nil
}

func (s *CronStatusService) lastEntry(hook string) (*model.CronLog, error) {
	var entry model.CronLog
	err := s.db.Where("hook = ?", hook).
		Order("executed_at DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Statistics aggregates cron log rows in the trailing window. The
// success rate is 0 when no rows fall in the window.
func (s *CronStatusService) Statistics(days int) (CronStatistics, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)

	var stats CronStatistics
	base := s.db.Model(&model.CronLog{}).Where("executed_at >= ?", since)

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", model.CronStatusSuccess).Count(&stats.Successful).Error; err != nil {
		return stats, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", model.CronStatusFailed).Count(&stats.Failed).Error; err != nil {
		return stats, err
	}

	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Successful) / float64(stats.Total) * 100
	}
	return stats, nil
}

// RecentLogs returns the newest log rows for the cron status page.
func (s *CronStatusService) RecentLogs(limit int) ([]model.CronLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []model.CronLog
	err := s.db.Order("executed_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
