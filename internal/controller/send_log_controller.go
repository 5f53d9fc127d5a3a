package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/internal/service"
)

// SendLogController exposes the delivery log and batch history to the
// admin UI.
type SendLogController struct {
	db       *gorm.DB
	sendLogs *service.SendLogService
}

func NewSendLogController(db *gorm.DB, sendLogs *service.SendLogService) *SendLogController {
	return &SendLogController{db: db, sendLogs: sendLogs}
}

func (ctl *SendLogController) List(c *fiber.Ctx) error {
	filters := service.ListSendLogFilters{
		Status:       c.Query("status"),
		CampaignType: c.Query("campaign_type"),
		Page:         c.QueryInt("page", 1),
		PerPage:      c.QueryInt("per_page", 20),
	}

	entries, total, err := ctl.sendLogs.List(filters)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch send logs",
		})
	}

	return c.JSON(fiber.Map{
		"logs":     entries,
		"total":    total,
		"page":     filters.Page,
		"per_page": filters.PerPage,
	})
}

// History lists completed batch sends, newest first.
func (ctl *SendLogController) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 {
		limit = 20
	}

	var history []model.SendHistory
	if err := ctl.db.Order("sent_at DESC").Limit(limit).Find(&history).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch send history",
		})
	}

	return c.JSON(fiber.Map{
		"history": history,
		"total":   len(history),
	})
}
