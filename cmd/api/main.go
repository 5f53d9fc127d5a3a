package main

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"blogmailer_backend/internal/controller"
	"blogmailer_backend/internal/middleware"
	"blogmailer_backend/internal/model"
	"blogmailer_backend/internal/service"
	"blogmailer_backend/pkg/config"
	"blogmailer_backend/pkg/cron"
	"blogmailer_backend/pkg/database"
	"blogmailer_backend/pkg/email"
	"blogmailer_backend/pkg/logger"
	"blogmailer_backend/pkg/plan"
	"blogmailer_backend/pkg/utils/jwt"
)

// currentDBVersion gates the migration pass; bumped on schema changes.
const currentDBVersion = "1.4.0"

type controllers struct {
	auth        *controller.AuthController
	subscribe   *controller.SubscribeController
	subscribers *controller.SubscriberAdminController
	newsletter  *controller.NewsletterController
	sendLogs    *controller.SendLogController
	cronStatus  *controller.CronController
	settings    *controller.SettingsController
	tags        *controller.TagController
	templates   *controller.TemplateController
	campaigns   *controller.CampaignController
	analytics   *controller.AnalyticsController
}

func setupRoutes(app *fiber.App, ctl controllers, currentPlan plan.PlanType) {
	api := app.Group("/api")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", ctl.auth.Register)
	auth.Post("/login", ctl.auth.Login)

	// Public Newsletter Routes
	newsletter := api.Group("/newsletter")
	newsletter.Post("/subscribe", ctl.subscribe.Subscribe)
	newsletter.Get("/confirm", ctl.subscribe.Confirm)
	newsletter.Get("/unsubscribe", ctl.subscribe.Unsubscribe)
	newsletter.Get("/form", ctl.subscribe.FormWidget)

	// Tracking Routes
	track := api.Group("/track")
	track.Get("/open.gif", ctl.analytics.Open)
	track.Get("/l/:hash", ctl.analytics.Click)

	// Protected Routes
	protected := api.Group("/", middleware.AuthMiddleware())
	protected.Get("/me", ctl.auth.GetMe)

	// Admin subscriber routes
	subscribers := protected.Group("/subscribers")
	subscribers.Get("/", ctl.subscribers.List)
	subscribers.Get("/stats", ctl.subscribers.Stats)
	subscribers.Post("/", ctl.subscribers.Create)
	subscribers.Get("/:id", ctl.subscribers.Get)
	subscribers.Put("/:id", ctl.subscribers.Update)
	subscribers.Delete("/:id", ctl.subscribers.Delete)

	// Tag assignment, starter and up
	tagGate := middleware.RequireFeature(currentPlan, plan.SubscriberTags)
	subscribers.Post("/:id/tags/:tag_id", tagGate, ctl.tags.Assign)
	subscribers.Delete("/:id/tags/:tag_id", tagGate, ctl.tags.Remove)

	tags := protected.Group("/tags", tagGate)
	tags.Get("/", ctl.tags.List)
	tags.Post("/", ctl.tags.Create)
	tags.Put("/:id", ctl.tags.Update)
	tags.Delete("/:id", ctl.tags.Delete)

	// Newsletter admin routes
	adminNewsletter := protected.Group("/newsletter")
	adminNewsletter.Post("/send", ctl.newsletter.SendNow)
	adminNewsletter.Get("/preview", ctl.newsletter.Preview)

	// Dashboard routes
	dashboard := protected.Group("/dashboard")
	dashboard.Get("/", ctl.newsletter.Dashboard)
	dashboard.Get("/analytics", ctl.analytics.Summary)

	// Send log routes
	logs := protected.Group("/logs")
	logs.Get("/sends", ctl.sendLogs.List)
	logs.Get("/history", ctl.sendLogs.History)

	// Cron status routes
	cronStatus := protected.Group("/cron")
	cronStatus.Get("/health", ctl.cronStatus.Health)
	cronStatus.Get("/statistics", ctl.cronStatus.Statistics)
	cronStatus.Get("/logs", ctl.cronStatus.RecentLogs)

	// Settings routes
	settings := protected.Group("/settings")
	settings.Get("/", ctl.settings.Get)
	settings.Put("/", ctl.settings.Update)

	// Template routes, starter and up
	templateGate := middleware.RequireFeature(currentPlan, plan.CustomTemplates)
	templates := protected.Group("/templates", templateGate)
	templates.Get("/", ctl.templates.List)
	templates.Post("/", ctl.templates.Create)
	templates.Get("/:id", ctl.templates.Get)
	templates.Get("/:id/preview", ctl.templates.Preview)
	templates.Put("/:id", ctl.templates.Update)
	templates.Delete("/:id", ctl.templates.Delete)

	// Campaign sends ride the queue; queue processing is starter and up
	queueGate := middleware.RequireFeature(currentPlan, plan.EmailQueue)
	protected.Post("/campaigns", queueGate, templateGate, ctl.campaigns.Send)
}

// runMigrations applies the schema only when the stored version is
// behind, then backfills unsubscribe keys once.
func runMigrations(db *gorm.DB, options *service.OptionService, subscribers *service.SubscriberService) error {
	if err := database.MigrateDatabase(db, &model.Option{}); err != nil {
		return err
	}

	version, err := options.GetString(model.OptionDBVersion)
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		return err
	}

	if version != currentDBVersion {
		err := database.MigrateDatabase(db,
			&model.User{},
			&model.Subscriber{},
			&model.Tag{},
			&model.SubscriberTag{},
			&model.Post{},
			&model.SendHistory{},
			&model.SendLog{},
			&model.EmailQueueItem{},
			&model.CronLog{},
			&model.Template{},
			&model.AnalyticsEvent{},
			&model.AnalyticsLink{},
		)
		if err != nil {
			return err
		}
		if err := options.Set(model.OptionDBVersion, currentDBVersion); err != nil {
			return err
		}
		logger.Log.Info("database migrated", zap.String("version", currentDBVersion))
	}

	if !options.GetBool(model.OptionKeysMigrated) {
		updated, err := subscribers.GenerateMissingKeys()
		if err != nil {
			return err
		}
		if updated > 0 {
			logger.Log.Info("backfilled unsubscribe keys", zap.Int("count", updated))
		}
		if err := options.Set(model.OptionKeysMigrated, true); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	cfg := config.Load()

	logger.Init(cfg.LogLevel)
	defer logger.Log.Sync()

	jwt.Init(cfg.JWT.Secret)

	if cfg.Database.URL == "" {
		logger.Log.Fatal("DATABASE_URL is not set")
	}
	database.InitDB(cfg.Database.URL)
	db := database.GetDB()

	mailer, err := email.NewMailer(cfg.Mail)
	if err != nil {
		logger.Log.Fatal("could not initialize mail transport", zap.Error(err))
	}
	renderer, err := email.NewRenderer()
	if err != nil {
		logger.Log.Fatal("could not load email templates", zap.Error(err))
	}

	currentPlan := plan.Parse(cfg.Plan)
	limits := plan.GetPlanLimits(currentPlan)

	// Services
	optionService := service.NewOptionService(db)
	settingsService := service.NewSettingsService(optionService,
		service.DefaultSettings(cfg.Site.Name, cfg.Mail.FromEmail))
	subscriberService := service.NewSubscriberService(db, limits)
	postService := service.NewPostService(db)
	emailService := service.NewEmailService(db, mailer, renderer, cfg.Site)
	sendLogService := service.NewSendLogService(db)
	newsletterService := service.NewNewsletterService(db, subscriberService, postService,
		emailService, settingsService, optionService, renderer, cfg.Site)
	queueService := service.NewQueueService(db, emailService, settingsService)
	cleanupService := service.NewCleanupService(db)
	reportService := service.NewReportService(db, subscriberService, sendLogService,
		emailService, settingsService, renderer, cfg.Site)
	tagService := service.NewTagService(db)
	templateService := service.NewTemplateStoreService(db, cfg.Site)
	analyticsService := service.NewAnalyticsService(db)
	campaignService := service.NewCampaignService(subscriberService, templateService, queueService, cfg.Site)

	if err := runMigrations(db, optionService, subscriberService); err != nil {
		logger.Log.Fatal("migration failed", zap.Error(err))
	}

	// Scheduler
	cronService := cron.NewService()
	cronStatusService := service.NewCronStatusService(db, cronService)

	scheduleNewsletter := func(settings service.Settings) error {
		spec := cron.SpecForSchedule(settings.ScheduleFrequency, settings.ScheduleDay, settings.ScheduleTime)
		return cronService.Reschedule(cron.HookSendNewsletter, spec, func() {
			newsletterService.RunScheduledSend(cronStatusService)
		})
	}

	if err := scheduleNewsletter(settingsService.Get()); err != nil {
		logger.Log.Fatal("could not schedule newsletter", zap.Error(err))
	}

	if plan.CanUseFeature(currentPlan, plan.EmailQueue) {
		spec, _ := cron.SpecForInterval("every_five_minutes")
		if err := cronService.Schedule(cron.HookProcessQueue, spec, func() {
			queueService.RunScheduledProcess(cronStatusService)
		}); err != nil {
			logger.Log.Fatal("could not schedule queue processing", zap.Error(err))
		}
	}

	weeklySpec, _ := cron.SpecForInterval("weekly")
	if err := cronService.Schedule(cron.HookCleanup, weeklySpec, func() {
		cleanupService.RunScheduledCleanup(cronStatusService)
	}); err != nil {
		logger.Log.Fatal("could not schedule cleanup", zap.Error(err))
	}

	if plan.CanUseFeature(currentPlan, plan.WeeklyReport) {
		if err := cronService.Schedule(cron.HookWeeklyReport, weeklySpec, func() {
			reportService.RunScheduledReport(cronStatusService)
		}); err != nil {
			logger.Log.Fatal("could not schedule weekly report", zap.Error(err))
		}
	}

	cronService.Start()
	defer cronService.Stop()

	hookSpecs := func() []service.HookSpec {
		settings := settingsService.Get()
		return []service.HookSpec{
			{Name: cron.HookSendNewsletter, Cadence: cron.CadenceForFrequency(settings.ScheduleFrequency), Enabled: true},
			{Name: cron.HookProcessQueue, Cadence: 5 * time.Minute, Enabled: plan.CanUseFeature(currentPlan, plan.EmailQueue)},
			{Name: cron.HookCleanup, Cadence: cron.CadenceForFrequency("weekly"), Enabled: true},
			{Name: cron.HookWeeklyReport, Cadence: cron.CadenceForFrequency("weekly"), Enabled: plan.CanUseFeature(currentPlan, plan.WeeklyReport)},
		}
	}

	// Controllers
	ctl := controllers{
		auth:        controller.NewAuthController(db),
		subscribe:   controller.NewSubscribeController(subscriberService, emailService, settingsService),
		subscribers: controller.NewSubscriberAdminController(subscriberService, tagService),
		newsletter: controller.NewNewsletterController(db, newsletterService, subscriberService,
			sendLogService, optionService, analyticsService),
		sendLogs:   controller.NewSendLogController(db, sendLogService),
		cronStatus: controller.NewCronController(cronStatusService, hookSpecs),
		settings:   controller.NewSettingsController(settingsService, scheduleNewsletter),
		tags:       controller.NewTagController(tagService),
		templates:  controller.NewTemplateController(templateService),
		campaigns:  controller.NewCampaignController(campaignService),
		analytics:  controller.NewAnalyticsController(analyticsService),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(cors.New())

	setupRoutes(app, ctl, currentPlan)

	logger.Log.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logger.Log.Fatal("server stopped", zap.Error(err))
	}
}
