package handler

import (
	"github.com/foliopulse/internal/automation"
	"github.com/foliopulse/internal/config"
	"github.com/foliopulse/internal/queue"
	"github.com/foliopulse/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers. Everything is
// injected here; handlers hold no package-level state.
type API struct {
	db           *gorm.DB
	interactions *service.InteractionService
	views        *service.ViewService
	contacts     *service.ContactService
	errorLogs    *service.ErrorLogService
	dispatcher   *automation.Dispatcher
	cfg          config.AppConfig
	log          zerolog.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, q queue.Queue, cfg config.AppConfig, log zerolog.Logger) *API {
	return &API{
		db:           gdb,
		interactions: service.NewInteractionService(gdb),
		views:        service.NewViewService(gdb),
		contacts:     service.NewContactService(gdb, q, log),
		errorLogs:    service.NewErrorLogService(gdb),
		dispatcher:   automation.NewDispatcher(q, cfg.SiteBaseURL, cfg.NotificationURLs, log),
		cfg:          cfg,
		log:          log,
	}
}

// DB exposes the underlying gorm instance for test seeding.
func (a *API) DB() *gorm.DB {
	return a.db
}

// requestContext extracts the per-request analytics attributes.
func requestContext(c *gin.Context) service.RequestContext {
	return service.RequestContext{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referer:   c.Request.Referer(),
		SessionID: c.GetHeader("x-session-id"),
	}
}
