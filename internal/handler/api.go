package handler

import (
	"github.com/droplog/internal/config"
	"github.com/droplog/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	water         *service.WaterLogService
	agent         *service.HydrationAgentService
	reminders     *service.ReminderService
	defaultGoalML int
	staticDir     string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig) *API {
	water := service.NewWaterLogService(gdb)

	return &API{
		water:         water,
		agent:         service.NewHydrationAgentService(water, cfg.GroqBaseURL, cfg.GroqModel),
		reminders:     service.NewReminderService(cfg.ReminderDelay),
		defaultGoalML: cfg.DefaultGoalML,
		staticDir:     cfg.StaticDir,
	}
}

// Agent 暴露智能体服务，便于测试替换其 HTTP 客户端。
func (a *API) Agent() *service.HydrationAgentService {
	return a.agent
}

// Reminders 暴露提醒服务，便于测试注入通知钩子。
func (a *API) Reminders() *service.ReminderService {
	return a.reminders
}
