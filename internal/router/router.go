package router

import (
	"github.com/droplog/internal/config"
	"github.com/droplog/internal/db"
	"github.com/droplog/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig) *gin.Engine {
	return SetupRouterWithAPI(cfg, handler.NewAPI(db.DB, cfg))
}

// SetupRouterWithAPI 使用外部构造的 handler 集合装配路由，便于测试替换依赖。
func SetupRouterWithAPI(cfg config.AppConfig, api *handler.API) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件（仅用于记住仪表盘访客标识，不做鉴权）
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("droplog_session", store))

	// 跨域完全开放，历史客户端直接从任意页面调用本服务
	r.Use(handler.CORSMiddleware())
	r.Use(handler.RequestLogMiddleware())

	// 静态文件服务（仪表盘前端）
	r.Static("/static", cfg.StaticDir)

	r.GET("/ping", api.Ping)
	r.GET("/dashboard", api.ShowDashboard)

	// 饮水记录接口
	r.POST("/add-entry/", api.AddEntry)
	r.GET("/history/:user_id", api.GetHistory)
	r.GET("/today-total/:user_id", api.GetTodayTotal)
	r.POST("/reset/", api.Reset)

	// 智能体接口单独限流：它是唯一会消耗外部模型额度的端点
	agent := r.Group("")
	agent.Use(handler.AgentRateLimiter(cfg.AgentRatePerMin, cfg.AgentRateBurst))
	{
		agent.POST("/ask-agent/", api.AskAgent)
	}

	return r
}
