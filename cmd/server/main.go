package main

import (
	"github.com/droplog/internal/config"
	"github.com/droplog/internal/db"
	"github.com/droplog/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 显式初始化数据库（含每日重置检查），不依赖包加载副作用
	logrus.WithField("path", cfg.DatabasePath).Info("initializing database")
	if err := db.Init(cfg.DatabasePath); err != nil {
		logrus.Fatalf("failed to initialize database: %v", err)
	}

	r := router.SetupRouter(cfg)
	logrus.WithField("addr", cfg.ListenAddr).Info("starting server")
	if err := r.Run(cfg.ListenAddr); err != nil {
		logrus.Fatalf("failed to run server: %v", err)
	}
}
