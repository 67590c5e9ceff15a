package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// CORSMiddleware 完全开放跨域访问，与历史部署保持一致。
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// AgentRateLimiter 按客户端 IP 限制智能体接口的调用频率。
// 该接口会消耗调用方的第三方模型额度，是唯一值得限流的端点。
// 空闲客户端的限流器会被周期性回收。
func AgentRateLimiter(perMinute, burst int) gin.HandlerFunc {
	var (
		clients = make(map[string]*clientLimiter)
		mu      sync.Mutex
	)

	go func() {
		for range time.Tick(5 * time.Minute) {
			mu.Lock()
			for ip, client := range clients {
				if time.Since(client.lastSeen) > 10*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		client, exists := clients[ip]
		if !exists {
			client = &clientLimiter{
				limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
			}
			clients[ip] = client
		}
		client.lastSeen = time.Now()
		mu.Unlock()

		if !client.limiter.Allow() {
			logrus.WithField("client_ip", ip).Warn("agent rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusOK, gin.H{
				"response": "You're asking too quickly. Please wait a moment and try again.",
			})
			return
		}

		c.Next()
	}
}

// RequestLogMiddleware 输出每个请求的方法、路径、状态与耗时。
func RequestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  time.Since(start),
			"client_ip": c.ClientIP(),
		}).Info("request completed")
	}
}
