package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionUserKey = "visitor_user_id"

// ShowDashboard 返回仪表盘页面并保证会话中存在一个访客标识。
// 访客标识只是页面默认填入的 user_id，不构成任何鉴权。
func (a *API) ShowDashboard(c *gin.Context) {
	session := sessions.Default(c)

	userID, _ := session.Get(sessionUserKey).(string)
	if strings.TrimSpace(userID) == "" {
		userID = uuid.NewString()
		session.Set(sessionUserKey, userID)
		// 会话写失败只会导致下次换一个访客标识，不值得中断页面
		_ = session.Save()
	}

	c.SetCookie("droplog_user_id", userID, 0, "/", "", false, false)
	c.File(filepath.Join(a.staticDir, "index.html"))
}

// Ping 用于健康检查。
func (a *API) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
