package handler

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/droplog/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

type askAgentPayload struct {
	Question string `json:"question"`
	GroqKey  string `json:"groq_key"`
	GoalML   int    `json:"goal_ml"`
	UserID   string `json:"user_id"`
}

// AskAgent 把提问转交给外部托管模型并中继其最终回答。
// 该接口永远返回 200，所有错误都折叠进 response 文本，
// 与历史客户端的约定保持一致。
func (a *API) AskAgent(c *gin.Context) {
	var payload askAgentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusOK, gin.H{"response": "Missing question, user ID, or API key."})
		return
	}

	if strings.TrimSpace(payload.Question) == "" ||
		strings.TrimSpace(payload.GroqKey) == "" ||
		strings.TrimSpace(payload.UserID) == "" {
		c.JSON(http.StatusOK, gin.H{"response": "Missing question, user ID, or API key."})
		return
	}

	goalML := payload.GoalML
	if goalML <= 0 {
		goalML = a.defaultGoalML
	}

	answer := a.agent.Ask(c.Request.Context(), service.AgentRequest{
		Question: payload.Question,
		APIKey:   payload.GroqKey,
		GoalML:   goalML,
		UserID:   payload.UserID,
	})

	c.JSON(http.StatusOK, gin.H{
		"response":      answer,
		"response_html": renderAgentMarkdown(answer),
	})
}

// renderAgentMarkdown 把模型回答渲染为净化后的 HTML，供仪表盘直接插入。
// 渲染失败时回退为原始文本，不影响 response 字段。
func renderAgentMarkdown(content string) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return string(sanitizer.SanitizeBytes(buf.Bytes()))
}
