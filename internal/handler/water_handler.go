package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/droplog/internal/service"
	"github.com/gin-gonic/gin"
)

type addEntryPayload struct {
	UserID   string `json:"user_id" binding:"required"`
	AmountML int    `json:"amount_ml" binding:"required,gt=0"`
}

type resetPayload struct {
	UserID string `json:"user_id"`
}

// AddEntry 写入一条饮水记录并安排延迟提醒。
// 提醒是旁路副作用，无论成败都不影响写入结果。
func (a *API) AddEntry(c *gin.Context) {
	var payload addEntryPayload
	if !bindJSON(c, &payload, "amount_ml must be a positive integer and user_id is required") {
		return
	}

	entry, err := a.water.Append(payload.UserID, payload.AmountML)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			respondErrorPayload(c, http.StatusBadRequest, err.Error())
			return
		}
		respondInternalError(c, err.Error())
		return
	}

	a.reminders.Schedule(entry.UserID)

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"user_id":   entry.UserID,
		"amount_ml": entry.AmountML,
		"timestamp": entry.Timestamp,
	})
}

// GetHistory 返回指定用户的全部饮水记录，按时间升序。
func (a *API) GetHistory(c *gin.Context) {
	userID := c.Param("user_id")

	entries, err := a.water.History(userID)
	if err != nil {
		respondInternalError(c, err.Error())
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		items = append(items, gin.H{
			"amount_ml": entry.AmountML,
			"timestamp": entry.Timestamp,
		})
	}

	c.JSON(http.StatusOK, items)
}

// GetTodayTotal 返回指定用户当天的饮水总量。
func (a *API) GetTodayTotal(c *gin.Context) {
	userID := c.Param("user_id")

	total, err := a.water.TodayTotal(userID)
	if err != nil {
		respondInternalError(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":        userID,
		"today_total_ml": total,
	})
}

// Reset 清空指定用户的饮水记录；未提供 user_id 时清空全部用户。
// 空请求体沿用历史语义视作全局清空，但请求体解析失败不能落入
// 全局清空：发错类型的调用方显然想按用户重置，必须拒绝且不删任何数据。
func (a *API) Reset(c *gin.Context) {
	var payload resetPayload
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondErrorPayload(c, http.StatusBadRequest, "user_id must be a string")
		return
	}

	if err := a.water.Clear(payload.UserID); err != nil {
		respondInternalError(c, err.Error())
		return
	}

	message := "Hydration log cleared for all users"
	if payload.UserID != "" {
		message = fmt.Sprintf("Hydration log cleared for user: %s", payload.UserID)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": message,
	})
}
