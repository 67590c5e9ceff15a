package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondErrorPayload 以 {status:"error", message} 形状返回错误。
// 历史客户端只检查负载形状不检查状态码，所以内部错误保持 200；
// 入参校验失败允许使用 400，但负载形状不变。
func respondErrorPayload(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}

func respondInternalError(c *gin.Context, message string) {
	respondErrorPayload(c, http.StatusOK, message)
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondErrorPayload(c, http.StatusBadRequest, message)
		return false
	}
	return true
}
