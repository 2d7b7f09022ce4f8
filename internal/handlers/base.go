package handlers

import (
	"github.com/gin-gonic/gin"
)

// FieldError 字段级错误，前端按 field 定位到对应输入框
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RenderFieldErrors 以统一的 {"errors": [...]} 形状返回校验失败
func RenderFieldErrors(c *gin.Context, code int, errs ...FieldError) {
	c.JSON(code, gin.H{"errors": errs})
}

// RenderError 单条错误信息
func RenderError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}
