package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/prospect-finder/internal/pkg/errors"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusHealthy = "healthy"
)

// ErrorBody 错误响应结构
type ErrorBody struct {
	Status  string `json:"status"`
	Code    int    `json:"code,omitempty"` // 业务错误码
	Message string `json:"message"`
}

// Success 200, payload 原样输出
func Success(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// BadRequest 400 错误
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorBody{
		Status:  StatusError,
		Code:    apperrors.ErrInvalidParams,
		Message: message,
	})
}

// Fail 按错误携带的业务码映射 HTTP 状态码，message 使用原始错误文本
func Fail(c *gin.Context, err error) {
	code := apperrors.ExtractCode(err)
	c.JSON(apperrors.GetHTTPStatus(code), ErrorBody{
		Status:  StatusError,
		Code:    code,
		Message: err.Error(),
	})
}
