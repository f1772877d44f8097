package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/checksheet-gin/internal/policy"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 错误处理中间件
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			} else {
				Error(c, http.StatusInternalServerError, "internal server error", err.Error())
			}
		}
	}
}

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}

// statusFromError 领域错误到 HTTP 状态码的映射
func statusFromError(err error) int {
	switch {
	case errors.Is(err, policy.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, policy.ErrForbidden):
		// ErrNotOwner 包装了 ErrForbidden,同样映射到 403
		return http.StatusForbidden
	case errors.Is(err, policy.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, policy.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, policy.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondError 将服务层错误转换为统一错误响应
func RespondError(c *gin.Context, err error, operation string) {
	status := statusFromError(err)
	message := "failed to " + operation
	if status == http.StatusInternalServerError {
		// 内部错误不向客户端透出存储细节
		Error(c, status, message, "internal server error")
		return
	}
	Error(c, status, message, err.Error())
}
