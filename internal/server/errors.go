package server

import (
	"errors"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wolfitem/ai-news/internal/domain/model"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
)

// errorResponse 统一错误响应
type errorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
	Field      string `json:"field,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"` // 秒
	RequestID  string `json:"requestId,omitempty"`
}

// handleError 把领域错误映射为HTTP状态码
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := mapError(err)
	body.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
	if status >= http.StatusInternalServerError {
		logger.Error("请求处理失败", "path", c.Request().URL.Path, "error", err, "request_id", body.RequestID)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Error("写入错误响应失败", "error", err)
	}
}

func mapError(err error) (int, errorResponse) {
	var (
		quotaErr    *model.QuotaExceededError
		inputErr    *model.InvalidInputError
		analysisErr *model.AnalysisFailedError
		httpErr     *echo.HTTPError
	)

	switch {
	case errors.As(err, &quotaErr):
		retryAfter := int(math.Ceil(quotaErr.RetryAfter.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		return http.StatusTooManyRequests, errorResponse{
			Error:      quotaErr.Provider + " rate limit exceeded",
			RetryAfter: retryAfter,
		}
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, errorResponse{Error: inputErr.Message, Field: inputErr.Field}
	case errors.As(err, &analysisErr):
		return http.StatusInternalServerError, errorResponse{
			Error:   "Failed to analyze article",
			Message: analysisErr.Error(),
		}
	case errors.As(err, &httpErr):
		msg := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		}
		return httpErr.Code, errorResponse{Error: msg}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "Internal server error", Message: err.Error()}
	}
}
