package util

import (
	"errors"
	"lms_console_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// HandleError 将领域错误映射为 HTTP 状态码
func HandleError(c *gin.Context, err error) {
	switch {
	case IsValidationError(err), errors.Is(err, ErrMalformedImportFile), errors.Is(err, ErrInvalidBatchID):
		BadRequest(c, err.Error())
	case errors.Is(err, ErrImportTooLarge):
		Error(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, ErrAssessmentNotFound),
		errors.Is(err, ErrSubmissionNotFound),
		errors.Is(err, ErrArchiveNotFound),
		errors.Is(err, ErrArchiveDisabled):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrCourseNotFound),
		errors.Is(err, ErrInvalidAssessmentType),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrScoreOutOfRange),
		errors.Is(err, ErrSubmissionMismatch):
		Error(c, http.StatusUnprocessableEntity, err.Error())
	default:
		var opErr *OpError
		if errors.As(err, &opErr) {
			logger.Log.Error("operation failed", zap.String("op", opErr.Op), zap.Error(err))
			Error(c, http.StatusInternalServerError, opErr.Error())
			return
		}
		LogInternalError(c, err)
	}
}
