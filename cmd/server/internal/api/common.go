package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/houzhh15/taskable/cmd/server/internal/middleware"
	"github.com/houzhh15/taskable/pkg/cards"
	"github.com/houzhh15/taskable/pkg/templates"
	"github.com/houzhh15/taskable/pkg/usable"
)

// currentUser 获取当前用户，由认证中间件设置；不透明令牌时返回 unknown
func currentUser(c *gin.Context) string {
	if user := c.GetString(middleware.UserKey); user != "" {
		return user
	}
	return "unknown"
}

// errorResponse 返回错误响应
func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"error": message,
	})
}

// errorResponseWithDetail 返回带详情的错误响应
func errorResponseWithDetail(c *gin.Context, code int, message string, detail interface{}) {
	c.JSON(code, gin.H{
		"error":   message,
		"details": detail,
	})
}

// badRequestResponse 返回 400 响应
func badRequestResponse(c *gin.Context, message string) {
	errorResponse(c, http.StatusBadRequest, message)
}

// failResponse 按错误类型选择状态码，上游错误保留 Usable 返回的状态码
func failResponse(c *gin.Context, message string, err error) {
	_ = c.Error(err)

	var typeErr *templates.TypeNotFoundError
	if errors.As(err, &typeErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     message,
			"details":   err.Error(),
			"available": typeErr.Available,
		})
		return
	}
	errorResponseWithDetail(c, statusFor(err), message, err.Error())
}

var badRequestErrors = []error{
	cards.ErrTitleRequired,
	cards.ErrEmptyText,
	cards.ErrDescriptionTooLong,
	cards.ErrTooManyLinks,
	cards.ErrTooManyAttachments,
	cards.ErrTooManySubTasks,
	cards.ErrInvalidLinkURL,
	cards.ErrInvalidCollection,
	cards.ErrUnsupportedFileType,
}

var notFoundErrors = []error{
	cards.ErrCardNotFound,
	cards.ErrItemNotFound,
	cards.ErrSubTaskNotFound,
}

func statusFor(err error) int {
	if code := usable.StatusCode(err); code != 0 {
		return code
	}
	if errors.Is(err, usable.ErrDecode) {
		return http.StatusBadGateway
	}
	if errors.Is(err, cards.ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound
		}
	}
	return http.StatusInternalServerError
}
