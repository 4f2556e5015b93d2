// Package api implements the gateway routes: authenticated pass-through to
// the Usable API plus card and template endpoints built on pkg/cards and
// pkg/templates.
package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/houzhh15/taskable/cmd/server/internal/middleware"
	"github.com/houzhh15/taskable/pkg/usable"
)

// ClientFactory builds a Usable client that acts with the caller's token.
type ClientFactory func(accessToken string) usable.API

// NewClientFactory returns a factory for the real Usable API at baseURL.
func NewClientFactory(baseURL string, logger *slog.Logger) ClientFactory {
	return func(accessToken string) usable.API {
		return usable.NewClientWithToken(baseURL, accessToken, usable.WithLogger(logger))
	}
}

// Handler serves the /api routes. It keeps no per-request state; every
// request gets its own client.
type Handler struct {
	newClient ClientFactory
	logger    *slog.Logger
}

// NewHandler creates a Handler. A nil logger falls back to slog.Default.
func NewHandler(newClient ClientFactory, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{newClient: newClient, logger: logger}
}

// client 使用请求携带的令牌创建上游客户端
func (h *Handler) client(c *gin.Context) usable.API {
	return h.newClient(middleware.AccessToken(c))
}

// Register 注册所有需要认证的路由，rg 应已挂载 BearerAuth
func (h *Handler) Register(rg *gin.RouterGroup) {
	u := rg.Group("/usable")
	{
		u.GET("/workspaces", h.ListWorkspaces)
		u.GET("/fragment-types", h.ListFragmentTypes)
		u.GET("/fragments", h.ListFragments)
		u.POST("/fragments", h.CreateFragment)
		u.PATCH("/fragments/:id", h.UpdateFragment)
		u.DELETE("/fragments/:id", h.DeleteFragment)
		u.POST("/files/upload/request", h.RequestUpload)
		u.POST("/files/:id/attachments", h.AttachFile)
		u.GET("/files/:id/download", h.DownloadInfo)
	}

	cg := rg.Group("/cards")
	{
		cg.GET("", h.ListCards)
		cg.POST("", h.CreateCard)
		cg.GET("/collections", h.ListCollections)
		cg.GET("/:id", h.GetCard)
		cg.PATCH("/:id", h.UpdateCard)
		cg.DELETE("/:id", h.DeleteCard)
		cg.POST("/:id/items", h.AddItem)
		cg.PATCH("/:id/items/:itemId", h.UpdateItem)
		cg.DELETE("/:id/items/:itemId", h.RemoveItem)
		cg.POST("/:id/items/:itemId/toggle", h.ToggleItem)
		cg.POST("/:id/items/:itemId/subtasks", h.AddSubTask)
		cg.POST("/:id/items/:itemId/subtasks/:subTaskId/toggle", h.ToggleSubTask)
		cg.POST("/:id/items/:itemId/attachments", h.UploadAttachment)
	}

	tg := rg.Group("/templates")
	{
		tg.GET("/status", h.TemplateStatus)
		tg.POST("/reconcile", h.ReconcileTemplates)
	}
}
