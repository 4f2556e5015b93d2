package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/houzhh15/taskable/pkg/storage"
	"github.com/houzhh15/taskable/pkg/templates"
)

// reconcileBody 携带客户端保存的配置；网关不保存状态，更新后的配置在响应中返回
type reconcileBody struct {
	storage.TaskableConfig
	Force bool `json:"force"`
}

type reconcileResponse struct {
	Skipped bool                   `json:"skipped"`
	Result  *templates.Result      `json:"result,omitempty"`
	Config  storage.TaskableConfig `json:"config"`
}

// now 可在测试中替换
var now = time.Now

// TemplateStatus GET /api/templates/status?workspaceId=
func (h *Handler) TemplateStatus(c *gin.Context) {
	var q fragmentTypesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequestResponse(c, "workspaceId is required")
		return
	}
	status, err := templates.NewManager(h.client(c), h.logger).CheckStatus(c.Request.Context(), q.WorkspaceID)
	if err != nil {
		failResponse(c, "Failed to check templates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": status.Current(), "status": status})
}

// ReconcileTemplates POST /api/templates/reconcile
// 距上次检查不足 24 小时且版本一致时跳过，force 强制执行
func (h *Handler) ReconcileTemplates(c *gin.Context) {
	var body reconcileBody
	if err := c.ShouldBindJSON(&body); err != nil {
		errorResponseWithDetail(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if body.WorkspaceID == "" {
		badRequestResponse(c, "workspaceId is required")
		return
	}

	cfg := body.TaskableConfig
	t := now()
	if !body.Force && !templates.ShouldCheck(&cfg, t) {
		c.JSON(http.StatusOK, reconcileResponse{Skipped: true, Config: cfg})
		return
	}

	result, err := templates.NewManager(h.client(c), h.logger).Reconcile(c.Request.Context(), cfg.WorkspaceID, cfg.FragmentTypeID)
	if err != nil {
		failResponse(c, "Failed to reconcile templates", err)
		return
	}
	h.logger.Info("templates reconciled via gateway", "workspace_id", cfg.WorkspaceID, "user", currentUser(c))
	c.JSON(http.StatusOK, reconcileResponse{
		Result: result,
		Config: templates.SaveConfig(cfg, *result, t),
	})
}
