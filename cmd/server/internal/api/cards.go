package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/houzhh15/taskable/pkg/cards"
)

// cardScope 卡片路由通过查询参数指定工作区与卡片片段类型
type cardScope struct {
	WorkspaceID    string `form:"workspaceId" binding:"required"`
	FragmentTypeID string `form:"fragmentTypeId"`
}

type listCardsQuery struct {
	Collection string `form:"collection"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=1000"`
	Offset     int    `form:"offset" binding:"omitempty,min=0"`
}

type addItemBody struct {
	Text        string  `json:"text" binding:"required"`
	Description *string `json:"description"`
}

type updateItemBody struct {
	Text        *string      `json:"text"`
	Description *string      `json:"description"`
	Links       []cards.Link `json:"links"`
}

type addSubTaskBody struct {
	Text string `json:"text" binding:"required"`
}

// cardService 解析作用域并创建卡片服务，失败时已写入响应
func (h *Handler) cardService(c *gin.Context) (*cards.Service, bool) {
	var scope cardScope
	if err := c.ShouldBindQuery(&scope); err != nil {
		badRequestResponse(c, "workspaceId is required")
		return nil, false
	}
	return cards.NewService(h.client(c), scope.WorkspaceID, scope.FragmentTypeID, h.logger), true
}

// loadCard 读取路径中的卡片
func (h *Handler) loadCard(c *gin.Context) (*cards.Service, *cards.Card, bool) {
	svc, ok := h.cardService(c)
	if !ok {
		return nil, nil, false
	}
	card, err := svc.GetCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		failResponse(c, "Failed to load card", err)
		return nil, nil, false
	}
	return svc, card, true
}

// ListCards GET /api/cards
func (h *Handler) ListCards(c *gin.Context) {
	svc, ok := h.cardService(c)
	if !ok {
		return
	}
	var q listCardsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		errorResponseWithDetail(c, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	list, err := svc.ListCards(c.Request.Context(), cards.ListOptions{Collection: q.Collection, Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		failResponse(c, "Failed to fetch cards", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListCollections GET /api/cards/collections
func (h *Handler) ListCollections(c *gin.Context) {
	svc, ok := h.cardService(c)
	if !ok {
		return
	}
	names, err := svc.Collections(c.Request.Context())
	if err != nil {
		failResponse(c, "Failed to fetch collections", err)
		return
	}
	c.JSON(http.StatusOK, names)
}

// CreateCard POST /api/cards
func (h *Handler) CreateCard(c *gin.Context) {
	svc, ok := h.cardService(c)
	if !ok {
		return
	}
	if c.Query("fragmentTypeId") == "" {
		badRequestResponse(c, "fragmentTypeId is required")
		return
	}
	var in cards.CreateCardInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errorResponseWithDetail(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	card, err := svc.CreateCard(c.Request.Context(), in)
	if err != nil {
		failResponse(c, "Failed to create card", err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

// GetCard GET /api/cards/:id
func (h *Handler) GetCard(c *gin.Context) {
	_, card, ok := h.loadCard(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, card)
}

// UpdateCard PATCH /api/cards/:id
func (h *Handler) UpdateCard(c *gin.Context) {
	svc, ok := h.cardService(c)
	if !ok {
		return
	}
	var in cards.UpdateCardInput
	if err := c.ShouldBindJSON(&in); err != nil {
		errorResponseWithDetail(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	in.ID = c.Param("id")
	card, err := svc.UpdateCard(c.Request.Context(), in)
	if err != nil {
		failResponse(c, "Failed to update card", err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// DeleteCard DELETE /api/cards/:id
func (h *Handler) DeleteCard(c *gin.Context) {
	svc, ok := h.cardService(c)
	if !ok {
		return
	}
	if err := svc.DeleteCard(c.Request.Context(), c.Param("id")); err != nil {
		failResponse(c, "Failed to delete card", err)
		return
	}
	h.logger.Info("card deleted via gateway", "card_id", c.Param("id"), "user", currentUser(c))
	c.Status(http.StatusNoContent)
}

// AddItem POST /api/cards/:id/items
func (h *Handler) AddItem(c *gin.Context) {
	var body addItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequestResponse(c, "text is required")
		return
	}
	svc, card, ok := h.loadCard(c)
	if !ok {
		return
	}
	item := cards.NewItem(body.Text)
	item.Description = body.Description
	updated, err := svc.AddItem(c.Request.Context(), *card, item)
	if err != nil {
		failResponse(c, "Failed to add item", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UpdateItem PATCH /api/cards/:id/items/:itemId
// description 为空字符串时清除描述，links 整体替换
func (h *Handler) UpdateItem(c *gin.Context) {
	var body updateItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		errorResponseWithDetail(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	svc, card, ok := h.loadCard(c)
	if !ok {
		return
	}
	updated, err := svc.UpdateItem(c.Request.Context(), *card, c.Param("itemId"), func(it *cards.Item) {
		if body.Text != nil {
			it.Text = *body.Text
		}
		if body.Description != nil {
			if *body.Description == "" {
				it.Description = nil
			} else {
				it.Description = body.Description
			}
		}
		if body.Links != nil {
			links := make([]cards.Link, 0, len(body.Links))
			for _, l := range body.Links {
				if l.ID == "" {
					l = cards.NewLink(l.URL, l.Title)
				}
				links = append(links, l)
			}
			it.Links = links
		}
	})
	if err != nil {
		failResponse(c, "Failed to update item", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// RemoveItem DELETE /api/cards/:id/items/:itemId
func (h *Handler) RemoveItem(c *gin.Context) {
	svc, card, ok := h.loadCard(c)
	if !ok {
		return
	}
	updated, err := svc.RemoveItem(c.Request.Context(), *card, c.Param("itemId"))
	if err != nil {
		failResponse(c, "Failed to remove item", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ToggleItem POST /api/cards/:id/items/:itemId/toggle
func (h *Handler) ToggleItem(c *gin.Context) {
	svc, card, ok := h.loadCard(c)
	if !ok {
		return
	}
	updated, err := svc.ToggleItem(c.Request.Context(), *card, c.Param("itemId"))
	if err != nil {
		failResponse(c, "Failed to toggle item", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// AddSubTask POST /api/cards/:id/items/:itemId/subtasks
func (h *Handler) AddSubTask(c *gin.Context) {
	var body addSubTaskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequestResponse(c, "text is required")
		return
	}
	svc, card, ok := h.loadCard(c)
	if !ok {
		return
	}
	st := cards.NewSubTask(body.Text)
	updated, err := svc.UpdateItem(c.Request.Context(), *card, c.Param("itemId"), func(it *cards.Item) {
		subTasks := make([]cards.SubTask, 0, len(it.SubTasks)+1)
		subTasks = append(subTasks, it.SubTasks...)
		it.SubTasks = append(subTasks, st)
	})
	if err != nil {
		failResponse(c, "Failed to add sub-task", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ToggleSubTask POST /api/cards/:id/items/:itemId/subtasks/:subTaskId/toggle
func (h *Handler) ToggleSubTask(c *gin.Context) {
	svc, card, ok := h.loadCard(c)
	if !ok {
		return
	}
	updated, err := svc.ToggleSubTask(c.Request.Context(), *card, c.Param("itemId"), c.Param("subTaskId"))
	if err != nil {
		failResponse(c, "Failed to toggle sub-task", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UploadAttachment POST /api/cards/:id/items/:itemId/attachments (multipart, 字段 file)
func (h *Handler) UploadAttachment(c *gin.Context) {
	// multipart 开销之外最多多读 1MB
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cards.MaxFileSize+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		errorResponseWithDetail(c, http.StatusBadRequest, "file is required", err.Error())
		return
	}
	f, err := fh.Open()
	if err != nil {
		failResponse(c, "Failed to read file", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, cards.MaxFileSize+1))
	if err != nil {
		failResponse(c, "Failed to read file", err)
		return
	}

	in := cards.NewFileInput(fh.Filename, data)
	if err := cards.ValidateFile(in.Name, in.MimeType, in.Size); err != nil {
		failResponse(c, "Invalid file", err)
		return
	}

	svc, card, ok := h.loadCard(c)
	if !ok {
		return
	}
	updated, err := svc.AttachFile(c.Request.Context(), h.client(c), *card, c.Param("itemId"), in)
	if err != nil {
		failResponse(c, "Failed to attach file", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
