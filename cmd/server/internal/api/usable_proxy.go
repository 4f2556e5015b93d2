package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/houzhh15/taskable/pkg/usable"
)

type fragmentTypesQuery struct {
	WorkspaceID string `form:"workspaceId" binding:"required"`
}

type listFragmentsQuery struct {
	WorkspaceID    string   `form:"workspaceId" binding:"required"`
	FragmentTypeID string   `form:"fragmentTypeId"`
	Tags           []string `form:"tags"`
	Limit          int      `form:"limit" binding:"omitempty,min=1,max=1000"`
	Offset         int      `form:"offset" binding:"omitempty,min=0"`
}

type createFragmentBody struct {
	WorkspaceID    string   `json:"workspaceId" binding:"required"`
	FragmentTypeID string   `json:"fragmentTypeId" binding:"required"`
	Title          string   `json:"title" binding:"required"`
	Content        string   `json:"content"`
	Summary        string   `json:"summary"`
	Tags           []string `json:"tags"`
}

type uploadRequestBody struct {
	WorkspaceID string   `json:"workspaceId" binding:"required"`
	FileName    string   `json:"fileName" binding:"required"`
	MimeType    string   `json:"mimeType" binding:"required"`
	SizeBytes   int64    `json:"sizeBytes" binding:"required,gt=0"`
	Tags        []string `json:"tags"`
}

type attachBody struct {
	FragmentID  string `json:"fragmentId" binding:"required"`
	Description string `json:"description"`
}

// ListWorkspaces GET /api/usable/workspaces
func (h *Handler) ListWorkspaces(c *gin.Context) {
	list, err := h.client(c).ListWorkspaces(c.Request.Context())
	if err != nil {
		failResponse(c, "Failed to fetch workspaces", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListFragmentTypes GET /api/usable/fragment-types?workspaceId=
func (h *Handler) ListFragmentTypes(c *gin.Context) {
	var q fragmentTypesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequestResponse(c, "workspaceId is required")
		return
	}
	types, err := h.client(c).ListFragmentTypes(c.Request.Context(), q.WorkspaceID)
	if err != nil {
		failResponse(c, "Failed to fetch fragment types", err)
		return
	}
	c.JSON(http.StatusOK, types)
}

// ListFragments GET /api/usable/fragments
func (h *Handler) ListFragments(c *gin.Context) {
	var q listFragmentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		errorResponseWithDetail(c, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	fragments, err := h.client(c).ListFragments(c.Request.Context(), usable.ListParams{
		WorkspaceID:    q.WorkspaceID,
		FragmentTypeID: q.FragmentTypeID,
		Tags:           q.Tags,
		Limit:          q.Limit,
		Offset:         q.Offset,
	})
	if err != nil {
		failResponse(c, "Failed to fetch fragments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fragments": fragments})
}

// CreateFragment POST /api/usable/fragments
func (h *Handler) CreateFragment(c *gin.Context) {
	var body createFragmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		errorResponseWithDetail(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	f, err := h.client(c).CreateFragment(c.Request.Context(), usable.CreateFragmentInput{
		WorkspaceID:    body.WorkspaceID,
		FragmentTypeID: body.FragmentTypeID,
		Title:          body.Title,
		Content:        body.Content,
		Summary:        body.Summary,
		Tags:           body.Tags,
	})
	if err != nil {
		failResponse(c, "Failed to create fragment", err)
		return
	}
	h.logger.Info("fragment created", "fragment_id", f.ID, "user", currentUser(c))
	c.JSON(http.StatusOK, f)
}

// UpdateFragment PATCH /api/usable/fragments/:id
func (h *Handler) UpdateFragment(c *gin.Context) {
	var patch usable.FragmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		errorResponseWithDetail(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	f, err := h.client(c).UpdateFragment(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		failResponse(c, "Failed to update fragment", err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// DeleteFragment DELETE /api/usable/fragments/:id
func (h *Handler) DeleteFragment(c *gin.Context) {
	if err := h.client(c).DeleteFragment(c.Request.Context(), c.Param("id")); err != nil {
		failResponse(c, "Failed to delete fragment", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestUpload POST /api/usable/files/upload/request
func (h *Handler) RequestUpload(c *gin.Context) {
	var body uploadRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		errorResponseWithDetail(c, http.StatusBadRequest, "Missing required fields", err.Error())
		return
	}
	tags := body.Tags
	if tags == nil {
		tags = []string{}
	}
	ticket, err := h.client(c).RequestUpload(c.Request.Context(), usable.UploadRequest{
		WorkspaceID: body.WorkspaceID,
		FileName:    body.FileName,
		MimeType:    body.MimeType,
		SizeBytes:   body.SizeBytes,
		Tags:        tags,
	})
	if err != nil {
		failResponse(c, "Failed to request upload URL", err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// AttachFile POST /api/usable/files/:id/attachments
func (h *Handler) AttachFile(c *gin.Context) {
	var body attachBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequestResponse(c, "Missing required field: fragmentId")
		return
	}
	fileID := c.Param("id")
	if err := h.client(c).AttachToFragment(c.Request.Context(), fileID, body.FragmentID, body.Description); err != nil {
		failResponse(c, "Failed to attach file to fragment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fileId": fileID, "fragmentId": body.FragmentID})
}

// DownloadInfo GET /api/usable/files/:id/download
func (h *Handler) DownloadInfo(c *gin.Context) {
	meta, err := h.client(c).DownloadInfo(c.Request.Context(), c.Param("id"))
	if err != nil {
		failResponse(c, "Failed to get download URL", err)
		return
	}
	c.JSON(http.StatusOK, meta)
}
