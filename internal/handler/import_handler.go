package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"frigo/internal/service"
)

// ImportHandler handles recipe import pipeline endpoints.
type ImportHandler struct {
	importService service.ImportService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importService service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// CreateFromURL handles POST /api/v1/imports
func (h *ImportHandler) CreateFromURL(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input service.CreateURLImportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.importService.CreateFromURL(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	if result.Job == nil {
		// Soft heuristic warning; caller must confirm and resubmit.
		RespondOK(c, result)
		return
	}
	RespondCreated(c, result)
}

// CreateFromPhoto handles POST /api/v1/imports/photo
func (h *ImportHandler) CreateFromPhoto(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_PHOTO", "photo field is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_PHOTO", "could not read uploaded photo")
		return
	}

	input := service.CreatePhotoImportInput{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	}
	if bookIDStr := c.PostForm("book_id"); bookIDStr != "" {
		bookID, parseErr := uuid.Parse(bookIDStr)
		if parseErr != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid book_id format")
			return
		}
		input.BookID = &bookID
	}

	job, err := h.importService.CreateFromPhoto(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, job)
}

// Get handles GET /api/v1/imports/:id
func (h *ImportHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	job, err := h.importService.Get(c.Request.Context(), userID, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// List handles GET /api/v1/imports
func (h *ImportHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	jobs, total, err := h.importService.List(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, jobs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// UpdateTitle handles PATCH /api/v1/imports/:id/title
func (h *ImportHandler) UpdateTitle(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	job, err := h.importService.UpdateTitle(c.Request.Context(), userID, id, input.Title)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// ResolveIngredient handles PUT /api/v1/imports/:id/ingredients/:index
func (h *ImportHandler) ResolveIngredient(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid ingredient index")
		return
	}

	var input service.ResolveIngredientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	job, err := h.importService.ResolveIngredient(c.Request.Context(), userID, id, index, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// Save handles POST /api/v1/imports/:id/save
func (h *ImportHandler) Save(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	recipeID, err := h.importService.Save(c.Request.Context(), userID, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, gin.H{"recipe_id": recipeID})
}

// Cancel handles DELETE /api/v1/imports/:id
func (h *ImportHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.importService.Cancel(c.Request.Context(), userID, id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "import canceled"})
}

// Retry handles POST /api/v1/imports/:id/retry
func (h *ImportHandler) Retry(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	job, err := h.importService.Retry(c.Request.Context(), userID, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// pathUUID parses a UUID path parameter, writing a 400 on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// pagination parses offset/limit query parameters with sane defaults.
func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}
