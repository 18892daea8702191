package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"frigo/internal/service"
)

// BookHandler serves cookbook provenance records.
type BookHandler struct {
	bookService service.BookService
}

// NewBookHandler creates a BookHandler.
func NewBookHandler(bookService service.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// Get returns a single book by id.
func (h *BookHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	book, err := h.bookService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, book)
}

// Create registers a book so photo imports can reference it.
func (h *BookHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input service.CreateBookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	book, err := h.bookService.Create(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, book)
}
