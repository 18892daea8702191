package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"frigo/internal/service"
)

// IngredientHandler handles ingredient catalog endpoints.
type IngredientHandler struct {
	catalogService service.CatalogService
}

// NewIngredientHandler creates a new IngredientHandler.
func NewIngredientHandler(catalogService service.CatalogService) *IngredientHandler {
	return &IngredientHandler{catalogService: catalogService}
}

// List handles GET /api/v1/ingredients
// With a q query parameter it searches; otherwise it returns the full catalog.
func (h *IngredientHandler) List(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	if query := c.Query("q"); query != "" {
		_, limit := pagination(c)
		results, err := h.catalogService.Search(c.Request.Context(), query, limit)
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondOK(c, results)
		return
	}

	ingredients, err := h.catalogService.ListAll(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, ingredients)
}

// ListVariants handles GET /api/v1/ingredients/:id/variants
func (h *IngredientHandler) ListVariants(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	variants, err := h.catalogService.ListVariants(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, variants)
}

// Create handles POST /api/v1/ingredients
func (h *IngredientHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input service.CreateIngredientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	ing, err := h.catalogService.Create(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, ing)
}
