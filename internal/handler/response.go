package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"frigo/internal/domain"
	"frigo/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var blocked *domain.BlockedSourceError
	if errors.As(err, &blocked) {
		return http.StatusUnprocessableEntity, "BLOCKED_SOURCE", blocked.Error()
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusForbidden, "USER_INACTIVE", "user is inactive"
	case errors.Is(err, domain.ErrInvalidSourceURL):
		return http.StatusBadRequest, "INVALID_URL", "source URL is not a well-formed absolute URL"
	case errors.Is(err, domain.ErrExtraction):
		return http.StatusUnprocessableEntity, "EXTRACTION_FAILED", "could not extract recipe content from source"
	case errors.Is(err, domain.ErrParse):
		return http.StatusUnprocessableEntity, "PARSE_FAILED", "could not structure the recipe content"
	case errors.Is(err, domain.ErrImportNotFound):
		return http.StatusNotFound, "IMPORT_NOT_FOUND", "import job not found"
	case errors.Is(err, domain.ErrImportNotReviewable):
		return http.StatusConflict, "IMPORT_NOT_REVIEWABLE", "import job is not awaiting review"
	case errors.Is(err, domain.ErrImportNotRetryable):
		return http.StatusConflict, "IMPORT_NOT_RETRYABLE", "import job is not in a retryable state"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_STATE", "operation not allowed in the job's current state"
	case errors.Is(err, domain.ErrUnresolvedIngredient):
		return http.StatusConflict, "UNRESOLVED_INGREDIENTS", "required ingredients are still unresolved"
	case errors.Is(err, domain.ErrRecipeNotFound):
		return http.StatusNotFound, "RECIPE_NOT_FOUND", "recipe not found"
	case errors.Is(err, domain.ErrIngredientNotFound):
		return http.StatusNotFound, "INGREDIENT_NOT_FOUND", "ingredient not found"
	case errors.Is(err, domain.ErrBookNotFound):
		return http.StatusNotFound, "BOOK_NOT_FOUND", "book not found"
	case errors.Is(err, domain.ErrDuplicateIngredient):
		return http.StatusConflict, "DUPLICATE_INGREDIENT", "ingredient already exists in catalog"
	case errors.Is(err, domain.ErrUnsupportedPhoto):
		return http.StatusBadRequest, "UNSUPPORTED_PHOTO_TYPE", "unsupported photo type; allowed: jpeg, png"
	case errors.Is(err, domain.ErrPhotoTooLarge):
		return http.StatusRequestEntityTooLarge, "PHOTO_TOO_LARGE", "photo exceeds maximum allowed size"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// currentUserID extracts the authenticated user from the request context.
// Returns false if auth context is missing (error response already written).
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return uuid.Nil, false
	}
	return userID, true
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
