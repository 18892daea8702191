package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")

	ErrInvalidSourceURL     = errors.New("source URL is not a well-formed absolute URL")
	ErrExtraction           = errors.New("could not extract recipe content from source")
	ErrParse                = errors.New("structuring output was not valid recipe JSON")
	ErrMatchCatalog         = errors.New("ingredient catalog unavailable during matching")
	ErrPersistence          = errors.New("saving the recipe failed")
	ErrImportNotFound       = errors.New("import job not found")
	ErrImportNotReviewable  = errors.New("import job is not awaiting review")
	ErrImportNotRetryable   = errors.New("import job is not in a retryable state")
	ErrUnresolvedIngredient = errors.New("required ingredients are still unresolved")
	ErrInvalidTransition    = errors.New("invalid import state transition")

	ErrRecipeNotFound      = errors.New("recipe not found")
	ErrIngredientNotFound  = errors.New("ingredient not found")
	ErrBookNotFound        = errors.New("book not found")
	ErrDuplicateIngredient = errors.New("ingredient already exists in catalog")
	ErrUnsupportedPhoto    = errors.New("unsupported photo type")
	ErrPhotoTooLarge       = errors.New("photo exceeds maximum allowed size")
)

// BlockedSourceError indicates a URL matched the known non-recipe blocklist.
// It is terminal; the only recovery is supplying a different URL.
type BlockedSourceError struct {
	Domain string
}

func (e *BlockedSourceError) Error() string {
	return fmt.Sprintf("%s is a known non-recipe site and cannot be imported", e.Domain)
}

// IsBlockedSource reports whether err is a BlockedSourceError.
func IsBlockedSource(err error) bool {
	var blocked *BlockedSourceError
	return errors.As(err, &blocked)
}
