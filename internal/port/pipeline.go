package port

import (
	"context"

	"frigo/internal/domain"
)

// SourceStandardizer turns one recipe source into the uniform intermediate
// record. The URL and photo variants are interchangeable behind this interface
// so downstream stages stay source-agnostic.
type SourceStandardizer interface {
	Standardize(ctx context.Context, job *domain.ImportJob) (*domain.StandardizedRecipeData, error)
}

// StructureOutput carries the structured result plus provider metadata.
type StructureOutput struct {
	Data  *domain.ExtractedRecipeData
	Model string
}

// RecipeStructurer converts standardized recipe text into the strict
// ExtractedRecipeData contract using a hosted LLM.
type RecipeStructurer interface {
	Structure(ctx context.Context, input *domain.StandardizedRecipeData) (*StructureOutput, error)
}

// PhotoTranscriber extracts raw recipe text from a photo via a vision model.
// Its output feeds the photo standardization adapter.
type PhotoTranscriber interface {
	Transcribe(ctx context.Context, imageBytes []byte, contentType string) (*domain.RawRecipeText, error)
}

// IngredientMatcher resolves extracted ingredient names against the catalog.
type IngredientMatcher interface {
	Match(ctx context.Context, ingredients []domain.ExtractedIngredient) ([]domain.ProcessedIngredient, error)
}

// ExtractionCache memoizes structuring results keyed by source fingerprint.
// A disabled cache is a silent no-op, never an error path.
type ExtractionCache interface {
	Get(ctx context.Context, fingerprint string) (*domain.ExtractedRecipeData, bool)
	Set(ctx context.Context, fingerprint string, data *domain.ExtractedRecipeData)
}
