package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecipeSource identifies where a standardized recipe came from.
type RecipeSource struct {
	Type     SourceType `json:"type"`
	URL      string     `json:"url,omitempty"`
	PhotoKey string     `json:"photo_key,omitempty"`
	SiteName string     `json:"site_name,omitempty"`
	Author   string     `json:"author,omitempty"`
}

// RawRecipeText holds the uniform free-text fields produced by a
// standardization adapter, regardless of source type.
type RawRecipeText struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
	PrepTime        string   `json:"prep_time"`
	CookTime        string   `json:"cook_time"`
	TotalTime       string   `json:"total_time"`
	Servings        string   `json:"servings"`
	ImageURL        string   `json:"image_url"`
	Notes           string   `json:"notes"`
	IngredientSwaps string   `json:"ingredient_swaps"`
	StorageNotes    string   `json:"storage_notes"`
	Category        string   `json:"category"`
	Cuisine         string   `json:"cuisine"`
	Tags            []string `json:"tags"`
}

// StandardizedRecipeData is the source-agnostic intermediate record handed to
// the structuring engine. It is constructed once per extraction attempt and
// never mutated afterwards.
type StandardizedRecipeData struct {
	Source  RecipeSource  `json:"source"`
	RawText RawRecipeText `json:"raw_text"`
}

// Complete reports whether the adapter actually found a recipe. Empty
// ingredients or instructions signal extraction failure, not an empty recipe.
func (s *StandardizedRecipeData) Complete() bool {
	return len(s.RawText.Ingredients) > 0 && len(s.RawText.Instructions) > 0
}

// RecipeCore is the normalized recipe metadata in the structured output.
type RecipeCore struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	SourceAuthor    string   `json:"source_author"`
	ImageURL        string   `json:"image_url"`
	Servings        *int     `json:"servings"`
	PrepTimeMin     *int     `json:"prep_time_min"`
	CookTimeMin     *int     `json:"cook_time_min"`
	InactiveTimeMin *int     `json:"inactive_time_min"`
	TotalTimeMin    *int     `json:"total_time_min"`
	CuisineTypes    []string `json:"cuisine_types"`
	MealTypes       []string `json:"meal_type"`
	DietaryTags     []string `json:"dietary_tags"`
	CookingMethods  []string `json:"cooking_methods"`
}

// DifficultyAssessment is the model's difficulty estimate for a recipe.
type DifficultyAssessment struct {
	Level     DifficultyLevel `json:"difficulty_level"`
	Score     int             `json:"difficulty_score"`
	Factors   []string        `json:"contributing_factors"`
	Reasoning string          `json:"reasoning"`
}

// ExtractedIngredient is one parsed ingredient line item.
type ExtractedIngredient struct {
	OriginalText   string   `json:"original_text"`
	QuantityAmount *float64 `json:"quantity_amount"`
	QuantityUnit   string   `json:"quantity_unit"`
	IngredientName string   `json:"ingredient_name"`
	Preparation    string   `json:"preparation"`
	SequenceOrder  int      `json:"sequence_order"`
	IsOptional     bool     `json:"is_optional"`
}

// ExtractedStep is one instruction step inside a section.
type ExtractedStep struct {
	StepNumber      int    `json:"step_number"`
	Instruction     string `json:"instruction"`
	IsOptional      bool   `json:"is_optional"`
	IsTimeSensitive bool   `json:"is_time_sensitive"`
}

// ExtractedSection is a titled group of 1-8 instruction steps.
type ExtractedSection struct {
	Title            string          `json:"section_title"`
	Description      string          `json:"section_description"`
	Order            int             `json:"section_order"`
	EstimatedTimeMin *int            `json:"estimated_time_min"`
	Steps            []ExtractedStep `json:"steps"`
}

// ExtractionSummary condenses a parsed result for the archival snapshot.
type ExtractionSummary struct {
	IngredientCount int `json:"ingredient_count"`
	SectionCount    int `json:"section_count"`
	StepCount       int `json:"step_count"`
}

// RawExtractionData is a write-once archival snapshot of the standardized
// input and a summary of the parsed output, retained for future re-parsing.
type RawExtractionData struct {
	Source        StandardizedRecipeData `json:"source"`
	Summary       ExtractionSummary      `json:"summary"`
	Model         string                 `json:"model"`
	PromptVersion string                 `json:"prompt_version"`
	ExtractedAt   time.Time              `json:"extracted_at"`
}

// ExtractedRecipeData is the strictly-typed JSON document produced by the
// structuring engine.
type ExtractedRecipeData struct {
	Recipe      RecipeCore            `json:"recipe"`
	Difficulty  DifficultyAssessment  `json:"ai_difficulty_assessment"`
	Ingredients []ExtractedIngredient `json:"ingredients"`
	Sections    []ExtractedSection    `json:"instruction_sections"`
	Raw         *RawExtractionData    `json:"raw_extraction_data,omitempty"`
}

// ProcessedIngredient extends an extracted line item with its catalog match.
// A nil IngredientID means unresolved; NeedsReview is set whenever resolution
// requires user confirmation.
type ProcessedIngredient struct {
	ExtractedIngredient
	IngredientID *uuid.UUID  `json:"ingredient_id"`
	NeedsReview  bool        `json:"needs_review"`
	Confidence   float64     `json:"match_confidence"`
	Candidates   []uuid.UUID `json:"candidate_ids,omitempty"`
}

// ProcessedRecipe is the terminal in-memory aggregate prior to persistence.
type ProcessedRecipe struct {
	Extracted        ExtractedRecipeData   `json:"extracted"`
	Ingredients      []ProcessedIngredient `json:"ingredients_with_matches"`
	BookID           *uuid.UUID            `json:"book_id,omitempty"`
	OwnershipPending bool                  `json:"ownership_pending"`
}

// UnresolvedRequired returns the sequence orders of required (non-optional)
// ingredients that still have no catalog id. Save is blocked until it is empty.
func (p *ProcessedRecipe) UnresolvedRequired() []int {
	var unresolved []int
	for _, ing := range p.Ingredients {
		if ing.IngredientID == nil && !ing.IsOptional {
			unresolved = append(unresolved, ing.SequenceOrder)
		}
	}
	return unresolved
}
