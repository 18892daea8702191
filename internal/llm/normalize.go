package llm

import (
	"encoding/json"
	"fmt"
	"time"

	"frigo/internal/domain"
)

// DecodeExtraction turns raw model output into a validated ExtractedRecipeData.
// It strips code fences, enforces the required keys, re-applies the source
// fields the model is not allowed to change, fills conversions the model left
// null, and attaches the archival snapshot.
func DecodeExtraction(raw string, std *domain.StandardizedRecipeData, model string) (*domain.ExtractedRecipeData, error) {
	cleaned := StripCodeFence(raw)

	var out domain.ExtractedRecipeData
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON from %s: %v", domain.ErrParse, model, err)
	}
	applySourceFields(&out, std)
	if err := validateExtraction(&out); err != nil {
		return nil, err
	}

	fillConversions(&out, std)
	renumber(&out)

	if out.Difficulty.Level == "" || !out.Difficulty.Level.Valid() {
		out.Difficulty.Level = domain.DifficultyFromScore(out.Difficulty.Score)
	}

	stepCount := 0
	for _, sec := range out.Sections {
		stepCount += len(sec.Steps)
	}
	out.Raw = &domain.RawExtractionData{
		Source: *std,
		Summary: domain.ExtractionSummary{
			IngredientCount: len(out.Ingredients),
			SectionCount:    len(out.Sections),
			StepCount:       stepCount,
		},
		Model:         model,
		PromptVersion: PromptVersion,
		ExtractedAt:   time.Now().UTC(),
	}
	return &out, nil
}

func validateExtraction(out *domain.ExtractedRecipeData) error {
	if out.Recipe.Title == "" {
		return fmt.Errorf("%w: missing recipe title", domain.ErrParse)
	}
	if len(out.Ingredients) == 0 {
		return fmt.Errorf("%w: no ingredients extracted", domain.ErrParse)
	}
	if len(out.Sections) == 0 {
		return fmt.Errorf("%w: no instruction sections extracted", domain.ErrParse)
	}
	for _, sec := range out.Sections {
		if len(sec.Steps) == 0 {
			return fmt.Errorf("%w: section %q has no steps", domain.ErrParse, sec.Title)
		}
	}
	for i, ing := range out.Ingredients {
		if ing.IngredientName == "" {
			return fmt.Errorf("%w: ingredient %d has no name", domain.ErrParse, i+1)
		}
	}
	return nil
}

// applySourceFields overwrites the fields the model must not alter. The source
// page is authoritative for author, image, and description; the model only
// fills those when the source left them blank. The title works the other way
// round: the model's cleaned title wins, and the raw source title is only a
// fallback when the model returned none.
func applySourceFields(out *domain.ExtractedRecipeData, std *domain.StandardizedRecipeData) {
	if out.Recipe.Title == "" {
		out.Recipe.Title = std.RawText.Title
	}
	if std.Source.Author != "" {
		out.Recipe.SourceAuthor = std.Source.Author
	}
	if std.RawText.ImageURL != "" {
		out.Recipe.ImageURL = std.RawText.ImageURL
	}
	if std.RawText.Description != "" {
		out.Recipe.Description = std.RawText.Description
	}
}

func fillConversions(out *domain.ExtractedRecipeData, std *domain.StandardizedRecipeData) {
	raw := std.RawText
	if out.Recipe.PrepTimeMin == nil {
		out.Recipe.PrepTimeMin = ParseDurationMinutes(raw.PrepTime)
	}
	if out.Recipe.CookTimeMin == nil {
		out.Recipe.CookTimeMin = ParseDurationMinutes(raw.CookTime)
	}
	if out.Recipe.TotalTimeMin == nil {
		out.Recipe.TotalTimeMin = ParseDurationMinutes(raw.TotalTime)
	}
	if out.Recipe.Servings == nil {
		out.Recipe.Servings = ParseServings(raw.Servings)
	}
	for i := range out.Ingredients {
		ing := &out.Ingredients[i]
		if ing.QuantityAmount == nil && ing.QuantityUnit != "" {
			// A unit without an amount usually means the model echoed a
			// fraction it could not convert into the unit slot.
			if v := ParseQuantity(ing.QuantityUnit); v != nil {
				ing.QuantityAmount = v
				ing.QuantityUnit = ""
			}
		}
	}
}

// renumber enforces contiguous 1-based ordering regardless of what the model
// returned. Relative order is kept exactly as extracted.
func renumber(out *domain.ExtractedRecipeData) {
	for i := range out.Ingredients {
		out.Ingredients[i].SequenceOrder = i + 1
	}
	for i := range out.Sections {
		out.Sections[i].Order = i + 1
		for j := range out.Sections[i].Steps {
			out.Sections[i].Steps[j].StepNumber = j + 1
		}
	}
}

// DecodeTranscription parses vision model output into the raw-text shape used
// by the photo standardization adapter.
func DecodeTranscription(raw string) (*domain.RawRecipeText, error) {
	cleaned := StripCodeFence(raw)

	var out domain.RawRecipeText
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("%w: invalid transcription JSON: %v", domain.ErrParse, err)
	}
	return &out, nil
}
