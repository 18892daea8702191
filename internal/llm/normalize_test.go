package llm_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frigo/internal/domain"
	"frigo/internal/llm"
)

func stdFixture() *domain.StandardizedRecipeData {
	return &domain.StandardizedRecipeData{
		Source: domain.RecipeSource{
			Type:     domain.SourceTypeURL,
			URL:      "https://example.com/lemon-pasta",
			SiteName: "example.com",
			Author:   "Jane Cook",
		},
		RawText: domain.RawRecipeText{
			Title:        "Lemon Pasta",
			Description:  "A bright weeknight pasta.",
			Ingredients:  []string{"200g spaghetti", "1 lemon"},
			Instructions: []string{"Boil pasta.", "Toss with lemon."},
			PrepTime:     "10 mins",
			CookTime:     "15 mins",
			Servings:     "Serves 2-4",
			ImageURL:     "https://example.com/lemon.jpg",
		},
	}
}

const validExtraction = `{
  "recipe": {
    "title": "Zesty Lemon Spaghetti",
    "description": "",
    "source_author": "",
    "image_url": "",
    "servings": null,
    "prep_time_min": null,
    "cook_time_min": 15,
    "cuisine_types": ["italian"],
    "meal_type": ["dinner"]
  },
  "ai_difficulty_assessment": {
    "difficulty_level": "",
    "difficulty_score": 25,
    "contributing_factors": ["few ingredients"],
    "reasoning": "Simple boil and toss."
  },
  "ingredients": [
    {"original_text": "200g spaghetti", "quantity_amount": 200, "quantity_unit": "g", "ingredient_name": "spaghetti", "sequence_order": 5},
    {"original_text": "1 lemon", "quantity_amount": 1, "quantity_unit": "", "ingredient_name": "lemon", "sequence_order": 9}
  ],
  "instruction_sections": [
    {"section_title": "Cook", "section_order": 3, "steps": [
      {"step_number": 7, "instruction": "Boil pasta."},
      {"step_number": 9, "instruction": "Toss with lemon."}
    ]}
  ]
}`

func TestDecodeExtraction_SourceFieldsWin(t *testing.T) {
	std := stdFixture()

	out, err := llm.DecodeExtraction(validExtraction, std, "claude-sonnet-4-20250514")
	require.NoError(t, err)

	assert.Equal(t, "Jane Cook", out.Recipe.SourceAuthor)
	assert.Equal(t, "https://example.com/lemon.jpg", out.Recipe.ImageURL)
	assert.Equal(t, "A bright weeknight pasta.", out.Recipe.Description)
}

func TestDecodeExtraction_ModelTitleWinsOverRawPageTitle(t *testing.T) {
	std := stdFixture()
	std.RawText.Title = "Lemon Pasta Recipe | Example Kitchen"

	out, err := llm.DecodeExtraction(validExtraction, std, "claude-sonnet-4-20250514")
	require.NoError(t, err)

	assert.Equal(t, "Zesty Lemon Spaghetti", out.Recipe.Title)
}

func TestDecodeExtraction_SourceTitleFallsBackWhenModelOmitsIt(t *testing.T) {
	std := stdFixture()
	body := strings.Replace(validExtraction, `"title": "Zesty Lemon Spaghetti"`, `"title": ""`, 1)

	out, err := llm.DecodeExtraction(body, std, "gpt-4o")
	require.NoError(t, err)

	assert.Equal(t, "Lemon Pasta", out.Recipe.Title)
}

func TestDecodeExtraction_FillsConversionsFromRawText(t *testing.T) {
	std := stdFixture()

	out, err := llm.DecodeExtraction(validExtraction, std, "gpt-4o")
	require.NoError(t, err)

	require.NotNil(t, out.Recipe.PrepTimeMin)
	assert.Equal(t, 10, *out.Recipe.PrepTimeMin)
	require.NotNil(t, out.Recipe.CookTimeMin)
	assert.Equal(t, 15, *out.Recipe.CookTimeMin, "model value kept when present")
	require.NotNil(t, out.Recipe.Servings)
	assert.Equal(t, 3, *out.Recipe.Servings)
}

func TestDecodeExtraction_RenumbersAndBucketsDifficulty(t *testing.T) {
	std := stdFixture()

	out, err := llm.DecodeExtraction(validExtraction, std, "gpt-4o")
	require.NoError(t, err)

	assert.Equal(t, 1, out.Ingredients[0].SequenceOrder)
	assert.Equal(t, 2, out.Ingredients[1].SequenceOrder)
	assert.Equal(t, 1, out.Sections[0].Order)
	assert.Equal(t, 1, out.Sections[0].Steps[0].StepNumber)
	assert.Equal(t, 2, out.Sections[0].Steps[1].StepNumber)

	assert.Equal(t, domain.DifficultyEasy, out.Difficulty.Level)
}

func TestDecodeExtraction_AttachesRawSnapshot(t *testing.T) {
	std := stdFixture()

	out, err := llm.DecodeExtraction(validExtraction, std, "gpt-4o")
	require.NoError(t, err)

	require.NotNil(t, out.Raw)
	assert.Equal(t, *std, out.Raw.Source)
	assert.Equal(t, 2, out.Raw.Summary.IngredientCount)
	assert.Equal(t, 1, out.Raw.Summary.SectionCount)
	assert.Equal(t, 2, out.Raw.Summary.StepCount)
	assert.Equal(t, "gpt-4o", out.Raw.Model)
	assert.Equal(t, llm.PromptVersion, out.Raw.PromptVersion)
	assert.False(t, out.Raw.ExtractedAt.IsZero())
}

func TestDecodeExtraction_StripsFence(t *testing.T) {
	std := stdFixture()

	out, err := llm.DecodeExtraction("```json\n"+validExtraction+"\n```", std, "gpt-4o")
	require.NoError(t, err)
	assert.Len(t, out.Ingredients, 2)
}

func TestDecodeExtraction_InvalidJSON(t *testing.T) {
	_, err := llm.DecodeExtraction("not json at all", stdFixture(), "gpt-4o")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))
}

func TestDecodeExtraction_MissingRequiredKeys(t *testing.T) {
	cases := map[string]string{
		"no ingredients": `{"recipe":{"title":"T"},"ingredients":[],"instruction_sections":[{"section_title":"A","steps":[{"instruction":"x"}]}]}`,
		"no sections":    `{"recipe":{"title":"T"},"ingredients":[{"ingredient_name":"x"}],"instruction_sections":[]}`,
		"empty section":  `{"recipe":{"title":"T"},"ingredients":[{"ingredient_name":"x"}],"instruction_sections":[{"section_title":"A","steps":[]}]}`,
		"unnamed item":   `{"recipe":{"title":"T"},"ingredients":[{"original_text":"x"}],"instruction_sections":[{"section_title":"A","steps":[{"instruction":"x"}]}]}`,
	}
	for name, body := range cases {
		std := stdFixture()
		_, err := llm.DecodeExtraction(body, std, "gpt-4o")
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, domain.ErrParse), name)
	}
}

func TestDecodeTranscription(t *testing.T) {
	raw := "```json\n{\"title\":\"Grandma's Stew\",\"ingredients\":[\"1 lb beef\"],\"instructions\":[\"Brown the beef.\"]}\n```"
	out, err := llm.DecodeTranscription(raw)
	require.NoError(t, err)
	assert.Equal(t, "Grandma's Stew", out.Title)
	assert.Equal(t, []string{"1 lb beef"}, out.Ingredients)

	_, err = llm.DecodeTranscription("nope")
	assert.True(t, errors.Is(err, domain.ErrParse))
}
