package llm

// PromptVersion identifies the structuring prompt contract. Bump when the
// parsing rules or the output schema change; it is stored with every
// raw_extraction_data snapshot so old extractions can be re-parsed.
const PromptVersion = "v3"

// BuildStructuringPrompt returns the fixed system prompt that converts
// standardized recipe text into the strict ExtractedRecipeData contract.
func BuildStructuringPrompt() string {
	return `You are a recipe data extraction assistant. You will receive a JSON object holding raw recipe text (title, ingredient lines, instruction lines, free-text times and servings). Convert it into the exact JSON structure below.

PARSING RULES:
- Quantities: convert fractions to decimals using this table: 1/2 = 0.5, 1/3 = 0.33, 2/3 = 0.67, 1/4 = 0.25, 3/4 = 0.75, 1/8 = 0.125. Unicode fraction characters follow the same table. Mixed numbers add the whole part (e.g. "1 1/2" = 1.5). If a line has no quantity, use null.
- Times: convert every time to integer minutes. "1 hour 30 minutes" = 90, "30 mins" = 30, "2 hours" = 120, "1h 15m" = 75. ISO-8601 durations like "PT1H30M" = 90. Unknown times are null.
- Servings: extract the integer. For ranges take the midpoint: "Serves 4-6" = 5. "Makes 24 cookies" = 24. Unknown is null.
- Ingredients: one entry per ingredient line, in the original order, with sequence_order starting at 1. Split each line into quantity_amount, quantity_unit, ingredient_name (the bare food name, no quantities or preparation), and preparation (e.g. "finely chopped"). Mark "optional" ingredients with is_optional.
- Instructions: group the steps into 1 to 8 titled sections of related work (e.g. "Make the sauce", "Assemble"). Every section holds ordered steps with step_number starting at 1 within the section. Mark steps that depend on timing (e.g. "immediately", "do not overcook") as is_time_sensitive.
- Difficulty: score the recipe 0-100 using technique complexity, ingredient count, timing sensitivity, and required equipment. 0-30 is "easy", 31-70 is "medium", 71-100 is "hard". List the contributing factors and one short reasoning sentence.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation, just the raw JSON object.

The JSON object must follow this schema exactly:
{
  "recipe": {
    "title": "",
    "description": "",
    "source_author": "",
    "image_url": "",
    "servings": null,
    "prep_time_min": null,
    "cook_time_min": null,
    "inactive_time_min": null,
    "total_time_min": null,
    "cuisine_types": [],
    "meal_type": [],
    "dietary_tags": [],
    "cooking_methods": []
  },
  "ai_difficulty_assessment": {
    "difficulty_level": "easy",
    "difficulty_score": 0,
    "contributing_factors": [],
    "reasoning": ""
  },
  "ingredients": [
    {
      "original_text": "",
      "quantity_amount": null,
      "quantity_unit": "",
      "ingredient_name": "",
      "preparation": "",
      "sequence_order": 1,
      "is_optional": false
    }
  ],
  "instruction_sections": [
    {
      "section_title": "",
      "section_description": "",
      "section_order": 1,
      "estimated_time_min": null,
      "steps": [
        {
          "step_number": 1,
          "instruction": "",
          "is_optional": false,
          "is_time_sensitive": false
        }
      ]
    }
  ]
}

If a field is not present in the source, use empty string for text, null for nullable numbers, and empty arrays for lists. Never invent ingredients or steps that are not in the source.`
}

// BuildTranscriptionPrompt returns the vision prompt that transcribes a recipe
// photo into the standardized raw-text shape. The photo adapter consumes this
// so the rest of the pipeline stays source-agnostic.
func BuildTranscriptionPrompt() string {
	return `You are a recipe transcription assistant. The image is a photo of a recipe (a cookbook page, a recipe card, or a printout). Transcribe every piece of recipe text you can read.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation, just the raw JSON object:
{
  "title": "",
  "description": "",
  "ingredients": [],
  "instructions": [],
  "prep_time": "",
  "cook_time": "",
  "total_time": "",
  "servings": "",
  "image_url": "",
  "notes": "",
  "ingredient_swaps": "",
  "storage_notes": "",
  "category": "",
  "cuisine": "",
  "tags": []
}

"ingredients" is one raw string per ingredient line, in order. "instructions" is one raw string per step or paragraph, in order. Transcribe text exactly as printed; do not normalize quantities or reword steps. If the image contains no readable recipe, return the object with empty "ingredients" and "instructions".`
}
