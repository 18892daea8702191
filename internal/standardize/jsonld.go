package standardize

import (
	"encoding/json"
	"strconv"
	"strings"

	"frigo/internal/domain"
)

// extractJSONLD scans the raw JSON-LD blobs found in a page for a schema.org
// Recipe node and maps it onto the raw-text shape. Returns nil when no blob
// holds a recipe.
func extractJSONLD(blobs []string) *domain.RawRecipeText {
	for _, blob := range blobs {
		var doc interface{}
		if err := json.Unmarshal([]byte(blob), &doc); err != nil {
			continue
		}
		if node := findRecipeNode(doc); node != nil {
			return mapRecipeNode(node)
		}
	}
	return nil
}

// findRecipeNode walks a decoded JSON-LD document looking for an object whose
// @type is (or includes) "Recipe". Publishers wrap recipes in top-level
// arrays and in @graph containers, so both are traversed.
func findRecipeNode(doc interface{}) map[string]interface{} {
	switch v := doc.(type) {
	case map[string]interface{}:
		if isRecipeType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findRecipeNode(graph)
		}
	case []interface{}:
		for _, item := range v {
			if node := findRecipeNode(item); node != nil {
				return node
			}
		}
	}
	return nil
}

func isRecipeType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return strings.EqualFold(v, "Recipe")
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.EqualFold(s, "Recipe") {
				return true
			}
		}
	}
	return false
}

func mapRecipeNode(node map[string]interface{}) *domain.RawRecipeText {
	raw := &domain.RawRecipeText{
		Title:       stringField(node["name"]),
		Description: stringField(node["description"]),
		PrepTime:    stringField(node["prepTime"]),
		CookTime:    stringField(node["cookTime"]),
		TotalTime:   stringField(node["totalTime"]),
		Servings:    stringField(node["recipeYield"]),
		ImageURL:    imageField(node["image"]),
		Category:    stringField(node["recipeCategory"]),
		Cuisine:     stringField(node["recipeCuisine"]),
		Tags:        stringList(node["keywords"]),
	}

	raw.Ingredients = stringList(node["recipeIngredient"])
	if len(raw.Ingredients) == 0 {
		// Pre-2017 schema.org drafts used "ingredients".
		raw.Ingredients = stringList(node["ingredients"])
	}
	raw.Instructions = instructionList(node["recipeInstructions"])

	return raw
}

// stringField extracts a display string from a JSON-LD value that may be a
// string, a number, a {name: ...} object, or an array of any of those.
func stringField(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case map[string]interface{}:
		if name := stringField(val["name"]); name != "" {
			return name
		}
		return stringField(val["@value"])
	case []interface{}:
		for _, item := range val {
			if s := stringField(item); s != "" {
				return s
			}
		}
	}
	return ""
}

// imageField handles image values given as a URL string, an ImageObject, or
// an array of either.
func imageField(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]interface{}:
		if u := stringField(val["url"]); u != "" {
			return u
		}
		return stringField(val["contentUrl"])
	case []interface{}:
		for _, item := range val {
			if u := imageField(item); u != "" {
				return u
			}
		}
	}
	return ""
}

func stringList(v interface{}) []string {
	var out []string
	switch val := v.(type) {
	case string:
		// keywords are often a single comma-separated string
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	case []interface{}:
		for _, item := range val {
			if s := stringField(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// instructionList flattens recipeInstructions. Values appear as a plain
// string, an array of strings, HowToStep objects, or HowToSection objects
// whose itemListElement holds the steps.
func instructionList(v interface{}) []string {
	var out []string
	switch val := v.(type) {
	case string:
		for _, line := range strings.Split(val, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	case []interface{}:
		for _, item := range val {
			switch step := item.(type) {
			case string:
				if s := strings.TrimSpace(step); s != "" {
					out = append(out, s)
				}
			case map[string]interface{}:
				if nested, ok := step["itemListElement"]; ok {
					out = append(out, instructionList(nested)...)
					continue
				}
				if text := stringField(step["text"]); text != "" {
					out = append(out, text)
				} else if name := stringField(step["name"]); name != "" {
					out = append(out, name)
				}
			}
		}
	}
	return out
}

// authorField resolves the author, which may be a string, a Person object,
// or an array of Person objects.
func authorField(v interface{}) string {
	return stringField(v)
}
