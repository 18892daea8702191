package match

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"

	"frigo/internal/domain"
	"frigo/internal/port"
)

// Confidence thresholds. Scores at or above autoResolve bind the catalog id
// without review; between review and autoResolve the id is bound but flagged;
// below review the line stays unresolved with suggestions only.
const (
	autoResolveConfidence = 0.90
	reviewConfidence      = 0.60
	maxCandidates         = 5
)

// CatalogMatcher resolves extracted ingredient names against the canonical
// catalog. It implements port.IngredientMatcher.
type CatalogMatcher struct {
	ingredients port.IngredientRepository
}

// NewCatalogMatcher creates a catalog-backed ingredient matcher.
func NewCatalogMatcher(ingredients port.IngredientRepository) *CatalogMatcher {
	return &CatalogMatcher{ingredients: ingredients}
}

var _ port.IngredientMatcher = (*CatalogMatcher)(nil)

// Match resolves every line item in order. A catalog read failure aborts the
// whole step; a partial result set is never returned.
func (m *CatalogMatcher) Match(ctx context.Context, items []domain.ExtractedIngredient) ([]domain.ProcessedIngredient, error) {
	catalog, err := m.ingredients.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: loading ingredient catalog: %v", domain.ErrMatchCatalog, err)
	}

	variantCount := map[uuid.UUID]int{}
	for _, ing := range catalog {
		if ing.ParentID != nil {
			variantCount[*ing.ParentID]++
		}
	}

	results := make([]domain.ProcessedIngredient, 0, len(items))
	resolved := 0
	for _, item := range items {
		processed := m.matchOne(item, catalog, variantCount)
		if processed.IngredientID != nil {
			resolved++
		}
		results = append(results, processed)
	}

	total := len(items)
	if total > 0 {
		log.Printf("match.CatalogMatcher: resolved %d/%d ingredients (%.0f%%)",
			resolved, total, float64(resolved)/float64(total)*100)
	}
	return results, nil
}

type scored struct {
	ingredient domain.Ingredient
	score      float64
}

func (m *CatalogMatcher) matchOne(item domain.ExtractedIngredient, catalog []domain.Ingredient, variantCount map[uuid.UUID]int) domain.ProcessedIngredient {
	processed := domain.ProcessedIngredient{
		ExtractedIngredient: item,
		NeedsReview:         true,
	}

	name := normalizeName(item.IngredientName)
	if name == "" {
		return processed
	}

	var candidates []scored
	for _, ing := range catalog {
		if score := scoreAgainst(name, &ing); score > 0 {
			candidates = append(candidates, scored{ingredient: ing, score: score})
		}
	}
	if len(candidates) == 0 {
		return processed
	}

	// Stable order: score descending, base ingredients win ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].ingredient.IsBase && !candidates[j].ingredient.IsBase
	})

	for i, c := range candidates {
		if i == maxCandidates {
			break
		}
		processed.Candidates = append(processed.Candidates, c.ingredient.ID)
	}

	best := candidates[0]
	processed.Confidence = best.score
	if best.score < reviewConfidence {
		return processed
	}

	id := best.ingredient.ID
	processed.IngredientID = &id
	processed.NeedsReview = best.score < autoResolveConfidence

	// A non-exact hit on a base ingredient with registered variants is
	// ambiguous ("pepper" could be bell or black); keep the base id but
	// force review so the user picks the variant.
	if best.score < 1.0 && best.ingredient.IsBase && variantCount[best.ingredient.ID] > 1 {
		processed.NeedsReview = true
	}
	return processed
}

// scoreAgainst rates how well a normalized free-text name matches one catalog
// entry: 1.0 exact (name or plural), 0.8 substring containment, otherwise
// edit-distance similarity when above 0.6.
func scoreAgainst(name string, ing *domain.Ingredient) float64 {
	canonical := normalizeName(ing.Name)
	plural := normalizeName(ing.PluralName)

	if name == canonical || (plural != "" && name == plural) {
		return 1.0
	}
	if containsWord(name, canonical) || containsWord(canonical, name) {
		return 0.8
	}
	if sim := similarity(name, canonical); sim >= reviewConfidence {
		return sim
	}
	if plural != "" {
		if sim := similarity(name, plural); sim >= reviewConfidence {
			return sim
		}
	}
	return 0
}

// descriptors are preparation and size words that carry no identity.
var descriptors = map[string]bool{
	"fresh":    true,
	"frozen":   true,
	"dried":    true,
	"large":    true,
	"medium":   true,
	"small":    true,
	"chopped":  true,
	"diced":    true,
	"minced":   true,
	"sliced":   true,
	"grated":   true,
	"shredded": true,
	"organic":  true,
	"whole":    true,
	"finely":   true,
	"roughly":  true,
	"ripe":     true,
	"raw":      true,
	"cooked":   true,
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var kept []string
	for _, word := range strings.Fields(name) {
		word = strings.Trim(word, ",.()")
		if word == "" || descriptors[word] {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

// containsWord reports whether needle occurs in haystack on word boundaries,
// so "bell pepper" contains "pepper" but "peppercorn" does not.
func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}

// similarity is 1 - normalized Levenshtein distance.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	dist := levenshtein(a, b)
	longest := la
	if lb > longest {
		longest = lb
	}
	return 1 - float64(dist)/float64(longest)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
