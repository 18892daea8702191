package standardize_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frigo/internal/config"
	"frigo/internal/domain"
	"frigo/internal/standardize"
)

const jsonLDPage = `<!DOCTYPE html>
<html>
<head>
<title>Lemon Pasta | Example Kitchen</title>
<meta property="og:image" content="https://example.com/og-lemon.jpg">
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@graph": [
    {"@type": "WebSite", "name": "Example Kitchen"},
    {
      "@type": "Recipe",
      "name": "Lemon Pasta",
      "description": "A bright weeknight pasta.",
      "author": {"@type": "Person", "name": "Jane Cook"},
      "image": ["https://example.com/lemon.jpg"],
      "prepTime": "PT10M",
      "cookTime": "PT15M",
      "recipeYield": "2-4 servings",
      "recipeCuisine": "Italian",
      "keywords": "pasta, lemon, quick",
      "recipeIngredient": ["200g spaghetti", "1 lemon", "50g parmesan"],
      "recipeInstructions": [
        {"@type": "HowToStep", "text": "Boil the spaghetti."},
        {"@type": "HowToSection", "name": "Finish", "itemListElement": [
          {"@type": "HowToStep", "text": "Toss with lemon and parmesan."}
        ]}
      ]
    }
  ]
}
</script>
</head>
<body><h1>Lemon Pasta</h1></body>
</html>`

const heuristicPage = `<!DOCTYPE html>
<html>
<head>
<title>Grandma's Stew</title>
<meta property="og:title" content="Grandma's Stew">
<meta property="og:description" content="A family classic.">
<meta name="author" content="Grandma">
</head>
<body>
<ul>
<li class="recipe-ingredient">1 lb beef</li>
<li class="recipe-ingredient">2 carrots</li>
</ul>
<div>
<p class="instruction">Brown the beef.</p>
<p class="instruction">Simmer for two hours.</p>
</div>
</body>
</html>`

func newWebStandardizer() *standardize.WebStandardizer {
	return standardize.NewWebStandardizer(&config.FetchConfig{
		TimeoutSecs:  5,
		UserAgent:    "frigo-test/1.0",
		MaxBodyBytes: 1 << 20,
	})
}

func TestWebStandardizer_JSONLD(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "frigo-test/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(jsonLDPage))
	}))
	defer server.Close()

	std, err := newWebStandardizer().Standardize(context.Background(), &domain.ImportJob{
		SourceType: domain.SourceTypeURL,
		SourceURL:  server.URL + "/lemon-pasta-recipe",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceTypeURL, std.Source.Type)
	assert.Equal(t, "Jane Cook", std.Source.Author)

	raw := std.RawText
	assert.Equal(t, "Lemon Pasta", raw.Title)
	assert.Equal(t, "A bright weeknight pasta.", raw.Description)
	assert.Equal(t, "https://example.com/lemon.jpg", raw.ImageURL)
	assert.Equal(t, "PT10M", raw.PrepTime)
	assert.Equal(t, "PT15M", raw.CookTime)
	assert.Equal(t, "2-4 servings", raw.Servings)
	assert.Equal(t, "Italian", raw.Cuisine)
	assert.Equal(t, []string{"pasta", "lemon", "quick"}, raw.Tags)
	assert.Equal(t, []string{"200g spaghetti", "1 lemon", "50g parmesan"}, raw.Ingredients)
	assert.Equal(t, []string{"Boil the spaghetti.", "Toss with lemon and parmesan."}, raw.Instructions)
}

func TestWebStandardizer_HeuristicFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(heuristicPage))
	}))
	defer server.Close()

	std, err := newWebStandardizer().Standardize(context.Background(), &domain.ImportJob{
		SourceType: domain.SourceTypeURL,
		SourceURL:  server.URL + "/stew",
	})
	require.NoError(t, err)

	raw := std.RawText
	assert.Equal(t, "Grandma's Stew", raw.Title)
	assert.Equal(t, "A family classic.", raw.Description)
	assert.Equal(t, []string{"1 lb beef", "2 carrots"}, raw.Ingredients)
	assert.Equal(t, []string{"Brown the beef.", "Simmer for two hours."}, raw.Instructions)
	assert.Equal(t, "Grandma", std.Source.Author)
}

func TestWebStandardizer_NoRecipeContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>Nothing to cook here.</p></body></html>`))
	}))
	defer server.Close()

	_, err := newWebStandardizer().Standardize(context.Background(), &domain.ImportJob{
		SourceURL: server.URL + "/empty",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtraction))
}

func TestWebStandardizer_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newWebStandardizer().Standardize(context.Background(), &domain.ImportJob{
		SourceURL: server.URL + "/missing",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtraction))
	assert.Contains(t, err.Error(), "404")
}
