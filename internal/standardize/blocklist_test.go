package standardize_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frigo/internal/domain"
	"frigo/internal/standardize"
)

func TestCheckURL_BlockedDomain(t *testing.T) {
	_, err := standardize.CheckURL("https://www.youtube.com/watch?v=abc123", nil)
	require.Error(t, err)

	var blocked *domain.BlockedSourceError
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, "youtube.com", blocked.Domain)
	assert.Contains(t, err.Error(), "youtube.com")
}

func TestCheckURL_BlockedSubdomainAndVariants(t *testing.T) {
	cases := map[string]string{
		"https://m.youtube.com/watch?v=x":  "youtube.com",
		"https://www.tiktok.com/@cook/v/1": "tiktok.com",
		"https://instagram.com/p/abc":      "instagram.com",
		"https://www.google.com/search?q=pasta+recipe": "google.com",
		"https://pin.it/abcd":                          "pin.it",
	}
	for raw, want := range cases {
		_, err := standardize.CheckURL(raw, nil)
		var blocked *domain.BlockedSourceError
		require.True(t, errors.As(err, &blocked), raw)
		assert.Equal(t, want, blocked.Domain, raw)
	}
}

func TestCheckURL_ExtraBlocked(t *testing.T) {
	_, err := standardize.CheckURL("https://spam.example/recipe", []string{"spam.example"})
	var blocked *domain.BlockedSourceError
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, "spam.example", blocked.Domain)
}

func TestCheckURL_RecipeLikePasses(t *testing.T) {
	warning, err := standardize.CheckURL("https://smittenkitchen.com/2024/01/lemon-pasta-recipe/", nil)
	require.NoError(t, err)
	assert.Empty(t, warning)
}

func TestCheckURL_NonRecipeLikeWarns(t *testing.T) {
	warning, err := standardize.CheckURL("https://example.com/about-us", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, warning)
}

func TestCheckURL_HostHintSuppressesWarning(t *testing.T) {
	// "food" in the host itself marks the site as recipe-like.
	warning, err := standardize.CheckURL("https://www.bbcgoodfood.com/lemon-pasta", nil)
	require.NoError(t, err)
	assert.Empty(t, warning)
}

func TestCheckURL_Malformed(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://example.com/recipe", "/relative/recipe"} {
		_, err := standardize.CheckURL(raw, nil)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, domain.ErrInvalidSourceURL), raw)
	}
}
