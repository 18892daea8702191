package standardize

import (
	"fmt"
	"net/url"
	"strings"

	"frigo/internal/domain"
)

// blockedDomains are known non-recipe hosts: video platforms, social media,
// search engines, and image-pin sites. Matching is by registrable suffix so
// subdomains like www.youtube.com and m.youtube.com are caught too.
var blockedDomains = []string{
	"youtube.com",
	"youtu.be",
	"tiktok.com",
	"instagram.com",
	"facebook.com",
	"fb.com",
	"twitter.com",
	"x.com",
	"pinterest.com",
	"pin.it",
	"google.com",
	"bing.com",
	"duckduckgo.com",
	"vimeo.com",
	"reddit.com",
	"snapchat.com",
}

// recipeHints are path/query substrings that suggest a page is a recipe.
var recipeHints = []string{
	"recipe",
	"recipes",
	"rezept",
	"recette",
	"ricetta",
	"cook",
	"baking",
	"bake",
	"dish",
	"food",
	"meal",
}

// CheckURL validates a recipe source URL before any network fetch. It is a
// pure function of the URL string. A blocked host returns a
// BlockedSourceError naming the domain. A host that passes but shows no
// recipe-indicating substring in its path or query returns a non-empty
// warning; the caller must opt in to proceed.
func CheckURL(raw string, extraBlocked []string) (warning string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidSourceURL, raw)
	}

	host := strings.ToLower(u.Hostname())
	for _, blocked := range append(blockedDomains, extraBlocked...) {
		if host == blocked || strings.HasSuffix(host, "."+blocked) {
			return "", &domain.BlockedSourceError{Domain: blocked}
		}
	}

	haystack := strings.ToLower(u.Path + "?" + u.RawQuery + "#" + host)
	for _, hint := range recipeHints {
		if strings.Contains(haystack, hint) {
			return "", nil
		}
	}
	return "this URL does not look like a recipe page", nil
}
