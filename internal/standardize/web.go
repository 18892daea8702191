package standardize

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"

	"frigo/internal/config"
	"frigo/internal/domain"
	"frigo/internal/port"
)

// WebStandardizer fetches a recipe web page and extracts a standardized
// record, preferring schema.org JSON-LD and falling back to class-name
// heuristics on the markup. It implements port.SourceStandardizer.
type WebStandardizer struct {
	client   *resty.Client
	maxBytes int64
}

var _ port.SourceStandardizer = (*WebStandardizer)(nil)

// NewWebStandardizer creates a page-fetching standardizer from fetch config.
func NewWebStandardizer(cfg *config.FetchConfig) *WebStandardizer {
	client := resty.New().
		SetTimeout(cfg.Timeout()).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	return &WebStandardizer{
		client:   client,
		maxBytes: cfg.MaxBodyBytes,
	}
}

func (w *WebStandardizer) Standardize(ctx context.Context, job *domain.ImportJob) (*domain.StandardizedRecipeData, error) {
	resp, err := w.client.R().SetContext(ctx).Get(job.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", domain.ErrExtraction, job.SourceURL, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: fetching %s: status %d", domain.ErrExtraction, job.SourceURL, resp.StatusCode())
	}

	body := resp.Body()
	if w.maxBytes > 0 && int64(len(body)) > w.maxBytes {
		body = body[:w.maxBytes]
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed HTML at %s: %v", domain.ErrExtraction, job.SourceURL, err)
	}

	page := scanPage(doc)

	raw := extractJSONLD(page.jsonLD)
	author := page.author
	if raw != nil && author == "" {
		author = page.jsonLDAuthor
	}
	if raw == nil {
		raw = page.fallbackRecipe()
	}
	if raw == nil || len(raw.Ingredients) == 0 || len(raw.Instructions) == 0 {
		return nil, fmt.Errorf("%w: no extractable recipe content at %s", domain.ErrExtraction, job.SourceURL)
	}

	fillFromMeta(raw, page)

	return &domain.StandardizedRecipeData{
		Source: domain.RecipeSource{
			Type:     domain.SourceTypeURL,
			URL:      job.SourceURL,
			SiteName: siteName(job.SourceURL),
			Author:   author,
		},
		RawText: *raw,
	}, nil
}

func siteName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// pageData accumulates everything a single DOM walk can pick up.
type pageData struct {
	jsonLD       []string
	jsonLDAuthor string
	title        string
	ogTitle      string
	ogImage      string
	ogDesc       string
	author       string
	ingredients  []string
	instructions []string
}

// fallbackRecipe builds a raw record from class-name heuristics when no
// JSON-LD recipe was found.
func (p *pageData) fallbackRecipe() *domain.RawRecipeText {
	if len(p.ingredients) == 0 || len(p.instructions) == 0 {
		return nil
	}
	title := p.ogTitle
	if title == "" {
		title = p.title
	}
	return &domain.RawRecipeText{
		Title:        title,
		Description:  p.ogDesc,
		Ingredients:  p.ingredients,
		Instructions: p.instructions,
		ImageURL:     p.ogImage,
	}
}

// fillFromMeta backfills fields JSON-LD left empty from og: meta tags.
func fillFromMeta(raw *domain.RawRecipeText, page *pageData) {
	if raw.Title == "" {
		raw.Title = page.ogTitle
	}
	if raw.Title == "" {
		raw.Title = page.title
	}
	if raw.Description == "" {
		raw.Description = page.ogDesc
	}
	if raw.ImageURL == "" {
		raw.ImageURL = page.ogImage
	}
}

func scanPage(doc *html.Node) *pageData {
	page := &pageData{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script":
				if attr(n, "type") == "application/ld+json" {
					page.jsonLD = append(page.jsonLD, textContent(n))
				}
			case "title":
				if page.title == "" {
					page.title = strings.TrimSpace(textContent(n))
				}
			case "meta":
				switch attr(n, "property") {
				case "og:title":
					page.ogTitle = attr(n, "content")
				case "og:image":
					page.ogImage = attr(n, "content")
				case "og:description":
					page.ogDesc = attr(n, "content")
				}
				if attr(n, "name") == "author" && page.author == "" {
					page.author = attr(n, "content")
				}
			case "li", "p", "span", "div":
				class := strings.ToLower(attr(n, "class") + " " + attr(n, "itemprop"))
				switch {
				case strings.Contains(class, "ingredient"):
					if leafText(n) != "" {
						page.ingredients = append(page.ingredients, leafText(n))
					}
					// Children of an ingredient container are already
					// captured in its text; stop descending.
					return
				case strings.Contains(class, "instruction") || strings.Contains(class, "direction"):
					if leafText(n) != "" {
						page.instructions = append(page.instructions, leafText(n))
					}
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	// Containers like <div class="ingredients"> swallow their <li> children
	// in one blob; split multi-line blobs into individual entries.
	page.ingredients = splitBlobs(page.ingredients)
	page.instructions = splitBlobs(page.instructions)

	// JSON-LD author needs the decoded blob; best effort from any blob.
	for _, blob := range page.jsonLD {
		if node := decodeRecipeBlob(blob); node != nil {
			page.jsonLDAuthor = authorField(node["author"])
			break
		}
	}
	return page
}

func decodeRecipeBlob(blob string) map[string]interface{} {
	var doc interface{}
	if err := json.Unmarshal([]byte(blob), &doc); err != nil {
		return nil
	}
	return findRecipeNode(doc)
}

func splitBlobs(items []string) []string {
	var out []string
	for _, item := range items {
		for _, line := range strings.Split(item, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(c *html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

func leafText(n *html.Node) string {
	var parts []string
	var walk func(c *html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			if t := strings.TrimSpace(c.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}
