package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/papajo/clmonetizer-app/internal/common"
	"github.com/papajo/clmonetizer-app/internal/models"
)

// ListStrategy extracts listing candidates from a rendered category page.
// Strategies are pure functions over the parsed document; they are tried in
// order and the first one to yield candidates wins.
type ListStrategy struct {
	Name    string
	Extract func(doc *goquery.Document, pageURL string) []models.Candidate
}

// ListStrategies is the ordered fallback chain for category pages. Newer
// marketplace layouts come first; the generic anchor scan is the last
// resort for layouts none of the structured strategies recognize.
var ListStrategies = []ListStrategy{
	{Name: "search-result", Extract: extractSearchResults},
	{Name: "result-row", Extract: extractResultRows},
	{Name: "generic-anchors", Extract: extractGenericAnchors},
}

// ExtractCandidates runs the strategy chain over a rendered category page
// and returns deduplicated candidates plus the name of the strategy that
// produced them. An empty slice with strategy "" means no layout matched.
func ExtractCandidates(doc *goquery.Document, pageURL string) ([]models.Candidate, string) {
	for _, strategy := range ListStrategies {
		candidates := strategy.Extract(doc, pageURL)
		if len(candidates) > 0 {
			return dedupeCandidates(candidates), strategy.Name
		}
	}
	return nil, ""
}

// extractSearchResults handles the current layout where each result is a
// li.cl-search-result (or carries a data-pid attribute)
func extractSearchResults(doc *goquery.Document, pageURL string) []models.Candidate {
	var candidates []models.Candidate

	doc.Find("li.cl-search-result, li[data-pid]").Each(func(_ int, item *goquery.Selection) {
		link := item.Find(`a[href*="/d/"], a[href*=".html"]`).First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}

		url, err := common.ResolveListingURL(pageURL, href)
		if err != nil {
			return
		}

		candidates = append(candidates, models.Candidate{
			URL:      url,
			Title:    candidateTitle(link),
			Price:    ParsePrice(item.Find(`.price, [class*="price"]`).First().Text()),
			Location: candidateLocation(item),
			ImageURL: candidateImage(item),
		})
	})

	return candidates
}

// extractResultRows handles the older layout built from .result-row entries
func extractResultRows(doc *goquery.Document, pageURL string) []models.Candidate {
	var candidates []models.Candidate

	doc.Find(".result-row, li.result-row").Each(func(_ int, row *goquery.Selection) {
		link := row.Find(".result-title.hdrlnk, a.result-title").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}

		url, err := common.ResolveListingURL(pageURL, href)
		if err != nil {
			return
		}

		candidates = append(candidates, models.Candidate{
			URL:      url,
			Title:    candidateTitle(link),
			Price:    ParsePrice(row.Find(".result-meta .result-price, .result-price").First().Text()),
			Location: candidateLocation(row),
			ImageURL: candidateImage(row),
		})
	})

	return candidates
}

// extractGenericAnchors is the last-resort scan: any anchor that looks like
// a posting link, as long as it sits inside something list-item shaped
func extractGenericAnchors(doc *goquery.Document, pageURL string) []models.Candidate {
	var candidates []models.Candidate

	doc.Find(`a[href*="/d/"], a[href*=".html"]`).Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		if !strings.Contains(href, "/d/") && !strings.HasSuffix(href, ".html") {
			return
		}

		parent := link.Closest("li, .result-row, [data-pid]")
		if parent.Length() == 0 {
			return
		}

		url, err := common.ResolveListingURL(pageURL, href)
		if err != nil {
			return
		}

		candidates = append(candidates, models.Candidate{
			URL:      url,
			Title:    candidateTitle(link),
			Price:    ParsePrice(parent.Find(`.price, [class*="price"]`).First().Text()),
			Location: candidateLocation(parent),
			ImageURL: candidateImage(parent),
		})
	})

	return candidates
}

// candidateTitle prefers the anchor text, falls back to its title attribute,
// and defaults to "Untitled" so a listing is never stored nameless
func candidateTitle(link *goquery.Selection) string {
	if title := CleanText(link.Text()); title != "" {
		return title
	}
	if title, ok := link.Attr("title"); ok {
		if cleaned := CleanText(title); cleaned != "" {
			return cleaned
		}
	}
	return "Untitled"
}

// candidateLocation pulls the neighborhood hint when the layout carries one
func candidateLocation(item *goquery.Selection) string {
	location := CleanText(item.Find(`.result-hood, .supertitle, [class*="location"]`).First().Text())
	return strings.Trim(location, "()")
}

func candidateImage(item *goquery.Selection) string {
	src, _ := item.Find("img").First().Attr("src")
	return src
}

// dedupeCandidates drops repeated URLs, keeping first occurrence order
func dedupeCandidates(candidates []models.Candidate) []models.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	unique := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.URL]; ok {
			continue
		}
		seen[c.URL] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}
