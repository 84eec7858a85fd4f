package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const pageURL = "https://sfbay.craigslist.org/search/cta"

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Failed to parse HTML: %v", err)
	}
	return doc
}

func TestExtractCandidatesModernLayout(t *testing.T) {
	html := `
	<html><body><ol>
		<li class="cl-search-result" data-pid="7700000001">
			<a href="/sfc/cto/d/honda-civic/7700000001.html">2012 Honda Civic</a>
			<span class="priceinfo price">$6,500</span>
			<div class="meta"><span class="supertitle">san francisco</span></div>
		</li>
		<li class="cl-search-result" data-pid="7700000002">
			<a href="https://sfbay.craigslist.org/eby/cto/d/toyota-camry/7700000002.html" title="2015 Toyota Camry"></a>
		</li>
	</ol></body></html>`

	candidates, strategy := ExtractCandidates(parseHTML(t, html), pageURL)
	if strategy != "search-result" {
		t.Fatalf("Expected search-result strategy, got %q", strategy)
	}
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}

	first := candidates[0]
	if first.URL != "https://sfbay.craigslist.org/sfc/cto/d/honda-civic/7700000001.html" {
		t.Errorf("Relative href not resolved: %q", first.URL)
	}
	if first.Title != "2012 Honda Civic" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Price == nil || *first.Price != 6500 {
		t.Errorf("Price = %v", first.Price)
	}
	if first.Location != "san francisco" {
		t.Errorf("Location = %q", first.Location)
	}

	// Empty anchor text falls back to the title attribute
	if candidates[1].Title != "2015 Toyota Camry" {
		t.Errorf("Title fallback = %q", candidates[1].Title)
	}
	if candidates[1].Price != nil {
		t.Errorf("Missing price should be nil, got %v", *candidates[1].Price)
	}
}

func TestExtractCandidatesLegacyFallback(t *testing.T) {
	// No modern markup present, so the chain falls through to result-row
	html := `
	<html><body><ul>
		<li class="result-row">
			<a class="result-title hdrlnk" href="/d/old-truck/123.html">Old Truck</a>
			<span class="result-meta"><span class="result-price">$1200</span>
			<span class="result-hood">(oakland)</span></span>
		</li>
	</ul></body></html>`

	candidates, strategy := ExtractCandidates(parseHTML(t, html), pageURL)
	if strategy != "result-row" {
		t.Fatalf("Expected result-row strategy, got %q", strategy)
	}
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Price == nil || *candidates[0].Price != 1200 {
		t.Errorf("Price = %v", candidates[0].Price)
	}
	if candidates[0].Location != "oakland" {
		t.Errorf("Location should drop parens, got %q", candidates[0].Location)
	}
}

func TestExtractCandidatesGenericFallback(t *testing.T) {
	// Neither structured layout matches; bare anchors inside list items are
	// the last resort
	html := `
	<html><body><ul>
		<li><a href="/nby/cto/d/boat/456.html">Fishing boat</a></li>
		<li><a href="https://example.org/about">not a posting</a></li>
	</ul></body></html>`

	candidates, strategy := ExtractCandidates(parseHTML(t, html), pageURL)
	if strategy != "generic-anchors" {
		t.Fatalf("Expected generic-anchors strategy, got %q", strategy)
	}
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Title != "Fishing boat" {
		t.Errorf("Title = %q", candidates[0].Title)
	}
}

func TestExtractCandidatesDeduplicates(t *testing.T) {
	// The same posting linked twice (thumbnail + title anchor patterns)
	html := `
	<html><body>
		<li class="cl-search-result"><a href="/d/item/1.html">Item</a></li>
		<li class="cl-search-result"><a href="/d/item/1.html#gallery">Item</a></li>
		<li class="cl-search-result"><a href="/d/other/2.html">Other</a></li>
	</body></html>`

	candidates, _ := ExtractCandidates(parseHTML(t, html), pageURL)
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 unique candidates, got %d", len(candidates))
	}
	if candidates[0].URL == candidates[1].URL {
		t.Error("Duplicate URLs survived dedupe")
	}
}

func TestExtractCandidatesEmptyPage(t *testing.T) {
	candidates, strategy := ExtractCandidates(parseHTML(t, "<html><body><p>no results</p></body></html>"), pageURL)
	if len(candidates) != 0 {
		t.Errorf("Expected no candidates, got %d", len(candidates))
	}
	if strategy != "" {
		t.Errorf("Expected empty strategy name, got %q", strategy)
	}
}

func TestStrategyPrecedence(t *testing.T) {
	// Modern and legacy markup on one page: the first matching strategy
	// wins and the legacy rows are ignored
	html := `
	<html><body>
		<li class="cl-search-result"><a href="/d/modern/1.html">Modern</a></li>
		<li class="result-row"><a class="result-title" href="/d/legacy/2.html">Legacy</a></li>
	</body></html>`

	candidates, strategy := ExtractCandidates(parseHTML(t, html), pageURL)
	if strategy != "search-result" {
		t.Fatalf("Expected search-result to win, got %q", strategy)
	}
	if len(candidates) != 1 || candidates[0].Title != "Modern" {
		t.Errorf("Unexpected candidates: %+v", candidates)
	}
}
