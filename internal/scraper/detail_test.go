package scraper

import (
	"testing"
)

func TestExtractDetailFullPosting(t *testing.T) {
	html := `
	<html><body>
		<section class="body">
			<h1 class="postingtitle"><span class="postingtitletext">
				<span id="titletextonly">2012 Honda Civic</span>
				<span class="price">$6,500</span>
				<span class="postingtitle">(san francisco)</span>
			</span></h1>
			<section id="postingbody">
				<div class="print-information print-qrcode-container">QR Code Link to This Post</div>
				Runs great, one owner. Clean title in hand.
			</section>
			<p class="attrgroup">
				<span>condition: excellent</span>
				<span>odometer: 120,000</span>
				<span>clean title</span>
				<span>fuel: gas</span>
			</p>
		</section>
	</body></html>`

	detail := ExtractDetail(parseHTML(t, html))

	if detail.Title != "2012 Honda Civic" {
		t.Errorf("Title = %q", detail.Title)
	}
	if detail.Description != "Runs great, one owner. Clean title in hand." {
		t.Errorf("Description = %q", detail.Description)
	}
	if detail.Price == nil || *detail.Price != 6500 {
		t.Errorf("Price = %v", detail.Price)
	}
	if detail.Location != "(san francisco)" {
		t.Errorf("Location = %q", detail.Location)
	}
	if detail.Mileage == nil || *detail.Mileage != 120000 {
		t.Errorf("Mileage = %v", detail.Mileage)
	}

	wantAttrs := map[string]string{
		"condition": "excellent",
		"odometer":  "120,000",
		"fuel":      "gas",
		"tag":       "clean title",
	}
	if len(detail.Attributes) != len(wantAttrs) {
		t.Fatalf("Attributes = %v", detail.Attributes)
	}
	for key, want := range wantAttrs {
		if detail.Attributes[key] != want {
			t.Errorf("Attribute %q = %q, want %q", key, detail.Attributes[key], want)
		}
	}
}

func TestExtractAttributesTagAccumulation(t *testing.T) {
	html := `
	<html><body><p class="attrgroup">
		<span>clean title</span>
		<span>no accidents</span>
		<span>condition: good</span>
	</p></body></html>`

	detail := ExtractDetail(parseHTML(t, html))

	if detail.Attributes["tag"] != "clean title,no accidents" {
		t.Errorf("tag = %q", detail.Attributes["tag"])
	}
	if detail.Attributes["condition"] != "good" {
		t.Errorf("condition = %q", detail.Attributes["condition"])
	}
}

func TestExtractDetailFallbackSelectors(t *testing.T) {
	// No canonical price or location elements; the class-substring
	// fallbacks pick up what they can
	html := `
	<html><head><title>workbench - tools - by owner</title></head><body>
		<div class="listing-price-banner">$950</div>
		<div class="map-location">oakland hills</div>
		<div id="postingbody">Sturdy workbench.</div>
	</body></html>`

	detail := ExtractDetail(parseHTML(t, html))

	if detail.Title != "workbench - tools - by owner" {
		t.Errorf("Title fallback = %q", detail.Title)
	}
	if detail.Price == nil || *detail.Price != 950 {
		t.Errorf("Price fallback = %v", detail.Price)
	}
	if detail.Location != "oakland hills" {
		t.Errorf("Location fallback = %q", detail.Location)
	}
	if detail.Mileage != nil {
		t.Errorf("Mileage should be nil, got %v", *detail.Mileage)
	}
}

func TestExtractDetailSparsePosting(t *testing.T) {
	detail := ExtractDetail(parseHTML(t, "<html><body><p>gone</p></body></html>"))

	if detail.Description != "" {
		t.Errorf("Description = %q", detail.Description)
	}
	if detail.Price != nil {
		t.Errorf("Price = %v", *detail.Price)
	}
	if detail.Location != "" {
		t.Errorf("Location = %q", detail.Location)
	}
	if len(detail.Attributes) != 0 {
		t.Errorf("Attributes = %v", detail.Attributes)
	}
}
