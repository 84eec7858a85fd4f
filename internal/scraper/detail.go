package scraper

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/papajo/clmonetizer-app/internal/models"
)

// ExtractDetail pulls posting-page fields from a rendered listing document.
// Every field is best-effort: a posting missing its price or location still
// yields a usable detail record.
func ExtractDetail(doc *goquery.Document) *models.ListingDetail {
	detail := &models.ListingDetail{
		Title:       extractDetailTitle(doc),
		Description: extractDescription(doc),
		Price:       extractDetailPrice(doc),
		Location:    extractDetailLocation(doc),
	}

	attributes, mileage := extractAttributes(doc)
	detail.Attributes = attributes
	detail.Mileage = mileage

	return detail
}

// extractDescription converts the posting body to markdown so formatting
// (lists, emphasis, links) survives into the stored description and the AI
// prompts built from it. Falls back to plain text if conversion fails.
func extractDescription(doc *goquery.Document) string {
	body := doc.Find("#postingbody").First()
	if body.Length() == 0 {
		return ""
	}
	// The posting body embeds a QR-code print helper; drop it before
	// capturing the content
	body.Find(".print-information").Remove()

	html, err := body.Html()
	if err != nil {
		return strings.TrimSpace(body.Text())
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return strings.TrimSpace(body.Text())
	}
	return strings.TrimSpace(markdown)
}

// extractDetailTitle prefers the posting title element, then the document
// title. A detail title revises the shorter list-page one when present.
func extractDetailTitle(doc *goquery.Document) string {
	if title := CleanText(doc.Find("#titletextonly").First().Text()); title != "" {
		return title
	}
	return CleanText(doc.Find("title").First().Text())
}

// extractDetailPrice tries the canonical price element first, then any
// element whose class mentions price
func extractDetailPrice(doc *goquery.Document) *float64 {
	if price := ParsePrice(doc.Find(".price").First().Text()); price != nil {
		return price
	}
	return ParsePrice(doc.Find(`[class*="price"]`).First().Text())
}

func extractDetailLocation(doc *goquery.Document) string {
	if location := CleanText(doc.Find(".postingtitletext .postingtitle").First().Text()); location != "" {
		return location
	}
	return CleanText(doc.Find(`[class*="location"]`).First().Text())
}

// extractAttributes walks the .attrgroup spans. A span with exactly one
// colon split becomes a key -> value entry (key lower-cased, value
// trimmed); bare spans (condition tags like "clean title") accumulate
// under the "tag" key, comma separated. The odometer entry also feeds the
// typed mileage field.
func extractAttributes(doc *goquery.Document) (map[string]string, *int) {
	attributes := make(map[string]string)
	var mileage *int

	doc.Find(".attrgroup span").Each(func(_ int, span *goquery.Selection) {
		text := CleanText(span.Text())
		if text == "" {
			return
		}

		parts := strings.Split(text, ":")
		if len(parts) == 2 {
			key := strings.ToLower(strings.TrimSpace(parts[0]))
			value := strings.TrimSpace(parts[1])
			attributes[key] = value

			if mileage == nil && (key == "odometer" || key == "mileage") {
				mileage = ParseMileage(value)
			}
			return
		}

		if existing, ok := attributes["tag"]; ok {
			attributes["tag"] = existing + "," + text
		} else {
			attributes["tag"] = text
		}
	})

	if len(attributes) == 0 {
		return nil, mileage
	}
	return attributes, mileage
}
