package enrichment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/papajo/clmonetizer-app/internal/models"
)

const arbitrageSystemPrompt = `You are an expert flipper and market analyst specializing in identifying arbitrage opportunities in classified-ad listings.

Your task is to analyze listings and determine if they represent profitable arbitrage opportunities. Consider:
- Current market value of similar items
- Condition and description quality
- Price competitiveness
- Resale potential on platforms like Facebook Marketplace, eBay, OfferUp
- Estimated profit after fees and time investment

Only flag items as opportunities if the profit potential is significant (typically $50+).

Respond with only a JSON object with these keys:
  "is_arbitrage_opportunity" (boolean),
  "profit_potential" (number, estimated profit in USD),
  "category" (string, item category),
  "demand" (string, one of "low", "medium", "high"),
  "recommended_price" (number or null, suggested resale price in USD),
  "suggested_platform" (string, where to resell),
  "reasoning" (string, explanation of the assessment)`

const adQualitySystemPrompt = `You are an expert at writing classified ads that sell. Score the given posting and suggest improvements a reseller could make when relisting the item.

Respond with only a JSON object with these keys:
  "score" (number 1-10),
  "strengths" (array of strings),
  "weaknesses" (array of strings),
  "suggestions" (array of strings)`

const marketResearchSystemPrompt = `You are a market researcher for second-hand goods. Estimate the realistic resale price range for the given item based on its description and condition.

Respond with only a JSON object with these keys:
  "market_price_low" (number or null, USD),
  "market_price_high" (number or null, USD),
  "demand" (string, one of "low", "medium", "high"),
  "summary" (string, short market assessment)`

const leadClassificationSystemPrompt = `You are a lead generation expert specializing in identifying business opportunities from classified-ad listings.

Identify if a listing represents a lead opportunity:
- "wanted": someone is looking to buy something (you might have it or can source it)
- "service": someone needs a service (you might provide it or know someone who does)
- "other": other types of business opportunities

Only mark as a lead if there is a clear business opportunity with reasonable confidence.

Respond with only a JSON object with these keys:
  "is_lead" (boolean),
  "lead_type" (string, one of "wanted", "service", "other"),
  "confidence" (number, 0.0 to 1.0)`

const leadSystemPrompt = `You are a negotiation coach for second-hand marketplace deals. Produce a concrete outreach strategy for contacting the seller of the given listing.

Respond with only a JSON object with these keys:
  "opening_message" (string, ready-to-send first message to the seller),
  "target_price" (number or null, the price to negotiate toward in USD),
  "talking_points" (array of strings, leverage points for the negotiation)`

// buildListingPrompt renders a listing into the user prompt shared by all
// analysis capabilities. The description is already markdown, which the
// models handle better than raw HTML.
func buildListingPrompt(listing *models.Listing) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Title: %s\n", orNA(listing.Title))
	if listing.Price != nil {
		fmt.Fprintf(&sb, "Price: $%.2f\n", *listing.Price)
	} else {
		sb.WriteString("Price: N/A\n")
	}
	fmt.Fprintf(&sb, "Location: %s\n", orNA(listing.Location))
	if listing.Mileage != nil {
		fmt.Fprintf(&sb, "Mileage: %d\n", *listing.Mileage)
	}
	if len(listing.Attributes) > 0 {
		sb.WriteString("Attributes:\n")
		for key, value := range listing.Attributes {
			fmt.Fprintf(&sb, "  %s: %s\n", key, value)
		}
	}
	fmt.Fprintf(&sb, "\nDescription:\n%s\n", orNA(listing.Description))

	return sb.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// decodeModelJSON extracts the JSON object from a model response. Models
// wrap output in markdown fences or add prose around it often enough that
// decoding the raw text directly is not reliable.
func decodeModelJSON(text string) (map[string]interface{}, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &decoded); err != nil {
		return nil, fmt.Errorf("malformed JSON in model response: %w", err)
	}
	return decoded, nil
}

// Typed field readers over the decoded map. The model controls the value
// types, so every read tolerates absence and wrong types.

func jsonBool(m map[string]interface{}, key string) bool {
	v, _ := m[key].(bool)
	return v
}

func jsonString(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}

func jsonFloat(m map[string]interface{}, key string) float64 {
	v, _ := m[key].(float64)
	return v
}

func jsonFloatPtr(m map[string]interface{}, key string) *float64 {
	if v, ok := m[key].(float64); ok {
		return &v
	}
	return nil
}

func jsonStringSlice(m map[string]interface{}, key string) []string {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	var result []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
