package enrichment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/papajo/clmonetizer-app/internal/models"
)

func TestAnalyzeArbitrageUnconfiguredDegrades(t *testing.T) {
	logger := arbor.NewLogger()
	svc := &Service{
		provider: &provider{kind: kindUnconfigured, logger: logger},
		logger:   logger,
	}

	if svc.IsConfigured() {
		t.Fatal("Service with no API keys should report unconfigured")
	}
	if svc.ProviderName() != "unconfigured" {
		t.Errorf("ProviderName = %q", svc.ProviderName())
	}

	listing := &models.Listing{
		URL:   "https://example.org/d/item/1.html",
		Title: "Road bike",
	}

	result := svc.AnalyzeArbitrage(context.Background(), listing)
	if result == nil {
		t.Fatal("AnalyzeArbitrage must never return nil")
	}
	if result.IsArbitrageOpportunity {
		t.Error("Degraded result must not flag an opportunity")
	}
	if result.ProfitPotential != 0 {
		t.Errorf("Degraded profit potential = %v", result.ProfitPotential)
	}
	if result.Reasoning == "" {
		t.Error("Degraded result must carry a reasoning message")
	}
	if !strings.Contains(result.Reasoning, "API key") {
		t.Errorf("Reasoning should tell the operator what to fix, got %q", result.Reasoning)
	}

	// Optional capabilities surface the error instead
	if _, err := svc.AnalyzeAdQuality(context.Background(), listing); !errors.Is(err, ErrUnconfigured) {
		t.Errorf("Expected ErrUnconfigured, got %v", err)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want FailureCause
	}{
		{ErrUnconfigured, CauseUnconfigured},
		{errors.New("Error 429: RESOURCE_EXHAUSTED, quota exceeded"), CauseRateLimit},
		{errors.New("401 invalid x-api-key"), CauseAuth},
		{errors.New("PERMISSION_DENIED: key revoked"), CauseAuth},
		{errors.New("connection reset by peer"), CauseUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyError(tt.err); got != tt.want {
			t.Errorf("ClassifyError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestExtractRetryDelay(t *testing.T) {
	err := errors.New("Error 429, Message: quota exceeded. Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED")
	got := ExtractRetryDelay(err)
	if got < 45*time.Second || got > 46*time.Second {
		t.Errorf("ExtractRetryDelay = %v", got)
	}

	if got := ExtractRetryDelay(errors.New("some other error")); got != 0 {
		t.Errorf("Expected 0 delay, got %v", got)
	}
}

func TestDecodeModelJSON(t *testing.T) {
	fenced := "```json\n{\"is_arbitrage_opportunity\": true, \"profit_potential\": 150.5}\n```"
	decoded, err := decodeModelJSON(fenced)
	if err != nil {
		t.Fatalf("Failed to decode fenced JSON: %v", err)
	}
	if !jsonBool(decoded, "is_arbitrage_opportunity") {
		t.Error("is_arbitrage_opportunity should be true")
	}
	if jsonFloat(decoded, "profit_potential") != 150.5 {
		t.Errorf("profit_potential = %v", jsonFloat(decoded, "profit_potential"))
	}

	prose := `Here is my analysis: {"score": 7, "strengths": ["clear photos"]} Hope that helps!`
	decoded, err = decodeModelJSON(prose)
	if err != nil {
		t.Fatalf("Failed to decode JSON surrounded by prose: %v", err)
	}
	if jsonFloat(decoded, "score") != 7 {
		t.Errorf("score = %v", jsonFloat(decoded, "score"))
	}
	if got := jsonStringSlice(decoded, "strengths"); len(got) != 1 || got[0] != "clear photos" {
		t.Errorf("strengths = %v", got)
	}

	if _, err := decodeModelJSON("I cannot analyze this listing."); err == nil {
		t.Error("Expected error for response without JSON")
	}
}

func TestBuildListingPrompt(t *testing.T) {
	price := 6500.0
	mileage := 120000
	listing := &models.Listing{
		URL:         "https://example.org/d/item/1.html",
		Title:       "2012 Honda Civic",
		Price:       &price,
		Location:    "san francisco",
		Mileage:     &mileage,
		Description: "Runs great.",
		Attributes:  map[string]string{"condition": "excellent"},
	}

	prompt := buildListingPrompt(listing)
	for _, want := range []string{"2012 Honda Civic", "$6500.00", "san francisco", "120000", "condition: excellent", "Runs great."} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q:\n%s", want, prompt)
		}
	}

	// Missing fields render as N/A rather than empty
	sparse := buildListingPrompt(&models.Listing{URL: "https://example.org/d/2.html"})
	if !strings.Contains(sparse, "Title: N/A") || !strings.Contains(sparse, "Price: N/A") {
		t.Errorf("Sparse prompt should use N/A placeholders:\n%s", sparse)
	}
}
