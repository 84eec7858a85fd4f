package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/papajo/clmonetizer-app/internal/common"
)

func TestHealthHandler(t *testing.T) {
	handler := NewAPIHandler(common.GetLogger())

	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
	if _, ok := body["uptime"]; !ok {
		t.Error("response missing uptime")
	}
	if _, ok := body["background_spawns"]; !ok {
		t.Error("response missing background_spawns")
	}
}

func TestHealthHandlerRejectsPost(t *testing.T) {
	handler := NewAPIHandler(common.GetLogger())

	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, httptest.NewRequest(http.MethodPost, "/api/health", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
