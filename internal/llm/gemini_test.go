package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func geminiTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *GeminiClient) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewGeminiClientWithConfig(GeminiConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	return server, client
}

func completionResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
}

func TestGenerateStandardVariant(t *testing.T) {
	var gotPrompt string
	_, client := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request: %v", err)
		}
		gotPrompt = req.Contents[0].Parts[0].Text
		json.NewEncoder(w).Encode(completionResponse("GSTR-1 is filed monthly."))
	})

	answer, err := client.Generate(context.Background(), "how do I file GSTR-1", "conv-1",
		ContextBundle{RelevantInfo: "GSTR-1 details outward supplies."}, ModelGemini)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if answer != "GSTR-1 is filed monthly." {
		t.Errorf("answer = %q", answer)
	}
	if !strings.HasPrefix(gotPrompt, "Context: GSTR-1 details outward supplies.") {
		t.Errorf("prompt = %q, want context prefix", gotPrompt)
	}
}

func TestGenerateAdvancedVariantUsesEnrichedPrompt(t *testing.T) {
	var gotPrompt string
	_, client := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotPrompt = req.Contents[0].Parts[0].Text
		json.NewEncoder(w).Encode(completionResponse("answer"))
	})

	_, err := client.Generate(context.Background(), "explain ITC", "conv-1",
		ContextBundle{DetectedIntent: "general_information"}, ModelAdvancedGemini)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(gotPrompt, "You are an AI assistant specialized in ERP systems.") {
		t.Errorf("advanced prompt missing preamble: %q", gotPrompt)
	}
}

func TestGenerateRetriesOnRateLimit(t *testing.T) {
	var calls int
	_, client := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "quota", http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(completionResponse("recovered"))
	})

	answer, err := client.Generate(context.Background(), "q", "", ContextBundle{}, ModelGemini)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if answer != "recovered" || calls != 2 {
		t.Errorf("answer=%q calls=%d", answer, calls)
	}
}

func TestGenerateHardErrorDoesNotRetry(t *testing.T) {
	var calls int
	_, client := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	if _, err := client.Generate(context.Background(), "q", "", ContextBundle{}, ModelGemini); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestGenerateAPIError(t *testing.T) {
	_, client := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 403, "message": "key revoked"},
		})
	})

	_, err := client.Generate(context.Background(), "q", "", ContextBundle{}, ModelGemini)
	if err == nil || !strings.Contains(err.Error(), "key revoked") {
		t.Errorf("err = %v, want API error message", err)
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	client := NewGeminiClient("")
	if _, err := client.Generate(context.Background(), "q", "", ContextBundle{}, ModelGemini); err == nil {
		t.Error("expected error without API key")
	}
}
