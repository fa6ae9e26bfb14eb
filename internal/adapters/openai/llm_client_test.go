package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mikey/mail-inspector/internal/authresults"
	"github.com/mikey/mail-inspector/internal/config"
	"github.com/mikey/mail-inspector/internal/core"
	"github.com/mikey/mail-inspector/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInspect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Contains(t, req.Messages[1].Content, "SPF: fail")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": "chatcmpl-1",
			"choices": []map[string]any{{
				"index":   0,
				"message": map[string]any{"role": "assistant", "content": `{"is_suspicious":true,"score":0.95,"confidence":0.9,"explanation":"SPF failed"}`},
			}},
		})
	}))
	defer srv.Close()

	inspector := NewInspector(config.OpenAIConfig{
		APIKey:    "sk-test",
		ModelName: "gpt-test",
		BaseURL:   srv.URL,
	}, zap.NewNop(), utils.NewTextProcessor(zap.NewNop()))

	res, err := inspector.Inspect(context.Background(), &core.InspectionRequest{
		From: "ceo@example.com", Subject: "Wire transfer", Body: "Send money", SPF: authresults.Fail, DKIM: authresults.None,
	})
	require.NoError(t, err)
	assert.True(t, res.IsSuspicious)
	assert.Equal(t, "gpt-test", res.ModelUsed)
	assert.Equal(t, "chatcmpl-1", res.ProcessingID)
}

func TestInspect_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer srv.Close()

	inspector := NewInspector(config.OpenAIConfig{APIKey: "k", ModelName: "m", BaseURL: srv.URL},
		zap.NewNop(), utils.NewTextProcessor(zap.NewNop()))

	_, err := inspector.Inspect(context.Background(), &core.InspectionRequest{})
	assert.Error(t, err)
}
