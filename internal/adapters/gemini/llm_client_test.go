package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/mail-inspector/internal/config"
	"github.com/mikey/mail-inspector/internal/core"
	"github.com/mikey/mail-inspector/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	resp   *genai.GenerateContentResponse
	err    error
	prompt string
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	if len(parts) > 0 {
		if text, ok := parts[0].(genai.Text); ok {
			f.prompt = string(text)
		}
	}
	return f.resp, f.err
}

func newTestInspector(gen generator) *Inspector {
	return &Inspector{
		model:         gen,
		cfg:           config.GeminiConfig{ModelName: "gemini-test", MaxBodySize: 4096},
		logger:        zap.NewNop(),
		textProcessor: utils.NewTextProcessor(zap.NewNop()),
	}
}

func textResponse(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestInspect(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(
		genai.Text(`{"is_suspicious":false,`),
		genai.Text(`"score":0.05,"confidence":0.7,"explanation":"newsletter"}`),
	)}

	res, err := newTestInspector(gen).Inspect(context.Background(), &core.InspectionRequest{
		Subject: "Weekly digest", Body: "Hello",
	})
	require.NoError(t, err)
	assert.False(t, res.IsSuspicious)
	assert.Equal(t, "newsletter", res.Explanation)
	assert.Equal(t, "gemini-test", res.ModelUsed)
	assert.Contains(t, gen.prompt, "Subject: Weekly digest")
}

func TestInspect_Errors(t *testing.T) {
	_, err := newTestInspector(&fakeGenerator{err: errors.New("quota")}).Inspect(context.Background(), &core.InspectionRequest{})
	assert.ErrorContains(t, err, "quota")

	_, err = newTestInspector(&fakeGenerator{resp: &genai.GenerateContentResponse{}}).Inspect(context.Background(), &core.InspectionRequest{})
	assert.ErrorContains(t, err, "empty response")
}
