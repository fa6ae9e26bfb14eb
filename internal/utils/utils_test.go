package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mikey/mail-inspector/internal/authresults"
	"github.com/mikey/mail-inspector/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClip(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "short", tp.Clip("short", 100))
	assert.Equal(t, "unlimited", tp.Clip("unlimited", 0))

	clipped := tp.Clip("héllo wörld", 2)
	assert.True(t, strings.HasSuffix(clipped, truncationMarker))
	assert.Equal(t, "h", strings.TrimSuffix(clipped, truncationMarker))
	assert.True(t, utf8.ValidString(clipped))
}

func TestPrepare_DropsInvalidUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	assert.Equal(t, "ab", tp.Prepare("a\xffb", 0))
}

func TestExtractJSONObject(t *testing.T) {
	obj, ok := ExtractJSONObject("Sure:\n```json\n{\"a\":{\"b\":1}}\n```")
	require.True(t, ok)
	assert.Equal(t, `{"a":{"b":1}}`, obj)

	_, ok = ExtractJSONObject("no json here")
	assert.False(t, ok)
}

func TestBuildInspectionPrompt(t *testing.T) {
	prompt := BuildInspectionPrompt(&core.InspectionRequest{
		From:    "billing@example.com",
		Subject: "Invoice",
		SPF:     authresults.Pass,
		DKIM:    authresults.Unknown,
	}, "Please pay")

	assert.Contains(t, prompt, "From: billing@example.com")
	assert.Contains(t, prompt, "SPF: pass")
	assert.Contains(t, prompt, "DKIM: unknown")
	assert.Contains(t, prompt, "Please pay")
}

func TestParseInspectionResponse(t *testing.T) {
	res, err := ParseInspectionResponse(`{"is_suspicious":true,"score":0.9,"confidence":0.8,"explanation":"spoofed"}`, "m", "id-1")
	require.NoError(t, err)
	assert.True(t, res.IsSuspicious)
	assert.Equal(t, 0.9, res.Score)
	assert.Equal(t, "m", res.ModelUsed)
	assert.Equal(t, "id-1", res.ProcessingID)

	res, err = ParseInspectionResponse("Here you go: {\"is_suspicious\":false,\"score\":0.1} done", "m", "")
	require.NoError(t, err)
	assert.False(t, res.IsSuspicious)

	_, err = ParseInspectionResponse("I cannot help with that", "m", "")
	assert.Error(t, err)
}
