package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const truncationMarker = "\n[... body truncated ...]"

// TextProcessor prepares message text before it is handed to a model
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// Clip cuts text to at most maxBytes without splitting a rune and marks
// the cut. maxBytes <= 0 disables the limit.
func (tp *TextProcessor) Clip(text string, maxBytes int) string {
	if maxBytes <= 0 || len(text) <= maxBytes {
		return text
	}

	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	tp.logger.Debug("Body clipped",
		zap.Int("original_size", len(text)),
		zap.Int("clipped_size", cut),
		zap.Int("max_size", maxBytes))

	return text[:cut] + truncationMarker
}

// Prepare drops invalid UTF-8 and clips the result
func (tp *TextProcessor) Prepare(text string, maxBytes int) string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	return tp.Clip(text, maxBytes)
}

// ExtractJSONObject returns the outermost {...} span of text, for models
// that wrap their JSON answer in prose or code fences.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
