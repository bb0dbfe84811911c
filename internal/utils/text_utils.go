package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// TextProcessor cleans text coming back from generators and going into mail headers
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText cuts text to at most maxSize bytes on a rune boundary
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated
}

// SanitizeUTF8 drops invalid UTF-8 bytes
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")
	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// SingleLine collapses whitespace and removes control characters so the
// result is safe for a mail header
func (tp *TextProcessor) SingleLine(text string, maxSize int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, tp.SanitizeUTF8(text))

	return tp.TruncateText(strings.Join(strings.Fields(cleaned), " "), maxSize)
}
