package service

import (
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

const maxAILogSnippetRunes = 1024

// logAIExchange 用于输出 AI 请求与响应的关键信息，方便排查模型行为。
func logAIExchange(kind, phase, content string) {
	trimmed := strings.TrimSpace(content)
	entry := logrus.WithFields(logrus.Fields{"kind": kind, "phase": phase})
	if trimmed == "" {
		entry.Info("<empty>")
		return
	}

	runeCount := utf8.RuneCountInString(trimmed)
	snippet := trimmed
	if runeCount > maxAILogSnippetRunes {
		snippet = string([]rune(trimmed)[:maxAILogSnippetRunes]) + "…(truncated)"
	}
	entry.WithField("runes", runeCount).Info(snippet)
}
