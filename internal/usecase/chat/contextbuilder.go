package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/croftt/kbchat-backend/internal/pkg/probe"
)

const (
	// maxPassageChars caps each passage's contribution to the context.
	maxPassageChars = 5000
	// maxContextChars caps the joined context block. Together the two caps
	// bound the prompt size no matter how many or how large the retrieved
	// passages are.
	maxContextChars = 15000

	truncationMarker = "\n...[truncated]"
)

// BuildContext newline-joins non-empty passage texts into one bounded
// context block. Truncation is always marked, never silent.
func BuildContext(passages []entity.Passage) string {
	pieces := make([]string, 0, len(passages))
	for _, p := range passages {
		text := displayText(p)
		if text == "" {
			continue
		}
		pieces = append(pieces, truncate(text, maxPassageChars))
	}

	return truncate(strings.Join(pieces, "\n"), maxContextChars)
}

// displayText resolves what a passage contributes to the context. A passage
// is never dropped silently: when no known text field matches, the whole raw
// item is serialized as a last resort.
func displayText(p entity.Passage) string {
	if p.Text != "" {
		return p.Text
	}

	m, ok := probe.AsMap(p.Raw)
	if !ok {
		if p.Raw == nil {
			return ""
		}
		return stringify(p.Raw)
	}

	if content, ok := probe.Value(m, "content"); ok {
		switch c := content.(type) {
		case map[string]any:
			if s, ok := probe.String(c, "text"); ok {
				return s
			}
		case []any:
			if first, ok := probe.FirstMap(c); ok {
				if s, ok := probe.String(first, "text"); ok {
					return s
				}
			}
		}
	}

	if s, ok := probe.String(m, "chunks", "preview"); ok {
		return s
	}

	return serializeRaw(m)
}

func serializeRaw(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// truncate caps s at limit characters and appends the truncation marker.
// Counted in runes so a multi-byte character is never split.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + truncationMarker
}
