package chat

import (
	"fmt"

	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/croftt/kbchat-backend/internal/pkg/probe"
)

// NormalizeItem converts one raw retrieval item into a Passage. The retrieval
// service's response shape is not guaranteed across versions, so every field
// is probed through a list of known locations. Absence of every candidate
// yields an empty Text, never an error.
func NormalizeItem(raw any) entity.Passage {
	m, ok := probe.AsMap(raw)
	if !ok {
		return entity.Passage{Text: stringify(raw), Metadata: map[string]any{}, Raw: raw}
	}

	doc, _ := probe.Map(m, "document")

	var text string
	if content, ok := probe.Value(m, "content", "contents"); ok {
		switch c := content.(type) {
		case map[string]any:
			text, _ = probe.String(c, "text", "documentText")
		case []any:
			if first, ok := probe.FirstMap(c); ok {
				text, _ = probe.String(first, "text", "documentText")
			}
		}
	}

	// fallback to other common keys
	if text == "" {
		text, _ = probe.String(m, "text", "documentText")
	}
	if text == "" && doc != nil {
		text, _ = probe.String(doc, "text")
	}

	id, found := probe.String(m, "documentId", "id")
	if !found && doc != nil {
		id, _ = probe.String(doc, "id")
	}

	metadata, found := probe.Map(m, "metadata")
	if !found && doc != nil {
		metadata, _ = probe.Map(doc, "metadata")
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	var score *float64
	if f, ok := probe.Float(m, "score", "similarity", "relevanceScore"); ok {
		score = &f
	}

	return entity.Passage{ID: id, Text: text, Metadata: metadata, Score: score, Raw: raw}
}

// NormalizeBatch extracts the result sequence from a raw retrieval response
// and normalizes every item, preserving order. When the extracted value is
// itself an object rather than a sequence, one more layer of key probing is
// applied before treating the response as empty.
func NormalizeBatch(raw map[string]any) []entity.Passage {
	if raw == nil {
		return nil
	}

	extracted, ok := probe.Value(raw, "retrievalResults", "results", "items", "hits")
	if !ok {
		return nil
	}

	items, ok := extracted.([]any)
	if !ok {
		if inner, isMap := probe.AsMap(extracted); isMap {
			items, _ = probe.Slice(inner, "items", "results", "hits")
		}
	}

	if len(items) == 0 {
		return nil
	}

	passages := make([]entity.Passage, 0, len(items))
	for _, item := range items {
		passages = append(passages, NormalizeItem(item))
	}

	return passages
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
