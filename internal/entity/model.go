package entity

import "strings"

const (
	// DefaultMaxTokens bounds a generation call when the caller does not ask
	// for a specific budget.
	DefaultMaxTokens = 512

	// AnthropicVersion is the protocol tag required by Claude-family models.
	AnthropicVersion = "bedrock-2023-05-31"
)

// SupportedModelIDs is the enumerated set the chat API accepts.
var SupportedModelIDs = []string{
	"anthropic.claude-3-haiku-20240307-v1:0",
	"anthropic.claude-3-5-sonnet-20240620-v1:0",
}

// IsSupportedModel reports whether id is in the enumerated model set.
func IsSupportedModel(id string) bool {
	for _, m := range SupportedModelIDs {
		if m == id {
			return true
		}
	}
	return false
}

// ModelRequest describes one generation call. Constructed per call, never
// persisted or reused.
type ModelRequest struct {
	ModelID     string
	Prompt      string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// IsClaudeFamily reports whether the model id addresses an Anthropic/Claude
// model, which expects a messages-style payload.
func (r ModelRequest) IsClaudeFamily() bool {
	id := strings.ToLower(r.ModelID)
	return strings.Contains(id, "anthropic.") || strings.Contains(id, "claude")
}

// AnthropicPayload is the messages-style request body for Claude-family
// models.
type AnthropicPayload struct {
	AnthropicVersion string             `json:"anthropic_version"`
	Messages         []AnthropicMessage `json:"messages"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float64            `json:"temperature"`
	TopP             float64            `json:"top_p"`
}

type AnthropicMessage struct {
	Role    string           `json:"role"`
	Content []AnthropicBlock `json:"content"`
}

type AnthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// GenericPayload is the flat request body accepted by most other model
// families.
type GenericPayload struct {
	Input       string  `json:"input"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// FoundationModel is one entry of the model catalog listing.
type FoundationModel struct {
	ModelID      string `json:"modelId"`
	ModelName    string `json:"modelName"`
	ProviderName string `json:"providerName"`
}
