package entity

// Chat roles as rendered by the UI.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one message of a conversation. Turns are append-only for the
// lifetime of a UI session.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnswerRequest carries everything the orchestrator needs for one turn.
type AnswerRequest struct {
	Prompt      string
	ModelID     string
	Temperature float64
	TopP        float64
}

// RejectionMessage is returned verbatim when the prompt gate blocks a turn.
const RejectionMessage = "I'm unable to answer this, please try again"
