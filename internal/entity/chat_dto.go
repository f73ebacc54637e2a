package entity

// ChatRequest is the POST /chat body. Model parameters are optional; the
// configured defaults apply when omitted.
type ChatRequest struct {
	SessionID   string   `json:"session_id,omitempty"`
	Message     string   `json:"message"`
	ModelID     string   `json:"model_id,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
}

type ChatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type HistoryResponse struct {
	SessionID string     `json:"session_id"`
	Turns     []ChatTurn `json:"turns"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
