package provider

import "time"

// Ollama-compatible /api/chat wire format, trimmed to the fields the
// client sends and reads.

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireOptions struct {
	Temperature *float64 `json:"temperature,omitempty"` // Creativity (0.0-2.0)
	TopP        *float64 `json:"top_p,omitempty"`       // Nucleus sampling threshold
	NumPredict  *int     `json:"num_predict,omitempty"` // Max tokens to generate
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   *bool         `json:"stream,omitempty"` // Ollama defaults to streaming
	Options  *wireOptions  `json:"options,omitempty"`
}

type wireResponse struct {
	Model     string      `json:"model"`
	CreatedAt time.Time   `json:"created_at"`
	Message   wireMessage `json:"message"`
	Done      bool        `json:"done"`

	// Metrics (only present when done=true)
	TotalDuration   int64 `json:"total_duration,omitempty"`
	PromptEvalCount int   `json:"prompt_eval_count,omitempty"`
	EvalCount       int   `json:"eval_count,omitempty"`
}

type wireError struct {
	Error string `json:"error"`
}
