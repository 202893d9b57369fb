package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/twakeham/pathfinder/pkg/chat"
	"github.com/twakeham/pathfinder/pkg/params"
)

// Ollama generates replies through an Ollama-compatible /api/chat
// endpoint.
type Ollama struct {
	upstreamURL string
	httpClient  *http.Client
}

var _ Provider = (*Ollama)(nil)

// NewOllama creates a provider for the given upstream base URL
// (e.g. "http://localhost:11434").
func NewOllama(upstreamURL string) *Ollama {
	return &Ollama{
		upstreamURL: strings.TrimRight(upstreamURL, "/"),
		httpClient: &http.Client{
			// LLM requests can be slow, especially with thinking blocks
			Timeout: 5 * time.Minute,
		},
	}
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Chat(ctx context.Context, history []chat.Message, model string, p params.Params) (Reply, error) {
	streaming := false
	req := wireRequest{
		Model:  model,
		Stream: &streaming,
		Options: &wireOptions{
			Temperature: &p.Temperature,
			TopP:        &p.TopP,
			NumPredict:  &p.MaxTokens,
		},
	}
	for _, msg := range history {
		req.Messages = append(req.Messages, wireMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return Reply{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.upstreamURL+"/api/chat", bytes.NewReader(reqBody))
	if err != nil {
		return Reply{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return Reply{}, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var werr wireError
		if json.Unmarshal(body, &werr) == nil && werr.Error != "" {
			return Reply{}, fmt.Errorf("upstream returned %d: %s", httpResp.StatusCode, werr.Error)
		}
		return Reply{}, fmt.Errorf("upstream returned %d: %s", httpResp.StatusCode, string(body))
	}

	var resp wireResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Reply{}, fmt.Errorf("unmarshal response: %w", err)
	}

	return Reply{
		Content:          resp.Message.Content,
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
	}, nil
}
