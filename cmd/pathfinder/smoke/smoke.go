package smokecmder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twakeham/pathfinder/pkg/chat"
	"github.com/twakeham/pathfinder/pkg/store"
)

const smokeLongDesc string = `Smoke test a running pathfinder server.

Creates a conversation, generates a turn, and fetches the reconstructed
turn views, reporting each step.

Examples:
  pathfinder smoke
  pathfinder smoke --baseurl http://192.168.1.42:8080 --provider ollama`

const smokeShortDesc string = "Smoke test a running server"

type smokeCommander struct {
	baseURL  string
	content  string
	title    string
	provider string
}

func NewSmokeCmd() *cobra.Command {
	cmder := &smokeCommander{}

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: smokeShortDesc,
		Long:  smokeLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.baseURL, "baseurl", "b", "http://127.0.0.1:8080", "Server base URL")
	cmd.Flags().StringVarP(&cmder.content, "content", "c", "Hello from CLI", "Prompt to send")
	cmd.Flags().StringVar(&cmder.title, "title", "CLI Test Conversation", "Conversation title")
	cmd.Flags().StringVar(&cmder.provider, "provider", "", "Force provider for generate (overrides server default)")

	return cmd
}

func (c *smokeCommander) run(cmd *cobra.Command) error {
	base := strings.TrimRight(c.baseURL, "/")
	out := cmd.OutOrStdout()

	// 1) Create conversation
	var convo store.Conversation
	status, err := httpJSON("POST", base+"/api/conversations",
		map[string]string{"title": c.title}, &convo)
	if err != nil {
		return fmt.Errorf("create conversation failed: %w", err)
	}
	if status != http.StatusCreated || convo.ID == "" {
		return fmt.Errorf("create conversation failed: status %d", status)
	}
	fmt.Fprintf(out, "ok: conversation created: %s\n", convo.ID)

	// 2) Generate a turn
	url := base + "/api/conversations/" + convo.ID + "/generate"
	if c.provider != "" {
		url += "?provider=" + c.provider
	}
	var generated struct {
		ResponseA *store.Message    `json:"response_a"`
		ResponseB *store.Message    `json:"response_b"`
		Errors    map[string]string `json:"errors"`
	}
	status, err = httpJSON("POST", url, map[string]string{"content": c.content}, &generated)
	if err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}
	if status != http.StatusCreated {
		return fmt.Errorf("generate failed: status %d (%v)", status, generated.Errors)
	}
	if generated.ResponseA != nil {
		fmt.Fprintf(out, "ok: response A: %s\n", generated.ResponseA.Content)
	}
	if generated.ResponseB != nil {
		fmt.Fprintf(out, "ok: response B: %s\n", generated.ResponseB.Content)
	}
	for variant, msg := range generated.Errors {
		fmt.Fprintf(out, "warn: variant %s failed: %s\n", variant, msg)
	}

	// 3) Fetch reconstructed turns
	var transcript chat.Transcript
	status, err = httpJSON("GET", base+"/api/conversations/"+convo.ID+"/turns", nil, &transcript)
	if err != nil {
		return fmt.Errorf("fetch turns failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("fetch turns failed: status %d", status)
	}
	fmt.Fprintf(out, "ok: turns: %d\n", len(transcript.Turns))

	return nil
}

func httpJSON(method, url string, body any, into any) (int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("could not marshal body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return 0, fmt.Errorf("could not create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("could not read response: %w", err)
	}

	if into != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, into); err != nil {
			return resp.StatusCode, fmt.Errorf("could not decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}
