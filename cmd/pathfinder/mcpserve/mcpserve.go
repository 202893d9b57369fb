package mcpcmder

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/twakeham/pathfinder/cmd/pathfinder/dbpath"
	"github.com/twakeham/pathfinder/pkg/chat"
	"github.com/twakeham/pathfinder/pkg/markdown"
	"github.com/twakeham/pathfinder/pkg/store"
)

const mcpLongDesc string = `Serve the local conversation database over MCP (stdio).

Exposes the stored conversations and their reconstructed turn views as
tools, so MCP clients can inspect recorded A/B sessions.

Examples:
  pathfinder mcp
  pathfinder mcp --db /tmp/pathfinder.db`

const mcpShortDesc string = "Serve conversations over MCP"

type mcpCommander struct {
	dbPath string
}

func NewMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cmder.dbPath, "db", "", "Path to local SQLite database")

	return cmd
}

type listConversationsArgs struct{}

type listConversationsResult struct {
	Conversations []*store.Conversation `json:"conversations"`
}

type getTranscriptArgs struct {
	ConversationID string `json:"conversation_id" jsonschema:"ID of the conversation to reconstruct"`
	Awaiting       bool   `json:"awaiting,omitempty" jsonschema:"mark the last turn's empty response columns as typing"`
}

func (c *mcpCommander) run(ctx context.Context) error {
	path, err := dbpath.Resolve(c.dbPath)
	if err != nil {
		return err
	}

	st, err := store.NewSQLite(path)
	if err != nil {
		return err
	}
	defer st.Close()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "pathfinder",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_conversations",
		Description: "List stored conversations, most recently updated first",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ listConversationsArgs) (*mcp.CallToolResult, listConversationsResult, error) {
		convos, err := st.ListConversations(ctx)
		if err != nil {
			return nil, listConversationsResult{}, err
		}
		return nil, listConversationsResult{Conversations: convos}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_transcript",
		Description: "Reconstruct a conversation's message log into side-by-side A/B turn views",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args getTranscriptArgs) (*mcp.CallToolResult, chat.Transcript, error) {
		msgs, err := st.ListMessages(ctx, args.ConversationID)
		if err != nil {
			return nil, chat.Transcript{}, err
		}

		turns := chat.Reconstruct(store.Log(msgs))

		transcript, err := chat.Present(turns, args.Awaiting, markdown.Plain{})
		if err != nil {
			return nil, chat.Transcript{}, err
		}
		return nil, transcript, nil
	})

	return server.Run(ctx, &mcp.StdioTransport{})
}
