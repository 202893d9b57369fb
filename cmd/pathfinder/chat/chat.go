package chatcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/twakeham/pathfinder/cmd/pathfinder/dbpath"
	"github.com/twakeham/pathfinder/pkg/params"
	"github.com/twakeham/pathfinder/pkg/provider"
	"github.com/twakeham/pathfinder/pkg/store"
	"github.com/twakeham/pathfinder/tui"
)

const chatLongDesc string = `Start an interactive side-by-side chat.

Every message you send is answered twice - once per variant - and the
two responses render next to each other. Without --upstream the echo
backend answers, which needs no model server. The session log is kept
in memory; --persist records it to the local SQLite database so replay
and mcp can read it back.

Examples:
  pathfinder chat
  pathfinder chat --upstream http://localhost:11434 --model-a llama3 --model-b mistral
  pathfinder chat --preset Creative
  pathfinder chat --persist --title "prompt shootout"
  pathfinder chat --persist --db /tmp/pathfinder.db`

const chatShortDesc string = "Interactive A/B chat in the terminal"

type chatCommander struct {
	upstream string
	modelA   string
	modelB   string
	preset   string
	persist  bool
	dbPath   string
	title    string
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cmder.upstream, "upstream", "", "Upstream LLM provider URL (default: echo backend)")
	cmd.Flags().StringVar(&cmder.modelA, "model-a", "", "Model answering variant A")
	cmd.Flags().StringVar(&cmder.modelB, "model-b", "", "Model answering variant B")
	cmd.Flags().StringVar(&cmder.preset, "preset", "Balanced", "Parameter preset to start from")
	cmd.Flags().BoolVar(&cmder.persist, "persist", false, "Record the session to SQLite")
	cmd.Flags().StringVar(&cmder.dbPath, "db", "", "Path to SQLite database (implies --persist)")
	cmd.Flags().StringVar(&cmder.title, "title", "Interactive session", "Conversation title for the recorded session")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	var prov provider.Provider = provider.Echo{}
	if c.upstream != "" {
		prov = provider.NewOllama(c.upstream)
	}

	knobs, err := presetParams(c.preset)
	if err != nil {
		return err
	}

	st, err := c.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := store.NewRecorder(ctx, st, c.title)
	if err != nil {
		return fmt.Errorf("starting session recording: %w", err)
	}

	return tui.Run(tui.Options{
		Provider: prov,
		ModelA:   c.modelA,
		ModelB:   c.modelB,
		Params:   knobs,
		Recorder: rec,
	})
}

// openStore backs the session log: SQLite when persistence is asked
// for (--db at the given path, bare --persist at the shared default
// location), in-memory otherwise.
func (c *chatCommander) openStore() (store.Store, error) {
	if !c.persist && c.dbPath == "" {
		return store.NewMemory(), nil
	}

	path, err := dbpath.Resolve(c.dbPath)
	if err != nil {
		return nil, err
	}

	return store.NewSQLite(path)
}

func presetParams(name string) (params.Params, error) {
	for _, preset := range params.Presets() {
		if preset.Name == name {
			return params.Apply(preset), nil
		}
	}
	return params.Params{}, fmt.Errorf("unknown preset %q", name)
}
