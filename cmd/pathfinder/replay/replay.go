package replaycmder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twakeham/pathfinder/pkg/chat"
	"github.com/twakeham/pathfinder/pkg/markdown"
	"github.com/twakeham/pathfinder/tui"
)

const replayLongDesc string = `Render a recorded message log as side-by-side turns.

The log is a JSONL file with one message per line:
  {"role":"user","content":"hello"}
  {"role":"assistant","variant":"A","content":"hi"}
  {"role":"assistant","variant":"B","content":"hey"}

With --watch the file is re-read and re-rendered from scratch whenever
it changes, so a log being appended to behaves like a live session.

Examples:
  pathfinder replay session.jsonl
  pathfinder replay --watch --awaiting session.jsonl`

const replayShortDesc string = "Render a JSONL message log as turns"

type replayCommander struct {
	watch    bool
	awaiting bool
	width    int
}

func NewReplayCmd() *cobra.Command {
	cmder := &replayCommander{}

	cmd := &cobra.Command{
		Use:   "replay <log.jsonl>",
		Short: replayShortDesc,
		Long:  replayLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}

	cmd.Flags().BoolVarP(&cmder.watch, "watch", "w", false, "Re-render whenever the log file changes")
	cmd.Flags().BoolVar(&cmder.awaiting, "awaiting", false, "Mark the last turn's empty columns as typing")
	cmd.Flags().IntVar(&cmder.width, "width", 0, "Render width (default: terminal width)")

	return cmd
}

func (c *replayCommander) run(cmd *cobra.Command, path string) error {
	width := c.renderWidth()

	if err := c.render(cmd, path, width); err != nil {
		return err
	}

	if !c.watch {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and appenders often replace the
	// file, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("could not watch %s: %w", path, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes (ctrl+c to stop)\n", path)

	target := filepath.Clean(path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := c.render(cmd, path, width); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "render failed: %v\n", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

// render re-reads the whole log and recomputes the turn views from
// scratch; there is no incremental state between renders.
func (c *replayCommander) render(cmd *cobra.Command, path string, width int) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open log %s: %w", path, err)
	}
	defer file.Close()

	log, err := LoadLog(file)
	if err != nil {
		return fmt.Errorf("could not parse log %s: %w", path, err)
	}

	turns := chat.Reconstruct(log)

	transcript, err := chat.Present(turns, c.awaiting, c.renderer(width))
	if err != nil {
		return fmt.Errorf("could not present turns: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), tui.RenderTranscript(transcript, width, "..."))
	return nil
}

func (c *replayCommander) renderer(width int) chat.Renderer {
	r, err := markdown.NewTermRenderer(width/2 - 4)
	if err != nil {
		return markdown.Plain{}
	}
	return r
}

func (c *replayCommander) renderWidth() int {
	if c.width > 0 {
		return c.width
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 100
}
