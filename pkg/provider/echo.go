package provider

import (
	"context"

	"github.com/twakeham/pathfinder/pkg/chat"
	"github.com/twakeham/pathfinder/pkg/params"
)

// Echo replies with the last user message verbatim. It needs no
// upstream and is the default backend for offline use and tests.
type Echo struct{}

var _ Provider = Echo{}

func (Echo) Name() string { return "echo" }

func (Echo) Chat(_ context.Context, history []chat.Message, _ string, _ params.Params) (Reply, error) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == chat.RoleUser {
			return Reply{Content: history[i].Content}, nil
		}
	}
	return Reply{Content: "(no input)"}, nil
}
