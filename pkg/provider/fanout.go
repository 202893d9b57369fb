package provider

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/twakeham/pathfinder/pkg/chat"
	"github.com/twakeham/pathfinder/pkg/params"
)

// VariantRequest asks one backend for one labeled response.
type VariantRequest struct {
	Variant  chat.Variant
	Provider Provider
	Model    string
	Params   params.Params
}

// VariantReply is the outcome of one variant generation. Err is set per
// reply so one failed variant never hides the other's content.
type VariantReply struct {
	Variant          chat.Variant
	Provider         string
	Model            string
	Content          string
	PromptTokens     int
	CompletionTokens int
	Err              error
}

// Fanout runs all variant generations concurrently against the same
// history snapshot. Replies come back in request order after every
// generation has finished; the returned error is the first per-variant
// failure, if any.
func Fanout(ctx context.Context, history []chat.Message, requests []VariantRequest) ([]VariantReply, error) {
	replies := make([]VariantReply, len(requests))

	var g errgroup.Group
	for i, req := range requests {
		g.Go(func() error {
			reply, err := req.Provider.Chat(ctx, history, req.Model, req.Params)
			replies[i] = VariantReply{
				Variant:          chat.NormalizeVariant(req.Variant),
				Provider:         req.Provider.Name(),
				Model:            req.Model,
				Content:          reply.Content,
				PromptTokens:     reply.PromptTokens,
				CompletionTokens: reply.CompletionTokens,
				Err:              err,
			}
			return err
		})
	}

	err := g.Wait()
	return replies, err
}
