package main

import (
	"os"

	"github.com/spf13/cobra"

	chatcmder "github.com/twakeham/pathfinder/cmd/pathfinder/chat"
	mcpcmder "github.com/twakeham/pathfinder/cmd/pathfinder/mcpserve"
	replaycmder "github.com/twakeham/pathfinder/cmd/pathfinder/replay"
	servecmder "github.com/twakeham/pathfinder/cmd/pathfinder/serve"
	smokecmder "github.com/twakeham/pathfinder/cmd/pathfinder/smoke"
)

func main() {
	root := &cobra.Command{
		Use:   "pathfinder",
		Short: "Side-by-side A/B chat client",
		Long: `Pathfinder runs one conversation against two concurrent assistant
response streams and reconstructs the message log into side-by-side
turns for comparison.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		servecmder.NewServeCmd(),
		chatcmder.NewChatCmd(),
		replaycmder.NewReplayCmd(),
		smokecmder.NewSmokeCmd(),
		mcpcmder.NewMCPCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
