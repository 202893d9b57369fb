package servecmder

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/twakeham/pathfinder/pkg/logger"
	"github.com/twakeham/pathfinder/server"
)

const serveLongDesc string = `Run the pathfinder chat server.

The server stores conversations, reconstructs turn views, and fans each
generate request out to the variant A and variant B backends.

Examples:
  pathfinder serve --listen :8080
  pathfinder serve --upstream http://localhost:11434 --provider ollama --model-a llama3 --model-b mistral
  pathfinder serve --config pathfinder.toml`

const serveShortDesc string = "Run the chat server"

type serveCommander struct {
	configPath string
	listenAddr string
	upstream   string
	dbPath     string
	provider   string
	modelA     string
	modelB     string
	debug      bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.configPath, "config", "", "Path to TOML config file")
	cmd.Flags().StringVar(&cmder.listenAddr, "listen", ":8080", "Address to listen on")
	cmd.Flags().StringVar(&cmder.upstream, "upstream", "", "Upstream LLM provider URL (e.g., Ollama)")
	cmd.Flags().StringVar(&cmder.dbPath, "db", "", "Path to SQLite database (default: in-memory)")
	cmd.Flags().StringVar(&cmder.provider, "provider", "echo", "Default provider (echo or ollama)")
	cmd.Flags().StringVar(&cmder.modelA, "model-a", "", "Model answering variant A")
	cmd.Flags().StringVar(&cmder.modelB, "model-b", "", "Model answering variant B")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging and pprof")

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	config, err := c.buildConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.NewLogger(config.Debug)
	defer log.Sync()

	log.Info("pathfinder chat server starting",
		zap.String("listen", config.ListenAddr),
		zap.String("default_provider", config.DefaultProvider),
		zap.Bool("debug", config.Debug),
	)

	srv, err := server.New(config, log)
	if err != nil {
		return err
	}
	defer srv.Close()

	return srv.Run()
}

// buildConfig starts from the TOML file when given; explicitly set
// flags win over file values.
func (c *serveCommander) buildConfig(cmd *cobra.Command) (server.Config, error) {
	config := server.Config{}

	if c.configPath != "" {
		loaded, err := server.LoadConfig(c.configPath)
		if err != nil {
			return server.Config{}, err
		}
		config = loaded
	}

	flags := cmd.Flags()
	if config.ListenAddr == "" || flags.Changed("listen") {
		config.ListenAddr = c.listenAddr
	}
	if flags.Changed("upstream") {
		config.UpstreamURL = c.upstream
	}
	if flags.Changed("db") {
		config.DBPath = c.dbPath
	}
	if config.DefaultProvider == "" || flags.Changed("provider") {
		config.DefaultProvider = c.provider
	}
	if flags.Changed("model-a") {
		config.ModelA = c.modelA
	}
	if flags.Changed("model-b") {
		config.ModelB = c.modelB
	}
	if flags.Changed("debug") {
		config.Debug = c.debug
	}

	return config, nil
}
