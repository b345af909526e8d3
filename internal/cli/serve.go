package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/pkg/api"
	"github.com/matzehuels/archdiagram/pkg/generate"
	"github.com/matzehuels/archdiagram/pkg/render"
)

// serveCommand creates the serve command, which runs the HTTP API until
// interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		host    string
		port    int
		tempDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

Without an OpenAI API key the server still renders schemas, but the
generate-diagram and assistant endpoints answer 503.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("temp-dir") {
				cfg.TempDir = tempDir
			}

			srv, err := c.newServer(api.Config{Host: cfg.Host, Port: cfg.Port, TempDir: cfg.TempDir})
			if err != nil {
				return err
			}
			printInfo("Serving on %s", StyleLink.Render("http://"+srv.Config().Addr()))
			printNextStep("Chat with the assistant", "archdiagram chat --api http://"+srv.Config().Addr())
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", api.DefaultHost, "listen host")
	cmd.Flags().IntVarP(&port, "port", "p", api.DefaultPort, "listen port")
	cmd.Flags().StringVar(&tempDir, "temp-dir", api.DefaultTempDir(), "parent directory for per-request render output")
	return cmd
}

// newServer wires the configured generator and renderer into an API server.
func (c *CLI) newServer(cfg api.Config) (*api.Server, error) {
	runner, err := c.newRunner(render.Options{}, false)
	if err != nil {
		return nil, err
	}

	var assistant generate.Assistant
	if a, ok := runner.Generator.(generate.Assistant); ok {
		assistant = a
	}
	if runner.Generator == nil {
		printWarning("No OpenAI API key configured; only render-diagram is available")
	}
	return api.New(cfg, runner, assistant, c.Logger), nil
}
