package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/internal/config"
	"github.com/matzehuels/archdiagram/pkg/buildinfo"
	"github.com/matzehuels/archdiagram/pkg/generate"
	"github.com/matzehuels/archdiagram/pkg/pipeline"
	"github.com/matzehuels/archdiagram/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for the binary and display.
const appName = "archdiagram"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configFile string
	verbose    bool

	// backend and generator replace the Graphviz backend and the OpenAI
	// client when set.
	backend   render.Backend
	generator generate.Generator
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Archdiagram turns architecture descriptions into diagrams",
		Long: `Archdiagram generates cloud architecture diagrams from natural-language
descriptions or JSON diagram schemas, and serves the same pipeline over HTTP.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return c.loadConfig() },
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default ./"+config.DefaultFile+")")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.typesCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.chatCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads configuration and applies its log level. --verbose
// always wins over the configured level.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return err
	}
	c.Config = cfg

	level, _ := cfg.LogLevel()
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	if level == LogDebug {
		registerDebugHooks(c.Logger)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRenderer creates a renderer sized by the configured worker count.
func (c *CLI) newRenderer(opts render.Options) *render.Renderer {
	backend := c.backend
	if backend == nil {
		backend = render.Graphviz{}
	}
	pool := render.NewPool(c.Config.Render.Workers)
	return render.NewRenderer(backend, pool, c.Logger).WithOptions(opts)
}

// newGenerator returns the configured generator, or nil when no API key is
// set.
func (c *CLI) newGenerator() (*generate.OpenAI, error) {
	if c.Config.Generator.APIKey == "" {
		return nil, nil
	}
	return generate.NewOpenAI(generate.Config{
		APIKey:  c.Config.Generator.APIKey,
		Model:   c.Config.Generator.Model,
		BaseURL: c.Config.Generator.BaseURL,
	}, c.Logger)
}

// newRunner creates a pipeline runner. With requireGenerator it fails when
// no generator is configured.
func (c *CLI) newRunner(opts render.Options, requireGenerator bool) (*pipeline.Runner, error) {
	gen := c.generator
	if gen == nil {
		oa, err := c.newGenerator()
		if err != nil {
			return nil, err
		}
		if oa != nil {
			gen = oa
		}
	}
	if gen == nil && requireGenerator {
		return nil, generate.ErrAPIKeyMissing
	}
	return pipeline.NewRunner(gen, c.newRenderer(opts), c.Logger), nil
}

// =============================================================================
// Output Helpers
// =============================================================================

// ensureDir creates dir for CLI output.
func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
