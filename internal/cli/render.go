package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/pkg/diagram"
	errs "github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/nodetype"
	"github.com/matzehuels/archdiagram/pkg/pipeline"
	"github.com/matzehuels/archdiagram/pkg/render"
	"github.com/matzehuels/archdiagram/pkg/schema"
)

// renderFlags holds flags shared by commands that draw a diagram.
type renderFlags struct {
	output    string
	name      string
	direction string
	detailed  bool
	font      string
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", ".", "output directory")
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "override the diagram name (and file name)")
	cmd.Flags().StringVarP(&f.direction, "direction", "d", "", "override the layout direction: LR, TB, BT, RL")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show the node type below each label")
	cmd.Flags().StringVar(&f.font, "font", "", "font name for labels")
}

func (f *renderFlags) renderOptions() render.Options {
	return render.Options{Detailed: f.detailed, FontName: f.font}
}

func (f *renderFlags) pipelineOptions() (pipeline.Options, error) {
	if err := ensureDir(f.output); err != nil {
		return pipeline.Options{}, errs.Wrap(errs.ErrCodeInvalidPath, err, "create output directory %s", f.output)
	}
	return pipeline.Options{
		OutputDir: f.output,
		Name:      f.name,
		Direction: schema.Direction(strings.ToUpper(f.direction)),
	}, nil
}

// renderCommand creates the render command for drawing a schema file.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render <schema.json>",
		Short: "Render a diagram schema to PNG",
		Long: `Render a JSON diagram schema to a PNG image.

The file is written to <output>/<slug of the diagram name>.png.`,
		Example: `  archdiagram render web.json
  archdiagram render web.json -o out --direction TB --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, flags renderFlags) error {
	d, err := schema.DecodeFile(path)
	if err != nil {
		return err
	}
	opts, err := flags.pipelineOptions()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(flags.renderOptions(), false)
	if err != nil {
		return err
	}

	sp := startSpinner(ctx, "Rendering "+d.Name+"...")
	result, err := runner.RenderDiagram(ctx, d, opts)
	sp.Stop()
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

// validateCommand creates the validate command, which checks a schema file
// and builds its graph without rendering.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schema.json>",
		Short: "Check a diagram schema without rendering it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := schema.DecodeFile(args[0])
			if err != nil {
				return err
			}
			g, err := diagram.Build(d, diagram.WithLogger(c.Logger))
			if err != nil {
				return err
			}

			printSuccess("%s is valid", StyleHighlight.Render(g.Name))
			printStats(g.NodeCount(), g.EdgeCount(), g.ClusterCount())
			printNextStep("Render it", "archdiagram render "+args[0])
			return nil
		},
	}
}

// typesCommand creates the types command, listing the node type registry.
func (c *CLI) typesCommand() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List supported node types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := typeRows(provider)
			if len(rows) == 0 {
				return fmt.Errorf("no node types for provider %q", provider)
			}
			fmt.Fprintln(cmd.OutOrStdout(), typesTable(rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "only list types of this provider (aws, programming)")
	return cmd
}

// typeRows returns name, category and provider for each registered kind,
// optionally filtered by provider.
func typeRows(provider string) [][]string {
	var rows [][]string
	for _, k := range nodetype.Kinds() {
		if provider != "" && !strings.EqualFold(string(k.Provider()), provider) {
			continue
		}
		rows = append(rows, []string{k.String(), k.Category(), string(k.Provider())})
	}
	return rows
}

func typesTable(rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Category", "Provider").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			default:
				return StyleDim
			}
		}).
		Render()
}

// printResult prints the outcome of a pipeline run.
func printResult(r *pipeline.Result) {
	printSuccess("Rendered %s %s", StyleHighlight.Render(r.Diagram.Name), StyleDim.Render("("+r.Stats.Total().Round(time.Millisecond).String()+")"))
	printStats(r.Stats.NodeCount, r.Stats.EdgeCount, r.Stats.ClusterCount)
	printFile(r.Path)
}
