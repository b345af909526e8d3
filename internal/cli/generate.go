package cli

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// generateCommand creates the generate command, which turns a description
// into a rendered diagram through the model API.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		flags      renderFlags
		schemaFile string
	)

	cmd := &cobra.Command{
		Use:   "generate <description>",
		Short: "Generate a diagram from a natural-language description",
		Long: `Generate a diagram from a natural-language description.

The description is sent to the configured model, which answers with a diagram
schema. The schema is validated and rendered like the render command does.
Requires OPENAI_API_KEY (or generator.api_key in the config file).`,
		Example: `  archdiagram generate "Two EC2 web servers behind an ALB, backed by RDS"
  archdiagram generate "A Lambda reading from SQS" -o out --save-schema lambda.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			description := strings.Join(args, " ")

			opts, err := flags.pipelineOptions()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(flags.renderOptions(), true)
			if err != nil {
				return err
			}

			sp := startSpinner(ctx, "Generating diagram...")
			result, err := runner.Execute(ctx, description, opts)
			sp.Stop()
			if err != nil {
				return err
			}

			printResult(result)
			if schemaFile != "" {
				if err := writeSchema(schemaFile, result.Diagram.Raw()); err != nil {
					return err
				}
				printFile(schemaFile)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&schemaFile, "save-schema", "", "also write the generated schema to this file")
	return cmd
}

func writeSchema(path string, raw map[string]any) error {
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
