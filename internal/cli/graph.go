package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cfaller/planweave/pkg/pipeline"
)

// graphCommand creates the graph command for structural diagram export.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output  string
		formats string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "graph [roadmap.json|roadmap.yaml]",
		Short: "Export the planning graph as a DOT, SVG, or PNG diagram",
		Long: `Export the planning graph as a structural diagram.

Unlike 'layout', which produces timeline coordinates, 'graph' renders the
relationships themselves: workstream clusters, milestones, and the resolved
connection set, using Graphviz. Duplicate placements collapse back into
their canonical milestones.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if formats == "" {
				formats = pipeline.FormatSVG
			}
			opts.Formats = parseFormats(formats)
			opts.Refresh = true
			return c.runGraph(cmd, input, opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file base (default: <input>.graph.<format>)")
	cmd.Flags().StringVarP(&formats, "formats", "f", "", "comma-separated output formats: svg (default), dot, png")
	cmd.Flags().StringVarP(&opts.Dataset, "dataset", "d", "", "dataset id (default: the document's own id)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include deadlines and statuses in node labels")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, input string, opts pipeline.Options, output string) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	loader, closeLoader, err := c.newLoader(cmd, cfg, input)
	if err != nil {
		return err
	}
	defer closeLoader()

	runner, err := c.newRunner(cmd, cfg, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering graph...")
	spinner.Start()

	result, err := runner.Execute(ctx, loader, opts)
	if err != nil {
		spinner.StopWithError("Graph export failed")
		return fmt.Errorf("extract graph: %w", err)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(defaultOutputPath(input, result.DatasetID), ".layout.json") + ".graph.json"
	}
	spinner.Advance("Writing artifacts...")
	written, err := writeArtifacts(ctx, result, opts, outputPath)
	if err != nil {
		spinner.StopWithError("Graph export failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Graph export complete")
	for _, path := range written {
		printFile(path)
	}
	printStats("milestones", result.Stats.Milestones, result.Stats.Edges, false)

	return nil
}
