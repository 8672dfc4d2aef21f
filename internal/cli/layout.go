package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cfaller/planweave/pkg/config"
	"github.com/cfaller/planweave/pkg/errors"
	"github.com/cfaller/planweave/pkg/export"
	"github.com/cfaller/planweave/pkg/pipeline"
)

// errMissingInput is returned when neither a document file nor a configured
// remote source is available.
var errMissingInput = errors.New(errors.ErrCodeInvalidInput,
	"no input: pass a document file or configure [source.mongo] and use --dataset")

// layoutCommand creates the layout command for computing timeline layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noStore bool
		formats string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [roadmap.json|roadmap.yaml]",
		Short: "Compute a timeline layout from a planning document",
		Long: `Compute a timeline layout from a planning document.

The layout command reads a nested planning document (JSON or YAML), flattens
it into workstream tracks, places each milestone on the timeline, and resolves
the connection set. The output is a rendering document listing positioned
placements and classified edges.

Persisted drag adjustments for the document's dataset id are merged over the
computed defaults; use 'planweave overrides' to inspect or reset them.

When no file is given, the dataset is fetched from the configured MongoDB
source using --dataset.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			opts.Formats = parseFormats(formats)
			return c.runLayout(cmd, input, opts, output, noStore)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "ignore persisted overrides and disable caching")
	cmd.Flags().StringVarP(&formats, "formats", "f", "", "comma-separated output formats: json (default), dot, svg, png")

	// Layout flags
	cmd.Flags().StringVarP(&opts.Dataset, "dataset", "d", "", "dataset id (default: the document's own id)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if a cached layout exists")
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "frame width")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "frame height")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include deadlines and statuses in diagram labels")

	return cmd
}

// runLayout executes the pipeline and writes the requested artifacts.
func (c *CLI) runLayout(cmd *cobra.Command, input string, opts pipeline.Options, output string, noStore bool) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	applyConfigGeometry(&opts, cfg)

	loader, closeLoader, err := c.newLoader(cmd, cfg, input)
	if err != nil {
		return err
	}
	defer closeLoader()

	runner, err := c.newRunner(cmd, cfg, noStore)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, loader, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = defaultOutputPath(input, result.DatasetID)
	}

	spinner.Advance("Writing artifacts...")
	written, err := writeArtifacts(ctx, result, opts, outputPath)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Layout complete")
	for _, path := range written {
		printFile(path)
	}
	printStats("placements", result.Stats.Placements, result.Stats.Edges, result.CacheInfo.LayoutHit)
	for _, w := range result.Document.Warnings {
		printWarning("%s", w)
	}
	printNewline()
	printNextStep("Adjust", "planweave overrides adjust "+displayInput(input, result.DatasetID))

	return nil
}

// writeArtifacts produces one file per requested format, deriving sibling
// paths from the base output path.
func writeArtifacts(ctx context.Context, result *pipeline.Result, opts pipeline.Options, jsonPath string) ([]string, error) {
	var written []string
	base := strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath))

	for _, format := range opts.Formats {
		var (
			path string
			data []byte
			err  error
		)
		switch format {
		case pipeline.FormatJSON:
			path = jsonPath
			data, err = result.Document.Marshal()
		case pipeline.FormatDOT:
			path = base + ".dot"
			data = []byte(export.ToDOT(result.Graph, result.Layout, export.DOTOptions{Detailed: opts.Detailed}))
		case pipeline.FormatSVG:
			path = base + ".svg"
			dot := export.ToDOT(result.Graph, result.Layout, export.DOTOptions{Detailed: opts.Detailed})
			data, err = export.RenderSVG(ctx, dot)
		case pipeline.FormatPNG:
			path = base + ".png"
			dot := export.ToDOT(result.Graph, result.Layout, export.DOTOptions{Detailed: opts.Detailed})
			data, err = export.RenderPNG(ctx, dot)
		}
		if err != nil {
			return written, fmt.Errorf("render %s: %w", format, err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return written, fmt.Errorf("write output %s: %w", path, err)
		}
		written = append(written, path)
	}

	return written, nil
}

// applyConfigGeometry fills geometry options from config when flags left
// them unset.
func applyConfigGeometry(opts *pipeline.Options, cfg config.Config) {
	if opts.Width == 0 {
		opts.Width = cfg.Layout.Width
	}
	if opts.Height == 0 {
		opts.Height = cfg.Layout.Height
	}
	if opts.MarginX == 0 {
		opts.MarginX = cfg.Layout.MarginX
	}
	if opts.MarginY == 0 {
		opts.MarginY = cfg.Layout.MarginY
	}
}

// defaultOutputPath derives the output path from the input file name, or
// from the dataset id for remote loads.
func defaultOutputPath(input, datasetID string) string {
	if input != "" && !strings.Contains(input, "://") {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return base + ".layout.json"
	}
	return datasetID + ".layout.json"
}

// displayInput names the source for next-step hints.
func displayInput(input, datasetID string) string {
	if input != "" {
		return input
	}
	return "--dataset " + datasetID
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	return strings.Split(s, ",")
}
