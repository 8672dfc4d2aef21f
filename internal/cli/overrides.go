package cli

import (
	"fmt"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cfaller/planweave/pkg/layout/state"
	"github.com/cfaller/planweave/pkg/pipeline"
)

// overridesCommand groups the override management subcommands.
func (c *CLI) overridesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overrides",
		Short: "Manage persisted layout adjustments",
		Long: `Manage persisted layout adjustments.

Drag adjustments are stored per dataset and merged over computed defaults
on every layout pass. These subcommands inspect, edit, and clear them.`,
	}

	cmd.AddCommand(c.overridesListCommand())
	cmd.AddCommand(c.overridesResetCommand())
	cmd.AddCommand(c.overridesAdjustCommand())

	return cmd
}

// overridesListCommand prints the stored overrides for a dataset.
func (c *CLI) overridesListCommand() *cobra.Command {
	var dataset string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show stored overrides for a dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.newStore(cmd, cfg, false)
			if err != nil {
				return err
			}
			defer store.Close()

			overrides := state.New(store, dataset, c.Logger)
			overrides.Load(cmd.Context())

			if overrides.Empty() {
				printInfo("No overrides stored for dataset %q", dataset)
				return nil
			}

			printKeyValue("Dataset", dataset)
			printNewline()
			printSorted("Workstreams", overrides.Workstreams())
			printSorted("Placements", overrides.Placements())
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "dataset id")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

// overridesResetCommand clears all overrides for a dataset.
func (c *CLI) overridesResetCommand() *cobra.Command {
	var dataset string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear all overrides for a dataset",
		Long: `Clear all overrides for a dataset.

All placements revert to their computed default coordinates on the next
layout pass.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.newStore(cmd, cfg, false)
			if err != nil {
				return err
			}
			defer store.Close()

			overrides := state.New(store, dataset, c.Logger)
			overrides.Load(cmd.Context())
			if err := overrides.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset overrides: %w", err)
			}

			printSuccess("Overrides cleared for dataset %q", dataset)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "dataset id")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

// overridesAdjustCommand opens the interactive workstream nudge view.
func (c *CLI) overridesAdjustCommand() *cobra.Command {
	var noStore bool
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "adjust [roadmap.json|roadmap.yaml]",
		Short: "Interactively nudge workstream tracks",
		Long: `Interactively nudge workstream tracks up and down.

Opens a terminal view listing the dataset's workstream tracks with their
current vertical positions. Moves are local until committed; enter commits
the selected track's new position to the override store, recording each
placement on the track individually.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runAdjust(cmd, input, opts, noStore)
		},
	}

	cmd.Flags().StringVarP(&opts.Dataset, "dataset", "d", "", "dataset id (default: the document's own id)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "preview only, never write overrides")

	return cmd
}

func (c *CLI) runAdjust(cmd *cobra.Command, input string, opts pipeline.Options, noStore bool) error {
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
	opts.Refresh = true

	result, err := runner.Execute(ctx, loader, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	model := newAdjustModel(ctx, result)
	program := tea.NewProgram(model, tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("run adjust view: %w", err)
	}

	if m, ok := final.(adjustModel); ok && m.committed > 0 {
		printSuccess("Committed %d track adjustment(s) for dataset %q", m.committed, result.DatasetID)
		printNextStep("Recompute", "planweave layout "+displayInput(input, result.DatasetID))
	}
	return nil
}

// printSorted prints an override map in key order.
func printSorted(title string, m map[string]float64) {
	if len(m) == 0 {
		return
	}
	printInfo("%s", title)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		printDetail("%-40s y=%.1f", k, m[k])
	}
}
