package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/strata/pkg/graph"
	strataio "github.com/matzehuels/strata/pkg/io"
	"github.com/matzehuels/strata/pkg/layout"
	"github.com/matzehuels/strata/pkg/pipeline"
)

// layoutRun holds the non-layout flags of the layout command.
type layoutRun struct {
	output  string
	svg     string
	ports   bool
	noCache bool
	fixed   bool
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		run   layoutRun
		flags layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute a layered layout of a graph",
		Long: `Compute a layered layout of a graph.

The input is a JSON graph description with nodes, their sizes and ports, and
edges between nodes or ports. The output is a layout result (graph.layout.json
by default) with node positions and edge routes, which 'render' turns into
SVG or Graphviz output.

With --fixed the input is a layout result instead. Its layers, node orders and
port positions are kept, so only placement and routing are recomputed. This
reproduces the original drawing, or reroutes it with a different --routing.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], &flags, run)
		},
	}

	cmd.Flags().StringVarP(&run.output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&run.svg, "svg", "", "also write an SVG drawing to this file")
	cmd.Flags().BoolVar(&run.ports, "ports", false, "mark ports in the SVG drawing")
	cmd.Flags().BoolVar(&run.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&run.fixed, "fixed", false, "input is a layout result to reproduce")
	flags.register(cmd)

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(cmd *cobra.Command, input string, flags *layoutFlags, run layoutRun) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	opts := cfg.Layout
	opts.Logger = c.Logger

	g, err := c.loadInput(input, run.fixed, &opts)
	if err != nil {
		return err
	}
	laidOut := opts.Direction
	if err := flags.apply(cmd, &opts); err != nil {
		return err
	}
	if run.fixed {
		if opts.Direction != laidOut {
			printWarning("%s was laid out %s, redrawing it %s", input, laidOut, opts.Direction)
		}
		opts = opts.FixedLayout()
	}

	runner, err := c.newRunner(run.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, hit, err := computeLayout(ctx, runner, g, opts)
	if err != nil {
		return err
	}

	out := run.output
	if out == "" {
		out = outputPath(input, ".layout.json")
	}
	if err := strataio.ExportResult(res, out); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}

	printSuccess("Layout complete")
	printFile(out)

	if run.svg != "" {
		ro := cfg.Render
		ro.Format = pipeline.FormatSVG
		ro.Ports = ro.Ports || run.ports
		data, _, err := runner.Render(ctx, res, ro)
		if err != nil {
			return err
		}
		if err := os.WriteFile(run.svg, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", run.svg, err)
		}
		printFile(run.svg)
	}

	printStats(res.Stats, hit)
	printNewline()
	printNextStep("Render", appName+" render "+out)
	return nil
}

// loadInput reads a graph description, or with fixed a previous result whose
// direction then overrides opts.
func (c *CLI) loadInput(input string, fixed bool, opts *layout.Options) (*graph.Graph, error) {
	if !fixed {
		g, err := strataio.ImportGraph(input)
		if err != nil {
			return nil, fmt.Errorf("load graph %s: %w", input, err)
		}
		return g, nil
	}
	res, err := strataio.LoadResult(input)
	if err != nil {
		return nil, fmt.Errorf("load layout %s: %w", input, err)
	}
	g, err := strataio.ImportResult(res)
	if err != nil {
		return nil, fmt.Errorf("import layout %s: %w", input, err)
	}
	opts.Direction = res.Direction
	return g, nil
}

// computeLayout runs the layout behind a spinner.
func computeLayout(ctx context.Context, runner *pipeline.Runner, g *graph.Graph, opts layout.Options) (*layout.Result, bool, error) {
	prog := newProgress(runner.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d nodes...", g.NodeCount()))
	spinner.Start()

	res, hit, err := runner.Layout(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return nil, false, err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}
	prog.done(fmt.Sprintf("Laid out %d nodes", res.Stats.Nodes))
	prog.stages(res.Stats, hit)
	return res, hit, nil
}
