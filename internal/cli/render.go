package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	strataio "github.com/matzehuels/strata/pkg/io"
	"github.com/matzehuels/strata/pkg/pipeline"
)

// formatSuffix is the file suffix written for each output format.
var formatSuffix = map[string]string{
	pipeline.FormatJSON:     ".result.json",
	pipeline.FormatSVG:      ".svg",
	pipeline.FormatDOT:      ".dot",
	pipeline.FormatGraphviz: ".graphviz.svg",
	pipeline.FormatPNG:      ".png",
}

// renderCommand creates the render command for drawing a layout result.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		ports      bool
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Draw a computed layout",
		Long: `Draw a computed layout.

The render command takes a layout result (produced by 'layout') and writes it
in one or more formats:

  svg       drawing of the computed node positions and edge routes
  dot       Graphviz source with pinned node positions
  graphviz  SVG drawn by Graphviz from the DOT source
  png       PNG drawn by Graphviz from the DOT source
  json      the layout result itself, normalized

The layout carries all positions, so this step never recomputes a layout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			ro := cfg.Render
			if cmd.Flags().Changed("ports") {
				ro.Ports = ports
			}
			if cmd.Flags().Changed("detailed") {
				ro.Detailed = detailed
			}
			if !cmd.Flags().Changed("format") && ro.Format != "" {
				formatsStr = ro.Format
			}
			formats := parseFormats(formatsStr)
			for _, f := range formats {
				if err := pipeline.ValidateFormat(f); err != nil {
					return err
				}
			}
			if output != "" && len(formats) > 1 {
				return fmt.Errorf("--output takes a single format, got %d", len(formats))
			}
			return c.runRender(cmd, args[0], formats, ro, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, graphviz, png, json (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format only)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&ports, "ports", false, "mark ports (svg)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show layers and orders in labels (dot, graphviz, png)")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, formats []string, ro pipeline.RenderOptions, output string, noCache bool) error {
	ctx := cmd.Context()
	res, err := strataio.LoadResult(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var written []string
	anyHit := false
	for _, format := range formats {
		ro.Format = format
		data, hit, err := runner.Render(ctx, res, ro)
		if err != nil {
			return err
		}
		anyHit = anyHit || hit

		out := output
		if out == "" {
			out = outputPath(input, formatSuffix[format])
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		written = append(written, out)
	}

	printSuccess("Rendered %d file(s)", len(written))
	for _, out := range written {
		printFile(out)
	}
	printStats(res.Stats, anyHit)
	return nil
}
