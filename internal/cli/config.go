package cli

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout"
	"github.com/matzehuels/strata/pkg/pipeline"
)

// defaultConfigFile is read from the working directory when --config is not
// given.
const defaultConfigFile = appName + ".toml"

// Config is the content of a strata.toml file:
//
//	[layout]
//	direction = "down"
//	routing = "orthogonal"
//	node_spacing = 30
//
//	[render]
//	format = "svg"
//	ports = true
//
//	[server]
//	addr = ":8080"
//	redis = "localhost:6379"
type Config struct {
	Layout layout.Options         `toml:"layout"`
	Render pipeline.RenderOptions `toml:"render"`
	Server ServerConfig           `toml:"server"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr    string   `toml:"addr"`
	Redis   string   `toml:"redis"`
	Prefix  string   `toml:"cache_prefix"`
	Timeout duration `toml:"timeout"`
}

// duration reads "30s"-style values from TOML.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOptions, err, "invalid duration %q", b)
	}
	d.Duration = v
	return nil
}

// loadConfig reads the config file at path. An empty path reads
// ./strata.toml when it exists and returns an empty Config otherwise. Keys
// the Config does not know are rejected so that typos do not pass silently.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return cfg, nil
		}
		path = defaultConfigFile
	}
	if err := errors.ValidatePath(path); err != nil {
		return cfg, err
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s not found", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidOptions, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidOptions, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// =============================================================================
// Layout Flags
// =============================================================================

// layoutFlags holds the layout options settable on the command line. Only
// flags the user actually passed override the config file.
type layoutFlags struct {
	direction     string
	routing       string
	cycleBreaking string
	layering      string
	ordering      string
	nodeSpacing   float64
	layerSpacing  float64
	edgeSpacing   float64
	iterations    int
	restarts      int
	seed          uint64
	fixedPorts    bool
	noSeparate    bool
	parallel      bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.direction, "direction", "d", "right", "layout direction: right, down, left, up")
	fs.StringVarP(&f.routing, "routing", "r", "orthogonal", "edge routing: orthogonal, polyline")
	fs.StringVar(&f.cycleBreaking, "cycle-breaking", "dfs", "cycle breaking: dfs, greedy")
	fs.StringVar(&f.layering, "layering", "longest-path", "layer assignment: longest-path, min-width, fixed")
	fs.StringVar(&f.ordering, "ordering", "sweep", "node ordering: sweep, fixed")
	fs.Float64Var(&f.nodeSpacing, "node-spacing", layout.DefaultNodeSpacing, "gap between nodes in a layer")
	fs.Float64Var(&f.layerSpacing, "layer-spacing", layout.DefaultLayerSpacing, "gap between layers")
	fs.Float64Var(&f.edgeSpacing, "edge-spacing", layout.DefaultEdgeSpacing, "gap between parallel edge segments")
	fs.IntVar(&f.iterations, "iterations", layout.DefaultIterations, "crossing minimization sweeps")
	fs.IntVar(&f.restarts, "restarts", layout.DefaultRestarts, "crossing minimization restarts")
	fs.Uint64Var(&f.seed, "seed", layout.DefaultSeed, "seed for randomized restarts")
	fs.BoolVar(&f.fixedPorts, "fixed-port-order", false, "keep port offsets as given")
	fs.BoolVar(&f.noSeparate, "no-separate", false, "lay out all components together")
	fs.BoolVar(&f.parallel, "parallel", false, "lay out components concurrently")
}

// apply overrides opts with every flag set on cmd.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *layout.Options) error {
	changed := cmd.Flags().Changed
	if changed("direction") {
		d, err := graph.ParseDirection(f.direction)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidOptions, err, "--direction")
		}
		opts.Direction = d
	}
	setString := func(name string, dst *string, v string) {
		if changed(name) {
			*dst = v
		}
	}
	// Strategy names are checked by Options.ValidateAndSetDefaults.
	setString("routing", (*string)(&opts.Routing), f.routing)
	setString("cycle-breaking", (*string)(&opts.CycleBreaking), f.cycleBreaking)
	setString("layering", (*string)(&opts.Layering), f.layering)
	setString("ordering", (*string)(&opts.Ordering), f.ordering)

	if changed("node-spacing") {
		opts.NodeSpacing = f.nodeSpacing
	}
	if changed("layer-spacing") {
		opts.LayerSpacing = f.layerSpacing
	}
	if changed("edge-spacing") {
		opts.EdgeSpacing = f.edgeSpacing
	}
	if changed("iterations") {
		opts.CrossingMinimizationIterations = f.iterations
	}
	if changed("restarts") {
		opts.Restarts = f.restarts
	}
	if changed("seed") {
		opts.Seed = f.seed
	}
	if changed("fixed-port-order") {
		opts.FixedPortOrder = f.fixedPorts
	}
	if changed("no-separate") {
		separate := !f.noSeparate
		opts.SeparateComponents = &separate
	}
	if changed("parallel") {
		opts.Parallel = f.parallel
	}
	return opts.ValidateAndSetDefaults()
}
