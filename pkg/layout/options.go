package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/strata/pkg/cycle"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layering"
	"github.com/matzehuels/strata/pkg/routing"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultNodeSpacing  = 20.0
	DefaultLayerSpacing = 40.0
	DefaultEdgeSpacing  = 10.0
	DefaultIterations   = 24
	DefaultRestarts     = 1
	DefaultSeed         = uint64(1)
	DefaultMinNodeSize  = 1.0

	// MinSpacing is what negative spacings are clamped to.
	MinSpacing = 1.0
)

// Ordering selects how nodes are ordered within layers.
type Ordering string

const (
	// Sweep minimizes crossings by layer sweeps.
	Sweep Ordering = "sweep"
	// FixedOrder keeps the order given by node positions or Node.Order.
	FixedOrder Ordering = "fixed"
)

// ParseOrdering validates an ordering name. The empty string is Sweep.
func ParseOrdering(s string) (Ordering, error) {
	switch Ordering(s) {
	case "":
		return Sweep, nil
	case Sweep, FixedOrder:
		return Ordering(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidOptions, "unknown ordering %q", s)
}

// =============================================================================
// Options
// =============================================================================

// Options configures a layout run. It is read from JSON in API requests and
// from TOML config files by the CLI.
type Options struct {
	Direction    graph.Direction `json:"direction" toml:"direction"`
	NodeSpacing  float64         `json:"node_spacing,omitempty" toml:"node_spacing"`
	LayerSpacing float64         `json:"layer_spacing,omitempty" toml:"layer_spacing"`
	EdgeSpacing  float64         `json:"edge_spacing,omitempty" toml:"edge_spacing"`

	// CrossingMinimizationIterations bounds the sweeps of each restart.
	CrossingMinimizationIterations int `json:"crossing_minimization_iterations,omitempty" toml:"crossing_minimization_iterations"`
	// FixedPortOrder keeps ports where they are declared or first placed.
	FixedPortOrder bool `json:"fixed_port_order,omitempty" toml:"fixed_port_order"`

	Restarts int    `json:"restarts,omitempty" toml:"restarts"`
	Seed     uint64 `json:"seed,omitempty" toml:"seed"`

	Routing       routing.Mode      `json:"routing,omitempty" toml:"routing"`
	CycleBreaking cycle.Strategy    `json:"cycle_breaking,omitempty" toml:"cycle_breaking"`
	Layering      layering.Strategy `json:"layering,omitempty" toml:"layering"`
	Ordering      Ordering          `json:"ordering,omitempty" toml:"ordering"`

	// SeparateComponents lays out weakly connected components on their own
	// and packs them side by side. Nil means true.
	SeparateComponents *bool `json:"separate_components,omitempty" toml:"separate_components"`
	// Parallel lays out components and crossing restarts concurrently.
	Parallel bool `json:"parallel,omitempty" toml:"parallel"`

	// MinNodeSize is what zero or negative node extents are clamped to.
	MinNodeSize float64 `json:"min_node_size,omitempty" toml:"min_node_size"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults rejects unknown strategy names, fills in defaults
// for unset values and clamps negative ones with a warning. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	var err error
	if o.Direction.String() == "invalid" {
		return errors.New(errors.ErrCodeInvalidOptions, "unknown direction %d", o.Direction)
	}
	if o.Routing, err = routing.ParseMode(string(o.Routing)); err != nil {
		return err
	}
	if o.CycleBreaking, err = cycle.ParseStrategy(string(o.CycleBreaking)); err != nil {
		return err
	}
	if o.Layering, err = layering.ParseStrategy(string(o.Layering)); err != nil {
		return err
	}
	if o.Ordering, err = ParseOrdering(string(o.Ordering)); err != nil {
		return err
	}

	o.NodeSpacing = o.spacing("node_spacing", o.NodeSpacing, DefaultNodeSpacing)
	o.LayerSpacing = o.spacing("layer_spacing", o.LayerSpacing, DefaultLayerSpacing)
	o.EdgeSpacing = o.spacing("edge_spacing", o.EdgeSpacing, DefaultEdgeSpacing)
	o.MinNodeSize = o.spacing("min_node_size", o.MinNodeSize, DefaultMinNodeSize)

	switch {
	case o.CrossingMinimizationIterations == 0:
		o.CrossingMinimizationIterations = DefaultIterations
	case o.CrossingMinimizationIterations < 0:
		o.Logger.Warn("clamping crossing minimization iterations", "given", o.CrossingMinimizationIterations, "used", 1)
		o.CrossingMinimizationIterations = 1
	}
	switch {
	case o.Restarts == 0:
		o.Restarts = DefaultRestarts
	case o.Restarts < 0:
		o.Logger.Warn("clamping restarts", "given", o.Restarts, "used", 1)
		o.Restarts = 1
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.SeparateComponents == nil {
		separate := true
		o.SeparateComponents = &separate
	}

	o.validated = true
	return nil
}

func (o *Options) spacing(name string, v, def float64) float64 {
	switch {
	case v == 0:
		return def
	case v < 0:
		o.Logger.Warn("clamping degenerate value", "option", name, "given", v, "used", MinSpacing)
		return MinSpacing
	}
	return v
}

// Separate reports whether components are laid out independently.
func (o *Options) Separate() bool {
	return o.SeparateComponents == nil || *o.SeparateComponents
}

// Orthogonal reports whether edges are routed with axis-parallel segments.
func (o *Options) Orthogonal() bool {
	return o.Routing == "" || o.Routing == routing.Orthogonal
}

// FixedLayout returns a copy of o set up to reproduce a previous result read
// back with io.ImportResult: layers, orders and ports stay as given.
func (o *Options) FixedLayout() Options {
	c := *o
	c.Layering = layering.Fixed
	c.Ordering = FixedOrder
	c.FixedPortOrder = true
	c.validated = false
	return c
}
