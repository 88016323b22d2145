/*package integration generates the integration points used to evaluate
integrals over the cells of a mesh. Points either sit at fixed Gauss
quadrature locations or follow a swarm of tracer particles (PIC).*/
package integration

import (
	"fmt"
	"strings"

	"github.com/phil-mansfield/picswarm/lib/mesh"
	"github.com/phil-mansfield/picswarm/lib/particles"
	"github.com/phil-mansfield/picswarm/lib/swarm"
)

// Variant is the closed set of integration point generators.
type Variant int

const (
	Gauss Variant = iota
	GaussBorder
	PIC
)

var variantNames = []string{"Gauss", "GaussBorder", "PIC"}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variantNames[v]
}

// ParseVariant parses a variant name, ignoring case.
func ParseVariant(name string) (Variant, error) {
	for i := range variantNames {
		if strings.EqualFold(name, variantNames[i]) {
			return Variant(i), nil
		}
	}
	return 0, &UnknownVariantError{name}
}

// Generator populates a set of integration points.
type Generator interface {
	Variant() Variant
	// Repopulate recomputes the points and their weights. Gauss points are
	// the same every time; PIC points follow the current tracer layout.
	Repopulate() error
	// Points returns the current points. The pointer stays the same across
	// calls to Repopulate.
	Points() *Points
}

// Config holds the parameters used to construct a Generator.
type Config struct {
	// Name of the integration point store. Defaults to "integration".
	Name    string
	Variant Variant
	Layout  particles.Layout

	// PointsPerDirection is used by the Gauss variants. 0 means the default
	// for each cell's shape function order.
	PointsPerDirection int

	// The remaining fields are used by PIC.
	Weights WeightStrategy // Defaults to Constant.
	// ZeroWeightCells lets cells without points through Repopulate. It is
	// always on when the tracer swarm allows escape.
	ZeroWeightCells bool
	// Shared names tracer variables copied onto the points. Defaults to
	// the tracer coordinates.
	Shared []string
}

// New creates a generator over m. tracker is only used by PIC and may be
// nil otherwise.
func New(cfg Config, m mesh.Mesh, tracker *swarm.Swarm) (Generator, error) {
	if cfg.Name == "" {
		cfg.Name = "integration"
	}
	pts, err := newPoints(cfg.Name, m, cfg.Layout)
	if err != nil {
		return nil, err
	}

	switch cfg.Variant {
	case Gauss, GaussBorder:
		g, err := newGaussGenerator(cfg, pts)
		if err != nil {
			return nil, err
		}
		return g, nil
	case PIC:
		if tracker == nil {
			return nil, fmt.Errorf("The PIC integration point generator " +
				"needs a tracer swarm.")
		}
		g, err := newPICGenerator(cfg, pts, tracker)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return nil, fmt.Errorf("Integration variant %d is not valid.", int(cfg.Variant))
}
