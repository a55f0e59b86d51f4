package layout

import (
	"github.com/impactgraph/impactgraph/pkg/errors"
	"github.com/impactgraph/impactgraph/pkg/graph"
)

// Bands configures the horizontal geometry of a network layout. Each role
// occupies a fixed vertical band at its configured X coordinate, so funding
// reads left to right: grant, funded publications, citation ecosystem,
// treatment pathway, treatment.
//
// Treat Bands as immutable once constructed: [Position] only reads it, and
// [DefaultBands] returns a fresh value on every call so the defaults cannot
// be poisoned by callers.
type Bands struct {
	// X maps every role to the base X coordinate of its band.
	X map[graph.Role]float64

	// EcoOffsets are X offsets applied to ecosystem publications on top of
	// their base X, cycled by position so any ecosystem size gets the same
	// loose cluster shape. Empty means all ecosystem nodes sit at the base X.
	EcoOffsets []float64

	// VStep is the vertical distance between stacked nodes in a band.
	VStep float64
}

// Default band geometry.
const (
	DefaultXGrant            = -5.0
	DefaultXGrantFundedPub   = -2.5
	DefaultXEcosystemPub     = 0.0
	DefaultXTreatmentPathPub = 3.5
	DefaultXTreatment        = 6.0

	// DefaultVStep is the default vertical distance between stacked nodes.
	DefaultVStep = 1.0
)

// DefaultBands returns the standard band geometry.
// The returned value is fresh on every call; mutating it does not affect
// later calls.
func DefaultBands() Bands {
	return Bands{
		X: map[graph.Role]float64{
			graph.RoleGrant:            DefaultXGrant,
			graph.RoleGrantFundedPub:   DefaultXGrantFundedPub,
			graph.RoleEcosystemPub:     DefaultXEcosystemPub,
			graph.RoleTreatmentPathPub: DefaultXTreatmentPathPub,
			graph.RoleTreatment:        DefaultXTreatment,
		},
		EcoOffsets: []float64{-0.5, 0.5, 1.5, 0},
		VStep:      DefaultVStep,
	}
}

// Validate checks that the band configuration is usable: every known role
// has an X coordinate and the vertical step is positive.
func (b Bands) Validate() error {
	if b.X == nil {
		return errors.New(errors.ErrCodeInvalidBands, "no band X coordinates configured")
	}
	for _, role := range graph.Roles() {
		if _, ok := b.X[role]; !ok {
			return errors.New(errors.ErrCodeInvalidBands, "no band X coordinate for role %q", role)
		}
	}
	if b.VStep <= 0 {
		return errors.New(errors.ErrCodeInvalidBands, "vertical step must be positive, got %g", b.VStep)
	}
	return nil
}

// xFor returns the X coordinate for the i-th node of a role within its band.
// Ecosystem publications cycle through the configured offsets; all other
// roles sit exactly at their base X.
func (b Bands) xFor(role graph.Role, i int) float64 {
	x := b.X[role]
	if role == graph.RoleEcosystemPub && len(b.EcoOffsets) > 0 {
		x += b.EcoOffsets[i%len(b.EcoOffsets)]
	}
	return x
}
