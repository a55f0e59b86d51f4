package layout

import (
	"math"
	"testing"

	"github.com/impactgraph/impactgraph/pkg/errors"
	"github.com/impactgraph/impactgraph/pkg/graph"
)

const eps = 1e-9

// buildNetwork creates a network with the given number of nodes per role.
func buildNetwork(grants, funded, eco, pathway, treatments int) *graph.Network {
	net := &graph.Network{ID: 1}
	add := func(role graph.Role, prefix string, n int) {
		for i := 0; i < n; i++ {
			net.Nodes = append(net.Nodes, graph.Node{
				ID:        prefix + string(rune('A'+i)),
				NetworkID: 1,
				Role:      role,
			})
		}
	}
	add(graph.RoleGrant, "GRANT_", grants)
	add(graph.RoleGrantFundedPub, "PUB_", funded)
	add(graph.RoleEcosystemPub, "ECO_", eco)
	add(graph.RoleTreatmentPathPub, "TREAT_PUB_", pathway)
	add(graph.RoleTreatment, "TREAT_", treatments)
	return net
}

// byRole collects positioned nodes per role.
func byRole(pos []PositionedNode) map[graph.Role][]PositionedNode {
	out := make(map[graph.Role][]PositionedNode)
	for _, p := range pos {
		out[p.Role] = append(out[p.Role], p)
	}
	return out
}

func TestPositionSymmetricSpread(t *testing.T) {
	tests := []struct {
		name  string
		count int
		wantY []float64
	}{
		{name: "Single", count: 1, wantY: []float64{0}},
		{name: "Pair", count: 2, wantY: []float64{0.5, -0.5}},
		{name: "Triple", count: 3, wantY: []float64{1, 0, -1}},
		{name: "Four", count: 4, wantY: []float64{1.5, 0.5, -0.5, -1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := buildNetwork(0, tt.count, 0, 0, 0)
			// Grant bands still need to validate; add a lone grant so the
			// network is non-degenerate.
			net.Nodes = append(net.Nodes, graph.Node{ID: "GRANT_A", NetworkID: 1, Role: graph.RoleGrant})

			pos, err := Position(net, DefaultBands())
			if err != nil {
				t.Fatalf("Position: %v", err)
			}

			funded := byRole(pos)[graph.RoleGrantFundedPub]
			if len(funded) != tt.count {
				t.Fatalf("funded count = %d, want %d", len(funded), tt.count)
			}

			var sum float64
			for i, p := range funded {
				if math.Abs(p.Y-tt.wantY[i]) > eps {
					t.Errorf("y[%d] = %g, want %g", i, p.Y, tt.wantY[i])
				}
				sum += p.Y
			}
			if math.Abs(sum) > eps {
				t.Errorf("mean y = %g, want 0", sum/float64(tt.count))
			}
		})
	}
}

func TestPositionFirstNodeOnTop(t *testing.T) {
	net := buildNetwork(1, 3, 0, 0, 0)

	pos, err := Position(net, DefaultBands())
	if err != nil {
		t.Fatalf("Position: %v", err)
	}

	funded := byRole(pos)[graph.RoleGrantFundedPub]
	for i := 1; i < len(funded); i++ {
		if funded[i].Y >= funded[i-1].Y {
			t.Errorf("y order broken at %d: %g then %g", i, funded[i-1].Y, funded[i].Y)
		}
	}
}

func TestPositionBandSeparation(t *testing.T) {
	// With default bands every grant sits left of every funded pub, which
	// sits left of every ecosystem pub, and so on through the treatment.
	net := buildNetwork(1, 4, 30, 3, 1)

	pos, err := Position(net, DefaultBands())
	if err != nil {
		t.Fatalf("Position: %v", err)
	}

	roles := byRole(pos)
	order := graph.Roles()
	for i := 0; i < len(order)-1; i++ {
		left, right := roles[order[i]], roles[order[i+1]]
		for _, l := range left {
			for _, r := range right {
				if l.X >= r.X {
					t.Errorf("band overlap: %s at x=%g not left of %s at x=%g",
						l.ID, l.X, r.ID, r.X)
				}
			}
		}
	}
}

func TestPositionEcoOffsetsCycle(t *testing.T) {
	net := buildNetwork(1, 0, 6, 0, 0)

	pos, err := Position(net, DefaultBands())
	if err != nil {
		t.Fatalf("Position: %v", err)
	}

	eco := byRole(pos)[graph.RoleEcosystemPub]
	offsets := DefaultBands().EcoOffsets
	for i, p := range eco {
		want := DefaultXEcosystemPub + offsets[i%len(offsets)]
		if math.Abs(p.X-want) > eps {
			t.Errorf("eco[%d].X = %g, want %g", i, p.X, want)
		}
	}

	// The fifth node wraps back to the first offset.
	if math.Abs(eco[4].X-eco[0].X) > eps {
		t.Errorf("offset cycle broken: eco[4].X = %g, eco[0].X = %g", eco[4].X, eco[0].X)
	}
}

func TestPositionPreservesOrder(t *testing.T) {
	net := buildNetwork(1, 2, 3, 1, 1)

	pos, err := Position(net, DefaultBands())
	if err != nil {
		t.Fatalf("Position: %v", err)
	}

	if len(pos) != len(net.Nodes) {
		t.Fatalf("len = %d, want %d", len(pos), len(net.Nodes))
	}
	for i := range pos {
		if pos[i].ID != net.Nodes[i].ID {
			t.Errorf("pos[%d] = %s, want %s", i, pos[i].ID, net.Nodes[i].ID)
		}
	}
}

func TestPositionDeterministic(t *testing.T) {
	net := buildNetwork(1, 4, 30, 3, 1)
	bands := DefaultBands()

	a, err := Position(net, bands)
	if err != nil {
		t.Fatalf("Position: %v", err)
	}
	b, err := Position(net, bands)
	if err != nil {
		t.Fatalf("Position: %v", err)
	}

	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y {
			t.Errorf("position %d differs between runs: (%g,%g) vs (%g,%g)",
				i, a[i].X, a[i].Y, b[i].X, b[i].Y)
		}
	}
}

func TestPositionUnknownRole(t *testing.T) {
	net := &graph.Network{
		ID: 1,
		Nodes: []graph.Node{
			{ID: "X_1", NetworkID: 1, Role: "committee"},
		},
	}

	_, err := Position(net, DefaultBands())
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
	if !errors.Is(err, errors.ErrCodeUnknownRole) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeUnknownRole)
	}
}

func TestBandsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Bands)
		wantErr bool
	}{
		{name: "Default", mutate: func(b *Bands) {}, wantErr: false},
		{
			name:    "MissingRole",
			mutate:  func(b *Bands) { delete(b.X, graph.RoleTreatment) },
			wantErr: true,
		},
		{
			name:    "ZeroStep",
			mutate:  func(b *Bands) { b.VStep = 0 },
			wantErr: true,
		},
		{
			name:    "NilX",
			mutate:  func(b *Bands) { b.X = nil },
			wantErr: true,
		},
		{
			name:    "NoEcoOffsets",
			mutate:  func(b *Bands) { b.EcoOffsets = nil },
			wantErr: false, // all eco nodes at base X is valid
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := DefaultBands()
			tt.mutate(&b)

			err := b.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultBandsFresh(t *testing.T) {
	a := DefaultBands()
	a.X[graph.RoleGrant] = 100

	b := DefaultBands()
	if b.X[graph.RoleGrant] != DefaultXGrant {
		t.Error("DefaultBands shares state between calls")
	}
}

func TestBounds(t *testing.T) {
	pos := []PositionedNode{
		{X: -5, Y: 0},
		{X: 6, Y: 1.5},
		{X: 0, Y: -2},
	}

	minX, minY, maxX, maxY := Bounds(pos)
	if minX != -5 || minY != -2 || maxX != 6 || maxY != 1.5 {
		t.Errorf("Bounds = (%g, %g, %g, %g), want (-5, -2, 6, 1.5)", minX, minY, maxX, maxY)
	}
}

func TestBoundsEmpty(t *testing.T) {
	minX, minY, maxX, maxY := Bounds(nil)
	if minX != 0 || minY != 0 || maxX != 0 || maxY != 0 {
		t.Errorf("Bounds(nil) = (%g, %g, %g, %g), want zeros", minX, minY, maxX, maxY)
	}
}
