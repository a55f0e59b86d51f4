package dot

import (
	"strings"
	"testing"

	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/style"
)

func testNetwork() *graph.Network {
	return &graph.Network{
		ID: 1,
		Nodes: []graph.Node{
			{ID: "GRANT_1", NetworkID: 1, Role: graph.RoleGrant, Label: "Grant: Immunotherapy",
				Meta: map[string]string{"year": "2016", "grant_id": "INST-R01-123456"}},
			{ID: "PUB_1_1", NetworkID: 1, Role: graph.RoleGrantFundedPub},
			{ID: "TREAT_1", NetworkID: 1, Role: graph.RoleTreatment, Label: "Treatment: CAR-T"},
		},
		Edges: []graph.Edge{
			{Source: "GRANT_1", Target: "PUB_1_1", NetworkID: 1, Kind: graph.KindFundedBy},
		},
	}
}

func TestToDOT(t *testing.T) {
	out, err := ToDOT(testNetwork(), style.Default(), Options{})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}

	if !strings.HasPrefix(out, "digraph impact {") {
		t.Errorf("missing digraph header: %.40s", out)
	}
	if !strings.Contains(out, "rankdir=LR;") {
		t.Error("missing rankdir")
	}
	if !strings.Contains(out, `"GRANT_1" [label="Grant: Immunotherapy", shape=box, fillcolor="#4299e1"];`) {
		t.Errorf("grant node line wrong:\n%s", out)
	}
	if !strings.Contains(out, `"TREAT_1" [label="Treatment: CAR-T", shape=hexagon`) {
		t.Error("treatment node line wrong")
	}
	// Unlabeled node falls back to id.
	if !strings.Contains(out, `"PUB_1_1" [label="PUB_1_1", shape=ellipse`) {
		t.Error("fallback label wrong")
	}
	// funded_by stroke rgba(74,85,104,0.8) -> #4A5568CC, width 3.
	if !strings.Contains(out, `"GRANT_1" -> "PUB_1_1" [color="#4A5568CC", penwidth=3.00];`) {
		t.Errorf("edge line wrong:\n%s", out)
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Error("unterminated graph")
	}
}

func TestToDOTDetailed(t *testing.T) {
	out, err := ToDOT(testNetwork(), style.Default(), Options{Detailed: true})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}

	// Metadata keys render sorted.
	if !strings.Contains(out, `label="Grant: Immunotherapy\ngrant_id: INST-R01-123456\nyear: 2016"`) {
		t.Errorf("detailed label wrong:\n%s", out)
	}
}

func TestToDOTMissingStyle(t *testing.T) {
	theme := style.Default()
	delete(theme.Markers, graph.RoleGrant)

	if _, err := ToDOT(testNetwork(), theme, Options{}); err == nil {
		t.Error("expected style lookup error")
	}
}

func TestDotColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"rgba(74, 85, 104, 0.8)", "#4A5568CC"},
		{"rgba(160,174,192,0.25)", "#A0AEC040"},
		{"rgba(99, 179, 237, 0.9)", "#63B3EDE6"},
		{"rgba(56, 178, 172, 0.8)", "#38B2ACCC"},
		{"#4299e1", "#4299e1"},
		{"white", "white"},
	}
	for _, tt := range tests {
		if got := dotColor(tt.in); got != tt.want {
			t.Errorf("dotColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
