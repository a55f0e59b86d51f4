package scene

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/layout"
	"github.com/impactgraph/impactgraph/pkg/style"
)

// fullNetwork builds a network with every role and edge kind: one grant
// funding two publications, a citing ecosystem, and a pathway publication
// that leads back to the funded work and enables a treatment.
func fullNetwork(t *testing.T) (*graph.Network, []layout.PositionedNode) {
	t.Helper()

	net := &graph.Network{
		ID: 1,
		Nodes: []graph.Node{
			{ID: "GRANT_1", NetworkID: 1, Role: graph.RoleGrant, Label: "NIH Grant"},
			{ID: "PUB_1_1", NetworkID: 1, Role: graph.RoleGrantFundedPub},
			{ID: "PUB_1_2", NetworkID: 1, Role: graph.RoleGrantFundedPub},
			{ID: "ECO_1_1", NetworkID: 1, Role: graph.RoleEcosystemPub},
			{ID: "ECO_1_2", NetworkID: 1, Role: graph.RoleEcosystemPub},
			{ID: "TREAT_PUB_1_1", NetworkID: 1, Role: graph.RoleTreatmentPathPub},
			{ID: "TREAT_1", NetworkID: 1, Role: graph.RoleTreatment, Label: "CAR-T"},
		},
		Edges: []graph.Edge{
			{Source: "GRANT_1", Target: "PUB_1_1", NetworkID: 1, Kind: graph.KindFundedBy},
			{Source: "GRANT_1", Target: "PUB_1_2", NetworkID: 1, Kind: graph.KindFundedBy},
			{Source: "ECO_1_1", Target: "PUB_1_1", NetworkID: 1, Kind: graph.KindCites},
			{Source: "ECO_1_2", Target: "PUB_1_2", NetworkID: 1, Kind: graph.KindCites},
			{Source: "TREAT_PUB_1_1", Target: "PUB_1_1", NetworkID: 1, Kind: graph.KindLeadsToTreatment},
			{Source: "TREAT_PUB_1_1", Target: "TREAT_1", NetworkID: 1, Kind: graph.KindEnablesTreatment},
		},
	}

	pos, err := layout.Position(net, layout.DefaultBands())
	if err != nil {
		t.Fatalf("Position: %v", err)
	}
	return net, pos
}

func TestComposeFullNetwork(t *testing.T) {
	net, pos := fullNetwork(t)

	s, err := Compose(net, pos, style.Default())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	if s.NetworkID != 1 {
		t.Errorf("NetworkID = %d, want 1", s.NetworkID)
	}

	// All five roles present, in canonical order.
	var roles []graph.Role
	for _, tr := range s.NodeTraces {
		roles = append(roles, tr.Role)
	}
	if !reflect.DeepEqual(roles, graph.Roles()) {
		t.Errorf("node trace roles = %v, want %v", roles, graph.Roles())
	}

	// All four kinds present, in salience order.
	var kinds []graph.EdgeKind
	for _, tr := range s.EdgeTraces {
		kinds = append(kinds, tr.Kind)
	}
	if !reflect.DeepEqual(kinds, Salience()) {
		t.Errorf("edge trace kinds = %v, want %v", kinds, Salience())
	}

	if !s.Summary.PathwayComplete {
		t.Error("PathwayComplete = false, want true")
	}
	if s.Summary.NodeCount != 7 || s.Summary.EdgeCount != 6 {
		t.Errorf("summary counts = (%d, %d), want (7, 6)",
			s.Summary.NodeCount, s.Summary.EdgeCount)
	}
	if s.Summary.CountsByRole[graph.RoleEcosystemPub] != 2 {
		t.Errorf("ecosystem count = %d, want 2", s.Summary.CountsByRole[graph.RoleEcosystemPub])
	}
	if s.Summary.CountsByKind[graph.KindCites] != 2 {
		t.Errorf("cites count = %d, want 2", s.Summary.CountsByKind[graph.KindCites])
	}
}

func TestComposeEdgeCoordinateTriples(t *testing.T) {
	net, pos := fullNetwork(t)

	s, err := Compose(net, pos, style.Default())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	funded, ok := s.EdgeTraceFor(graph.KindFundedBy)
	if !ok {
		t.Fatal("no funded_by trace")
	}

	// Two funded_by edges, three coordinates each.
	if len(funded.X) != 6 || len(funded.Y) != 6 {
		t.Fatalf("coords = (%d, %d), want (6, 6)", len(funded.X), len(funded.Y))
	}
	if funded.Len() != 2 {
		t.Errorf("Len = %d, want 2", funded.Len())
	}
	for i := 2; i < len(funded.X); i += 3 {
		if !math.IsNaN(funded.X[i]) || !math.IsNaN(funded.Y[i]) {
			t.Errorf("separator at %d is (%g, %g), want NaN", i, funded.X[i], funded.Y[i])
		}
	}

	// First segment starts at the grant band.
	if funded.X[0] != layout.DefaultXGrant {
		t.Errorf("segment start x = %g, want %g", funded.X[0], layout.DefaultXGrant)
	}
	if funded.X[1] != layout.DefaultXGrantFundedPub {
		t.Errorf("segment end x = %g, want %g", funded.X[1], layout.DefaultXGrantFundedPub)
	}
}

func TestComposeNoPathway(t *testing.T) {
	// Grant and publications only: no pathway pubs, no treatment.
	net := &graph.Network{
		ID: 2,
		Nodes: []graph.Node{
			{ID: "GRANT_2", NetworkID: 2, Role: graph.RoleGrant},
			{ID: "PUB_2_1", NetworkID: 2, Role: graph.RoleGrantFundedPub},
			{ID: "ECO_2_1", NetworkID: 2, Role: graph.RoleEcosystemPub},
		},
		Edges: []graph.Edge{
			{Source: "GRANT_2", Target: "PUB_2_1", NetworkID: 2, Kind: graph.KindFundedBy},
			{Source: "ECO_2_1", Target: "PUB_2_1", NetworkID: 2, Kind: graph.KindCites},
		},
	}
	pos, err := layout.Position(net, layout.DefaultBands())
	if err != nil {
		t.Fatalf("Position: %v", err)
	}

	s, err := Compose(net, pos, style.Default())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	if s.Summary.PathwayComplete {
		t.Error("PathwayComplete = true, want false")
	}
	if _, ok := s.EdgeTraceFor(graph.KindLeadsToTreatment); ok {
		t.Error("unexpected leads_to_treatment trace")
	}
	if _, ok := s.EdgeTraceFor(graph.KindEnablesTreatment); ok {
		t.Error("unexpected enables_treatment trace")
	}
	if len(s.EdgeTraces) != 2 {
		t.Errorf("edge traces = %d, want 2", len(s.EdgeTraces))
	}
}

func TestComposeDisconnectedTreatment(t *testing.T) {
	// A pathway edge exists, but the treatment's component never touches a
	// grant-funded publication, so the pathway is not complete.
	net := &graph.Network{
		ID: 3,
		Nodes: []graph.Node{
			{ID: "GRANT_3", NetworkID: 3, Role: graph.RoleGrant},
			{ID: "PUB_3_1", NetworkID: 3, Role: graph.RoleGrantFundedPub},
			{ID: "TREAT_PUB_3_1", NetworkID: 3, Role: graph.RoleTreatmentPathPub},
			{ID: "TREAT_3", NetworkID: 3, Role: graph.RoleTreatment},
		},
		Edges: []graph.Edge{
			{Source: "GRANT_3", Target: "PUB_3_1", NetworkID: 3, Kind: graph.KindFundedBy},
			{Source: "TREAT_PUB_3_1", Target: "TREAT_3", NetworkID: 3, Kind: graph.KindEnablesTreatment},
		},
	}
	pos, err := layout.Position(net, layout.DefaultBands())
	if err != nil {
		t.Fatalf("Position: %v", err)
	}

	s, err := Compose(net, pos, style.Default())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	if s.Summary.PathwayComplete {
		t.Error("PathwayComplete = true for disconnected treatment, want false")
	}
}

func TestComposeDeterministic(t *testing.T) {
	net, pos := fullNetwork(t)
	theme := style.Default()

	a, err := Compose(net, pos, theme)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	b, err := Compose(net, pos, theme)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	// NaN != NaN, so compare serialized form.
	aj, err := Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	bj, err := Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(aj) != string(bj) {
		t.Error("repeated compositions differ")
	}
}

func TestComposeMissingStyle(t *testing.T) {
	net, pos := fullNetwork(t)

	theme := style.Default()
	delete(theme.Markers, graph.RoleTreatment)

	_, err := Compose(net, pos, theme)
	if err == nil {
		t.Fatal("expected style lookup error")
	}
	var lookup *style.LookupError
	if !errors.As(err, &lookup) {
		t.Fatalf("error type = %T, want *style.LookupError", err)
	}
	if lookup.Key != "treatment" {
		t.Errorf("lookup key = %q, want treatment", lookup.Key)
	}
}

func TestComposeMissingStrokeStyle(t *testing.T) {
	net, pos := fullNetwork(t)

	theme := style.Default()
	delete(theme.Strokes, graph.KindCites)

	_, err := Compose(net, pos, theme)
	if err == nil {
		t.Fatal("expected style lookup error")
	}
	var lookup *style.LookupError
	if !errors.As(err, &lookup) {
		t.Fatalf("error type = %T, want *style.LookupError", err)
	}
	if lookup.Table != style.TableStrokes {
		t.Errorf("lookup table = %q, want %q", lookup.Table, style.TableStrokes)
	}
}

func TestComposePositionMismatch(t *testing.T) {
	net, pos := fullNetwork(t)

	_, err := Compose(net, pos[:3], style.Default())
	if err == nil {
		t.Fatal("expected error for truncated positions")
	}
}

func TestCoordsJSONRoundTrip(t *testing.T) {
	in := Coords{1.5, -2, math.NaN(), 0}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := "[1.5,-2,null,0]"; string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	var out Coords
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	if !math.IsNaN(out[2]) {
		t.Errorf("out[2] = %g, want NaN", out[2])
	}
	if out[0] != 1.5 || out[1] != -2 || out[3] != 0 {
		t.Errorf("values = %v, want [1.5 -2 NaN 0]", out)
	}
}

func TestSceneMarshalContainsNulls(t *testing.T) {
	net, pos := fullNetwork(t)

	s, err := Compose(net, pos, style.Default())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	data, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), "null") {
		t.Error("marshaled scene has no null separators")
	}

	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(back.EdgeTraces) != len(s.EdgeTraces) {
		t.Errorf("edge traces = %d, want %d", len(back.EdgeTraces), len(s.EdgeTraces))
	}
}

func TestSalienceOrder(t *testing.T) {
	want := []graph.EdgeKind{
		graph.KindCites,
		graph.KindFundedBy,
		graph.KindEnablesTreatment,
		graph.KindLeadsToTreatment,
	}
	if got := Salience(); !reflect.DeepEqual(got, want) {
		t.Errorf("Salience() = %v, want %v", got, want)
	}
}
