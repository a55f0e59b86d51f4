package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "impact.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testTables() *store.Tables {
	return &store.Tables{
		Nodes: []graph.Node{
			{ID: "GRANT_1", NetworkID: 1, Role: graph.RoleGrant, Label: "Grant: Immunotherapy Research",
				Meta: map[string]string{"grant_id": "NIH-R01-123456"}},
			{ID: "PUB_1_1", NetworkID: 1, Role: graph.RoleGrantFundedPub},
			{ID: "TREAT_1", NetworkID: 1, Role: graph.RoleTreatment, Label: "CAR-T Cell Therapy"},
		},
		Edges: []graph.Edge{
			{Source: "GRANT_1", Target: "PUB_1_1", NetworkID: 1, Kind: graph.KindFundedBy},
			{Source: "TREAT_1", Target: "PUB_1_1", NetworkID: 1, Kind: graph.KindEnablesTreatment},
		},
		Summaries: []store.SummaryRow{
			{NetworkID: 1, Disease: "Cancer", TreatmentName: "CAR-T Cell Therapy",
				GrantID: "NIH-R01-123456", GrantYear: 2016, ApprovalYear: 2024,
				FundingAmount: 2500000, TotalPublications: 38, ResearchDuration: 8},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	want := testTables()
	if err := s.Replace(ctx, want); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := s.Tables(ctx)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
	if got.Fingerprint() != want.Fingerprint() {
		t.Error("fingerprint changed across round trip")
	}
}

func TestEmptyDatabase(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if len(got.Nodes) != 0 || len(got.Edges) != 0 || len(got.Summaries) != 0 {
		t.Errorf("fresh database not empty: %+v", got)
	}
}

func TestReplaceOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Replace(ctx, testTables()); err != nil {
		t.Fatalf("first Replace: %v", err)
	}

	small := &store.Tables{
		Nodes: []graph.Node{{ID: "GRANT_9", NetworkID: 9, Role: graph.RoleGrant}},
	}
	if err := s.Replace(ctx, small); err != nil {
		t.Fatalf("second Replace: %v", err)
	}

	got, err := s.Tables(ctx)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if len(got.Nodes) != 1 || got.Nodes[0].ID != "GRANT_9" {
		t.Errorf("nodes = %+v, want only GRANT_9", got.Nodes)
	}
	if len(got.Edges) != 0 || len(got.Summaries) != 0 {
		t.Errorf("stale rows survived: %d edges, %d summaries", len(got.Edges), len(got.Summaries))
	}
}

func TestRowOrderPreserved(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Insertion order is not sorted order; Tables must return it anyway.
	want := &store.Tables{
		Nodes: []graph.Node{
			{ID: "TREAT_1", NetworkID: 1, Role: graph.RoleTreatment},
			{ID: "GRANT_1", NetworkID: 1, Role: graph.RoleGrant},
			{ID: "PUB_1_1", NetworkID: 1, Role: graph.RoleGrantFundedPub},
		},
	}
	if err := s.Replace(ctx, want); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := s.Tables(ctx)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	for i := range want.Nodes {
		if got.Nodes[i].ID != want.Nodes[i].ID {
			t.Errorf("node %d = %s, want %s", i, got.Nodes[i].ID, want.Nodes[i].ID)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "impact.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Replace(ctx, testTables()); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Tables(ctx)
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	if len(got.Nodes) != 3 {
		t.Errorf("nodes after reopen = %d, want 3", len(got.Nodes))
	}
}
