// Package gen produces synthetic research-impact datasets.
//
// A generated dataset holds one or more networks, each tracing a grant
// through its funded publications and the surrounding citation
// ecosystem to an approved treatment. Generation is fully deterministic
// for a given seed and option set, so tests and demo environments can
// rely on stable fingerprints.
//
// The shape of each network follows the same recipe: one grant node,
// a handful of directly funded publications, a larger ecosystem of
// citing publications, and (for networks that reached approval) a short
// chain of treatment-pathway publications ending in the treatment
// itself. Guaranteed chains wire the treatment back to funded work
// through early ecosystem bridges, so every finished network has a
// complete pathway.
package gen

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/impactgraph/impactgraph/pkg/errors"
	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/store"
)

// DefaultSeed is the seed used when callers have no preference. Demo
// stores built from it always carry the same tables.
const DefaultSeed int64 = 42

// =============================================================================
// Options
// =============================================================================

// NetworkConfig describes one network to generate.
type NetworkConfig struct {
	Disease          string   `json:"disease"`
	TreatmentName    string   `json:"treatment_name"`
	GrantFocus       string   `json:"grant_focus"`
	Keywords         []string `json:"keywords"`
	ApprovalYear     int      `json:"approval_year"`
	GuaranteedChains int      `json:"guaranteed_chains"`
}

// HasTreatment reports whether this network reached an approved
// treatment. Networks without one get no pathway publications and no
// treatment node.
func (c NetworkConfig) HasTreatment() bool {
	return c.TreatmentName != "" && c.ApprovalYear > 0
}

// DefaultNetworks returns the three stock disease networks.
func DefaultNetworks() []NetworkConfig {
	return []NetworkConfig{
		{
			Disease:          "Cancer",
			TreatmentName:    "CAR-T Cell Therapy",
			GrantFocus:       "Immunotherapy Research",
			Keywords:         []string{"immunotherapy", "T-cell", "cancer", "oncology", "CAR-T"},
			ApprovalYear:     2024,
			GuaranteedChains: 1,
		},
		{
			Disease:          "Alzheimer's Disease",
			TreatmentName:    "Aducanumab Plus",
			GrantFocus:       "Neurodegenerative Disease Research",
			Keywords:         []string{"alzheimer", "amyloid", "neurodegenerative", "dementia", "brain"},
			ApprovalYear:     2023,
			GuaranteedChains: 2,
		},
		{
			Disease:          "Diabetes",
			TreatmentName:    "Smart Insulin Patch",
			GrantFocus:       "Metabolic Disease Innovation",
			Keywords:         []string{"diabetes", "insulin", "glucose", "metabolic", "endocrine"},
			ApprovalYear:     2025,
			GuaranteedChains: 3,
		},
	}
}

// Options configure dataset generation.
type Options struct {
	// Seed drives every random draw. The same seed and options always
	// produce byte-identical tables.
	Seed int64 `json:"seed"`

	// Networks to generate, ids assigned in order starting at 1.
	// Defaults to DefaultNetworks.
	Networks []NetworkConfig `json:"networks,omitempty"`

	// FundedPubs is the number of publications funded directly by each
	// grant. Defaults to 4.
	FundedPubs int `json:"funded_pubs,omitempty"`

	// EcosystemPubs is the size of each network's citation ecosystem.
	// Defaults to 25.
	EcosystemPubs int `json:"ecosystem_pubs,omitempty"`

	// PathwayPubs is the number of treatment-pathway publications per
	// finished network. Defaults to 3.
	PathwayPubs int `json:"pathway_pubs,omitempty"`
}

// SetDefaults fills in zero-valued fields.
func (o *Options) SetDefaults() {
	if o.Networks == nil {
		o.Networks = DefaultNetworks()
	}
	if o.FundedPubs == 0 {
		o.FundedPubs = 4
	}
	if o.EcosystemPubs == 0 {
		o.EcosystemPubs = 25
	}
	if o.PathwayPubs == 0 {
		o.PathwayPubs = 3
	}
}

// Validate checks option consistency. Call SetDefaults first.
func (o *Options) Validate() error {
	if len(o.Networks) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no networks configured")
	}
	if o.FundedPubs < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "funded_pubs must be at least 1, got %d", o.FundedPubs)
	}
	if o.EcosystemPubs < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "ecosystem_pubs must be at least 1, got %d", o.EcosystemPubs)
	}
	if o.PathwayPubs < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "pathway_pubs must be at least 1, got %d", o.PathwayPubs)
	}
	for i, cfg := range o.Networks {
		if cfg.Disease == "" {
			return errors.New(errors.ErrCodeInvalidInput, "network %d: disease is required", i+1)
		}
		if len(cfg.Keywords) < 3 {
			return errors.New(errors.ErrCodeInvalidInput,
				"network %d: at least 3 keywords required, got %d", i+1, len(cfg.Keywords))
		}
		if cfg.HasTreatment() && cfg.GuaranteedChains > o.EcosystemPubs {
			return errors.New(errors.ErrCodeInvalidInput,
				"network %d: %d guaranteed chains exceed %d ecosystem publications",
				i+1, cfg.GuaranteedChains, o.EcosystemPubs)
		}
	}
	return nil
}

// =============================================================================
// Generation
// =============================================================================

var authors = []string{
	"Dr. Sarah Johnson", "Dr. Michael Chen", "Dr. Emily Rodriguez", "Dr. David Kim",
	"Dr. Jennifer Martinez", "Dr. Robert Thompson", "Dr. Lisa Anderson", "Dr. James Wilson",
	"Dr. Maria Garcia", "Dr. Christopher Lee", "Dr. Amanda Taylor", "Dr. Daniel Brown",
	"Dr. Jessica Davis", "Dr. Matthew Miller", "Dr. Rachel White", "Dr. Andrew Jackson",
}

var journals = []string{
	"Nature", "Science", "Cell", "Nature Medicine", "Science Translational Medicine",
	"New England Journal of Medicine", "The Lancet", "Nature Biotechnology", "PNAS",
	"Cell Metabolism", "Nature Immunology", "Journal of Clinical Investigation",
}

var grantPrefixes = []string{"INST-R01", "INST-U01", "INST-R21", "INST-P01"}

// Generate builds the node, edge, and summary tables for opts.
func Generate(opts Options) (*store.Tables, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	g := &generator{
		rng:  rand.New(rand.NewSource(opts.Seed)),
		opts: opts,
	}

	tables := &store.Tables{}
	for i, cfg := range opts.Networks {
		g.network(tables, cfg, i+1)
	}
	return tables, nil
}

type generator struct {
	rng  *rand.Rand
	opts Options
}

// network appends one network's rows to tables.
func (g *generator) network(tables *store.Tables, cfg NetworkConfig, networkID int) {
	grantYear := g.between(2015, 2019)
	funding := int64(g.between(1500000, 3000000))
	grantID := g.pick(grantPrefixes) + "-" + strconv.Itoa(g.between(100000, 999999))

	horizon := cfg.ApprovalYear
	if !cfg.HasTreatment() {
		horizon = grantYear + 8
	}

	// Grant.
	grant := graph.Node{
		ID:        fmt.Sprintf("%s%d", graph.PrefixGrant, networkID),
		NetworkID: networkID,
		Role:      graph.RoleGrant,
		Label:     "Grant: " + cfg.GrantFocus,
		Meta: map[string]string{
			"grant_id":       grantID,
			"title":          cfg.GrantFocus + " Initiative",
			"year":           strconv.Itoa(grantYear),
			"funding_amount": strconv.FormatInt(funding, 10),
			"disease":        cfg.Disease,
			"pi_name":        g.pick(authors),
		},
	}
	tables.Nodes = append(tables.Nodes, grant)

	// Directly funded publications.
	funded := make([]string, 0, g.opts.FundedPubs)
	for i := 1; i <= g.opts.FundedPubs; i++ {
		id := fmt.Sprintf("%s%d_%d", graph.PrefixGrantFundedPub, networkID, i)
		year := g.between(grantYear+1, grantYear+3)
		tables.Nodes = append(tables.Nodes,
			g.publication(id, networkID, graph.RoleGrantFundedPub, cfg.Keywords, "basic", year))
		tables.Edges = append(tables.Edges, graph.Edge{
			Source: grant.ID, Target: id, NetworkID: networkID, Kind: graph.KindFundedBy,
		})
		funded = append(funded, id)
	}

	// Ecosystem publications, spread between the first funded work and
	// the horizon.
	ecoStart := grantYear + 2
	ecoSpan := horizon - ecoStart
	if ecoSpan < 1 {
		ecoSpan = 1
	}
	eco := make([]string, 0, g.opts.EcosystemPubs)
	ecoYears := make(map[string]int, g.opts.EcosystemPubs)
	for i := 1; i <= g.opts.EcosystemPubs; i++ {
		id := fmt.Sprintf("%s%d_%d", graph.PrefixEcosystemPub, networkID, i)
		year := ecoStart + g.rng.Intn(ecoSpan)
		phase := "basic"
		if g.rng.Intn(100) < 30 {
			phase = "translational"
		}
		tables.Nodes = append(tables.Nodes,
			g.publication(id, networkID, graph.RoleEcosystemPub, cfg.Keywords, phase, year))
		eco = append(eco, id)
		ecoYears[id] = year
	}

	// Pathway publications and the treatment itself, for finished
	// networks only.
	var pathway []string
	if cfg.HasTreatment() {
		for i := 1; i <= g.opts.PathwayPubs; i++ {
			id := fmt.Sprintf("%s%d_%d", graph.PrefixTreatmentPathPub, networkID, i)
			year := g.between(cfg.ApprovalYear-3, cfg.ApprovalYear-1)
			tables.Nodes = append(tables.Nodes,
				g.publication(id, networkID, graph.RoleTreatmentPathPub, cfg.Keywords, "treatment", year))
			pathway = append(pathway, id)
		}

		treatment := graph.Node{
			ID:        fmt.Sprintf("%s%d", graph.PrefixTreatment, networkID),
			NetworkID: networkID,
			Role:      graph.RoleTreatment,
			Label:     "Treatment: " + cfg.TreatmentName,
			Meta: map[string]string{
				"treatment_name": cfg.TreatmentName,
				"disease":        cfg.Disease,
				"approval_year":  strconv.Itoa(cfg.ApprovalYear),
				"phase":          "FDA Approved",
				"indication":     cfg.Disease + " Treatment",
			},
		}
		tables.Nodes = append(tables.Nodes, treatment)

		for _, id := range pathway {
			tables.Edges = append(tables.Edges, graph.Edge{
				Source: id, Target: treatment.ID, NetworkID: networkID, Kind: graph.KindEnablesTreatment,
			})
		}

		// Guaranteed chains: pathway publication -> early ecosystem
		// bridge -> funded publication. These make the pathway reach
		// funded work no matter what the probabilistic citations do.
		for c := 0; c < cfg.GuaranteedChains; c++ {
			src := pathway[c%len(pathway)]
			bridge := eco[c%len(eco)]
			tables.Edges = append(tables.Edges, graph.Edge{
				Source: src, Target: bridge, NetworkID: networkID, Kind: graph.KindLeadsToTreatment,
			})
			tables.Edges = append(tables.Edges, graph.Edge{
				Source: bridge, Target: funded[c%len(funded)], NetworkID: networkID, Kind: graph.KindCites,
			})
		}

		// Pathway publications lean on further ecosystem work too.
		for _, src := range pathway {
			seen := make(map[string]bool)
			for n := g.between(2, 4); n > 0; n-- {
				target := g.pick(eco)
				if seen[target] {
					continue
				}
				seen[target] = true
				tables.Edges = append(tables.Edges, graph.Edge{
					Source: src, Target: target, NetworkID: networkID, Kind: graph.KindLeadsToTreatment,
				})
			}
		}
	}

	// Ecosystem papers cite earlier ecosystem papers.
	for i, src := range eco {
		if i == 0 {
			continue
		}
		for n := g.rng.Intn(3); n > 0; n-- {
			target := eco[g.rng.Intn(i)]
			if ecoYears[target] > ecoYears[src] {
				continue
			}
			tables.Edges = append(tables.Edges, graph.Edge{
				Source: src, Target: target, NetworkID: networkID, Kind: graph.KindCites,
			})
		}
	}

	// Some ecosystem papers cite the funded work directly.
	for _, src := range eco {
		if g.rng.Intn(100) < 15 {
			tables.Edges = append(tables.Edges, graph.Edge{
				Source: src, Target: g.pick(funded), NetworkID: networkID, Kind: graph.KindCites,
			})
		}
	}

	// Summary row.
	row := store.SummaryRow{
		NetworkID:         networkID,
		Disease:           cfg.Disease,
		TreatmentName:     cfg.TreatmentName,
		GrantID:           grantID,
		GrantYear:         grantYear,
		FundingAmount:     funding,
		TotalPublications: g.opts.FundedPubs + g.opts.EcosystemPubs,
	}
	if cfg.HasTreatment() {
		row.ApprovalYear = cfg.ApprovalYear
		row.TotalPublications += g.opts.PathwayPubs
		row.ResearchDuration = cfg.ApprovalYear - grantYear
	}
	tables.Summaries = append(tables.Summaries, row)
}

// publication builds one publication node.
func (g *generator) publication(id string, networkID int, role graph.Role, keywords []string, phase string, year int) graph.Node {
	title := g.title(keywords, phase)
	return graph.Node{
		ID:        id,
		NetworkID: networkID,
		Role:      role,
		Label:     title,
		Meta: map[string]string{
			"pmid":          strconv.Itoa(g.between(10000000, 99999999)),
			"title":         title,
			"authors":       g.authorList(),
			"journal":       g.pick(journals),
			"year":          strconv.Itoa(year),
			"phase":         phase,
			"impact_factor": fmt.Sprintf("%.2f", 5+g.rng.Float64()*40),
		},
	}
}

// title builds a paper title from the network's keywords.
func (g *generator) title(keywords []string, phase string) string {
	switch phase {
	case "translational":
		switch g.rng.Intn(3) {
		case 0:
			return fmt.Sprintf("Translational %s research: From bench to bedside", keywords[0])
		case 1:
			return fmt.Sprintf("Clinical implications of %s in %s treatment", keywords[1], keywords[0])
		default:
			return fmt.Sprintf("Biomarker discovery for %s using %s approaches", keywords[0], keywords[2])
		}
	case "treatment":
		switch g.rng.Intn(2) {
		case 0:
			return fmt.Sprintf("Phase III trial of %s-directed therapy in %s", keywords[1], keywords[0])
		default:
			return fmt.Sprintf("Efficacy and safety of novel %s intervention", keywords[0])
		}
	default:
		switch g.rng.Intn(3) {
		case 0:
			return fmt.Sprintf("%s research: Novel therapeutic targets and mechanisms", keywords[0])
		case 1:
			return fmt.Sprintf("Molecular mechanisms of %s in %s pathogenesis", keywords[1], keywords[0])
		default:
			return fmt.Sprintf("Identification of %s pathways in %s development", keywords[2], keywords[0])
		}
	}
}

func (g *generator) authorList() string {
	n := g.between(2, 6)
	perm := g.rng.Perm(len(authors))
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ", "
		}
		out += authors[perm[i]]
	}
	return out
}

// between returns a uniform int in [lo, hi].
func (g *generator) between(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

func (g *generator) pick(s []string) string {
	return s[g.rng.Intn(len(s))]
}
