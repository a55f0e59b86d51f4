package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/impactgraph/impactgraph/pkg/errors"
	"github.com/impactgraph/impactgraph/pkg/graph"
)

// =============================================================================
// CSV Store
// =============================================================================

// File names inside a CSV store directory.
const (
	csvNodesFile     = "nodes.csv"
	csvEdgesFile     = "edges.csv"
	csvSummariesFile = "summary.csv"
)

// CSV is a Store backed by a directory of three CSV files: nodes.csv,
// edges.csv, and summary.csv. Node metadata beyond the fixed columns is
// kept as a JSON object in the final column.
type CSV struct {
	dir string
}

// NewCSV creates a CSV store rooted at dir. The directory is created on
// the first Replace; Tables on a missing directory fails with
// ErrCodeFileNotFound.
func NewCSV(dir string) *CSV {
	return &CSV{dir: dir}
}

// Dir returns the store's root directory.
func (c *CSV) Dir() string {
	return c.dir
}

// TableFiles lists the file names a CSV store keeps its tables in.
// File watchers use this to ignore unrelated files in the directory.
func TableFiles() []string {
	return []string{csvNodesFile, csvEdgesFile, csvSummariesFile}
}

// Tables reads all three files.
func (c *CSV) Tables(ctx context.Context) (*Tables, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t := &Tables{}
	var err error
	if t.Nodes, err = c.readNodes(); err != nil {
		return nil, err
	}
	if t.Edges, err = c.readEdges(); err != nil {
		return nil, err
	}
	if t.Summaries, err = c.readSummaries(); err != nil {
		return nil, err
	}
	return t, nil
}

// Replace writes all three files, creating the directory if needed.
func (c *CSV) Replace(ctx context.Context, t *Tables) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create store directory %s", c.dir)
	}

	if err := c.writeNodes(t.Nodes); err != nil {
		return err
	}
	if err := c.writeEdges(t.Edges); err != nil {
		return err
	}
	return c.writeSummaries(t.Summaries)
}

// Close is a no-op; CSV stores hold no open handles between calls.
func (c *CSV) Close() error {
	return nil
}

// =============================================================================
// Node Table
// =============================================================================

var nodeHeader = []string{"node_id", "network_id", "node_type", "node_label", "meta"}

func (c *CSV) readNodes() ([]graph.Node, error) {
	rows, err := c.readFile(csvNodesFile, nodeHeader)
	if err != nil {
		return nil, err
	}

	var nodes []graph.Node
	for i, row := range rows {
		networkID, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"%s row %d: network_id %q is not an integer", csvNodesFile, i+2, row[1])
		}
		node := graph.Node{
			ID:        row[0],
			NetworkID: networkID,
			Role:      graph.Role(row[2]),
			Label:     row[3],
		}
		if row[4] != "" {
			if err := json.Unmarshal([]byte(row[4]), &node.Meta); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err,
					"%s row %d: bad meta column", csvNodesFile, i+2)
			}
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (c *CSV) writeNodes(nodes []graph.Node) error {
	rows := make([][]string, 0, len(nodes))
	for _, node := range nodes {
		meta := ""
		if len(node.Meta) > 0 {
			data, err := json.Marshal(node.Meta)
			if err != nil {
				return errors.Wrap(errors.ErrCodeStore, err, "encode meta for node %s", node.ID)
			}
			meta = string(data)
		}
		rows = append(rows, []string{
			node.ID,
			strconv.Itoa(node.NetworkID),
			string(node.Role),
			node.Label,
			meta,
		})
	}
	return c.writeFile(csvNodesFile, nodeHeader, rows)
}

// =============================================================================
// Edge Table
// =============================================================================

var edgeHeader = []string{"source_id", "target_id", "network_id", "edge_type"}

func (c *CSV) readEdges() ([]graph.Edge, error) {
	rows, err := c.readFile(csvEdgesFile, edgeHeader)
	if err != nil {
		return nil, err
	}

	var edges []graph.Edge
	for i, row := range rows {
		networkID, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"%s row %d: network_id %q is not an integer", csvEdgesFile, i+2, row[2])
		}
		edges = append(edges, graph.Edge{
			Source:    row[0],
			Target:    row[1],
			NetworkID: networkID,
			Kind:      graph.EdgeKind(row[3]),
		})
	}
	return edges, nil
}

func (c *CSV) writeEdges(edges []graph.Edge) error {
	rows := make([][]string, 0, len(edges))
	for _, edge := range edges {
		rows = append(rows, []string{
			edge.Source,
			edge.Target,
			strconv.Itoa(edge.NetworkID),
			string(edge.Kind),
		})
	}
	return c.writeFile(csvEdgesFile, edgeHeader, rows)
}

// =============================================================================
// Summary Table
// =============================================================================

var summaryHeader = []string{
	"network_id", "disease", "treatment_name", "grant_id", "grant_year",
	"approval_year", "funding_amount", "total_publications", "research_duration",
}

func (c *CSV) readSummaries() ([]SummaryRow, error) {
	rows, err := c.readFile(csvSummariesFile, summaryHeader)
	if err != nil {
		return nil, err
	}

	var summaries []SummaryRow
	for i, row := range rows {
		var s SummaryRow
		var parseErr error
		atoi := func(field, v string) int {
			n, err := strconv.Atoi(v)
			if err != nil && parseErr == nil {
				parseErr = errors.New(errors.ErrCodeInvalidFormat,
					"%s row %d: %s %q is not an integer", csvSummariesFile, i+2, field, v)
			}
			return n
		}

		s.NetworkID = atoi("network_id", row[0])
		s.Disease = row[1]
		s.TreatmentName = row[2]
		s.GrantID = row[3]
		s.GrantYear = atoi("grant_year", row[4])
		s.ApprovalYear = atoi("approval_year", row[5])
		s.FundingAmount = int64(atoi("funding_amount", row[6]))
		s.TotalPublications = atoi("total_publications", row[7])
		s.ResearchDuration = atoi("research_duration", row[8])
		if parseErr != nil {
			return nil, parseErr
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (c *CSV) writeSummaries(summaries []SummaryRow) error {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			strconv.Itoa(s.NetworkID),
			s.Disease,
			s.TreatmentName,
			s.GrantID,
			strconv.Itoa(s.GrantYear),
			strconv.Itoa(s.ApprovalYear),
			strconv.FormatInt(s.FundingAmount, 10),
			strconv.Itoa(s.TotalPublications),
			strconv.Itoa(s.ResearchDuration),
		})
	}
	return c.writeFile(csvSummariesFile, summaryHeader, rows)
}

// =============================================================================
// File Helpers
// =============================================================================

// readFile reads a CSV file, validates its header, and returns the data
// rows.
func (c *CSV) readFile(name string, header []string) ([][]string, error) {
	path := filepath.Join(c.dir, name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "store file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeStore, err, "open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "%s: missing header row", path)
	}
	for i, col := range header {
		if records[0][i] != col {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"%s: header column %d is %q, want %q", path, i, records[0][i], col)
		}
	}
	return records[1:], nil
}

// writeFile writes header plus rows to a temp file and renames it into
// place, so readers never observe a half-written table.
func (c *CSV) writeFile(name string, header []string, rows [][]string) error {
	path := filepath.Join(c.dir, name)
	tmp, err := os.CreateTemp(c.dir, name+".tmp-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create temp file for %s", path)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", path)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", path)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStore, err, "flush %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "rename %s", path)
	}
	return nil
}

// String implements fmt.Stringer for logging.
func (c *CSV) String() string {
	return fmt.Sprintf("csv(%s)", c.dir)
}

var _ Store = (*CSV)(nil)
