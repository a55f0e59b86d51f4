// Package mongo implements store.Store on a MongoDB database.
//
// Each table maps to a collection (nodes, edges, network_summary). Rows
// carry a seq field recording insertion order, so Tables returns them in
// the same order Replace received them and table fingerprints survive
// the round trip.
package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/impactgraph/impactgraph/pkg/errors"
	"github.com/impactgraph/impactgraph/pkg/graph"
	"github.com/impactgraph/impactgraph/pkg/store"
)

// Collection names.
const (
	collNodes     = "nodes"
	collEdges     = "edges"
	collSummaries = "network_summary"
)

// Store is a MongoDB-backed table store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to uri and selects database. It pings the server before
// returning so a bad uri fails here rather than on first use.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to %s", uri)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStoreTimeout, err, "ping %s", uri)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

type nodeDoc struct {
	Seq        int `bson:"seq"`
	graph.Node `bson:",inline"`
}

type edgeDoc struct {
	Seq        int `bson:"seq"`
	graph.Edge `bson:",inline"`
}

type summaryDoc struct {
	Seq              int `bson:"seq"`
	store.SummaryRow `bson:",inline"`
}

// Tables reads the complete dataset.
func (s *Store) Tables(ctx context.Context) (*store.Tables, error) {
	t := &store.Tables{}
	bySeq := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})

	cur, err := s.db.Collection(collNodes).Find(ctx, bson.D{}, bySeq)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "query nodes")
	}
	var nodes []nodeDoc
	if err := cur.All(ctx, &nodes); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode nodes")
	}
	for _, doc := range nodes {
		t.Nodes = append(t.Nodes, doc.Node)
	}

	cur, err = s.db.Collection(collEdges).Find(ctx, bson.D{}, bySeq)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "query edges")
	}
	var edges []edgeDoc
	if err := cur.All(ctx, &edges); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode edges")
	}
	for _, doc := range edges {
		t.Edges = append(t.Edges, doc.Edge)
	}

	cur, err = s.db.Collection(collSummaries).Find(ctx, bson.D{}, bySeq)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "query summaries")
	}
	var summaries []summaryDoc
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode summaries")
	}
	for _, doc := range summaries {
		t.Summaries = append(t.Summaries, doc.SummaryRow)
	}

	return t, nil
}

// Replace swaps the dataset. MongoDB has no cross-collection
// transactions outside replica sets, so Replace clears and refills each
// collection in sequence; concurrent readers may briefly observe a
// partial dataset.
func (s *Store) Replace(ctx context.Context, t *store.Tables) error {
	nodeDocs := make([]any, 0, len(t.Nodes))
	for i, node := range t.Nodes {
		nodeDocs = append(nodeDocs, nodeDoc{Seq: i, Node: node})
	}
	edgeDocs := make([]any, 0, len(t.Edges))
	for i, edge := range t.Edges {
		edgeDocs = append(edgeDocs, edgeDoc{Seq: i, Edge: edge})
	}
	summaryDocs := make([]any, 0, len(t.Summaries))
	for i, row := range t.Summaries {
		summaryDocs = append(summaryDocs, summaryDoc{Seq: i, SummaryRow: row})
	}

	for _, c := range []struct {
		name string
		docs []any
	}{
		{collNodes, nodeDocs},
		{collEdges, edgeDocs},
		{collSummaries, summaryDocs},
	} {
		coll := s.db.Collection(c.name)
		if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "clear %s", c.name)
		}
		if len(c.docs) == 0 {
			continue
		}
		if _, err := coll.InsertMany(ctx, c.docs); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "fill %s", c.name)
		}
	}
	return nil
}

// Close disconnects from the server.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ store.Store = (*Store)(nil)
