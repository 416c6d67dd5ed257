package repository

import (
	"context" // context carries deadlines and cancellation
	"errors"  // errors matches wrapped driver errors
	"fmt"     // fmt reports unexpected ids

	"go.mongodb.org/mongo-driver/bson"           // bson builds filters and sorts
	"go.mongodb.org/mongo-driver/bson/primitive" // primitive provides ObjectID
	"go.mongodb.org/mongo-driver/mongo"          // mongo driver client and errors
	"go.mongodb.org/mongo-driver/mongo/options"  // options configures driver calls
	"go.uber.org/zap"                            // zap logs schema changes

	"github.com/iliyamo/wordbook/internal/model" // model holds WordEntry
)

// MongoDB server error codes the gateway cares about.
const (
	mongoCodeNamespaceNotFound = 26
	mongoCodeNamespaceExists   = 48
)

// wordDocument mirrors a document of the words collection.
type wordDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"` // assigned by Insert
	Word       string             `bson:"word"`          // word as submitted
	Definition string             `bson:"definition"`    // definition as submitted
}

// MongoWordRepo stores word entries as documents of one collection.
type MongoWordRepo struct {
	client *mongo.Client // connected driver client
	table  TableSpec     // database and collection names
	log    *zap.Logger   // schema change logging
}

// NewMongoWordRepo wraps a connected client.
func NewMongoWordRepo(client *mongo.Client, table TableSpec, log *zap.Logger) *MongoWordRepo {
	return &MongoWordRepo{client: client, table: table, log: log}
}

// collection uses the client's write concern.  The replica hint describes
// how the table is created, not how each write is acknowledged.
func (r *MongoWordRepo) collection() *mongo.Collection {
	return r.client.Database(r.table.Database).Collection(r.table.Table)
}

// EnsureSchema creates the collection when it is missing.  MongoDB creates a
// database implicitly with its first collection, so the database check only
// decides what gets logged.
func (r *MongoWordRepo) EnsureSchema(ctx context.Context) error {
	dbs, err := r.client.ListDatabaseNames(ctx,
		bson.D{{Key: "name", Value: r.table.Database}},
		options.ListDatabases().SetAuthorizedDatabases(true))
	if err != nil {
		return wrap("ensure schema", err, classifyMongo)
	}

	db := r.client.Database(r.table.Database)
	colls, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: r.table.Table}})
	if err != nil {
		return wrap("ensure schema", err, classifyMongo)
	}
	if len(colls) > 0 {
		return nil
	}

	if err := db.CreateCollection(ctx, r.table.Table); err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == mongoCodeNamespaceExists {
			return nil
		}
		return wrap("ensure schema", err, classifyMongo)
	}
	if len(dbs) == 0 {
		r.log.Info("database created", zap.String("database", r.table.Database))
	}
	if r.table.Replicas > 0 {
		r.log.Debug("replica hint ignored, replication is configured on the replica set", zap.Int("replicas", r.table.Replicas))
	}
	r.log.Info("table created", zap.String("table", r.table.Table))
	return nil
}

// Insert adds one document and returns the entry with its ObjectID in hex.
func (r *MongoWordRepo) Insert(ctx context.Context, entry model.WordEntry) (*model.WordEntry, error) {
	res, err := r.collection().InsertOne(ctx, wordDocument{Word: entry.Word, Definition: entry.Definition})
	if err != nil {
		return nil, wrap("insert", err, classifyMongo)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, newError(KindUnknown, "insert", fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	entry.ID = oid.Hex()
	return &entry, nil
}

// ListAll finds every document sorted by orderBy, then by _id so that equal
// values come back in insertion order.
func (r *MongoWordRepo) ListAll(ctx context.Context, orderBy string) ([]model.WordEntry, error) {
	if err := checkOrderField("list", orderBy); err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: orderBy, Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.collection().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, wrap("list", err, classifyMongo)
	}
	defer cur.Close(ctx)

	var docs []wordDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrap("list", err, classifyMongo)
	}
	out := make([]model.WordEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.WordEntry{ID: d.ID.Hex(), Word: d.Word, Definition: d.Definition})
	}
	return out, nil
}

// Ping checks the primary is reachable.
func (r *MongoWordRepo) Ping(ctx context.Context) error {
	return wrap("ping", r.client.Ping(ctx, nil), classifyMongo)
}

// Close disconnects the client.
func (r *MongoWordRepo) Close(ctx context.Context) error {
	return wrap("close", r.client.Disconnect(ctx), classifyMongo)
}

func classifyMongo(err error) Kind {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return KindNotFound
	case errors.Is(err, mongo.ErrClientDisconnected), mongo.IsNetworkError(err), mongo.IsTimeout(err), isConnectionError(err):
		return KindConnection
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == mongoCodeNamespaceNotFound {
		return KindNotFound
	}
	return KindUnknown
}
