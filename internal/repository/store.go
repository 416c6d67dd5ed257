package repository

import (
	"context" // context carries deadlines and cancellation
	"fmt"     // fmt formats validation errors
	"regexp"  // regexp validates identifiers
	"sort"    // sort orders entries for in-memory backends

	"go.uber.org/zap" // zap logs schema changes

	"github.com/iliyamo/wordbook/internal/database" // database opens driver clients
	"github.com/iliyamo/wordbook/internal/model"    // model holds WordEntry
)

// WordStore is the datastore gateway used by the HTTP layer.  Implementations
// own their client; the caller owns the WordStore and closes it on shutdown.
type WordStore interface {
	// EnsureSchema creates the database and table when absent.  It is
	// idempotent: an existing database or table, including one created
	// concurrently by another process, is not an error.
	EnsureSchema(ctx context.Context) error
	// Insert appends entry and returns it with its datastore identity.
	// No uniqueness or content validation is applied.
	Insert(ctx context.Context, entry model.WordEntry) (*model.WordEntry, error)
	// ListAll returns every entry sorted ascending by orderBy, which must
	// be one of the model's orderable fields.  The result is never nil.
	ListAll(ctx context.Context, orderBy string) ([]model.WordEntry, error)
	// Ping checks the connection.
	Ping(ctx context.Context) error
	// Close releases the underlying client.
	Close(ctx context.Context) error
}

// TableSpec names where word entries live.
type TableSpec struct {
	Database string // database, keyspace or key prefix
	Table    string // table, collection or key namespace
	Replicas int    // replication hint, 0 leaves the datastore default
}

var identPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

// Validate rejects names that cannot be used verbatim as identifiers by
// every backend.
func (t TableSpec) Validate() error {
	for _, name := range []string{t.Database, t.Table} {
		if !identPattern.MatchString(name) {
			return newError(KindValidation, "table spec", fmt.Errorf("invalid identifier %q", name))
		}
	}
	if t.Replicas < 0 {
		return newError(KindValidation, "table spec", fmt.Errorf("negative replica count %d", t.Replicas))
	}
	return nil
}

// NewWordStore opens a connection to the datastore described by spec and
// returns the matching WordStore.  It does not create the schema.
func NewWordStore(ctx context.Context, spec *database.ConnSpec, table TableSpec, log *zap.Logger) (WordStore, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	log = log.Named("store").With(zap.String("backend", spec.Backend), zap.String("addr", spec.Addr()))

	switch spec.Backend {
	case database.BackendMongo:
		client, err := database.OpenMongo(ctx, spec)
		if err != nil {
			return nil, newError(KindConnection, "connect", err)
		}
		return NewMongoWordRepo(client, table, log), nil
	case database.BackendMySQL:
		db, err := database.OpenMySQL(ctx, spec)
		if err != nil {
			return nil, newError(KindConnection, "connect", err)
		}
		return NewMySQLWordRepo(db, table, log), nil
	case database.BackendRedis:
		client, err := database.OpenRedis(ctx, spec)
		if err != nil {
			return nil, newError(KindConnection, "connect", err)
		}
		return NewRedisWordRepo(client, table, log), nil
	case database.BackendDynamo:
		client, err := database.OpenDynamo(ctx, spec)
		if err != nil {
			return nil, newError(KindConnection, "connect", err)
		}
		return NewDynamoWordRepo(client, table, log), nil
	}
	return nil, newError(KindValidation, "connect", fmt.Errorf("%w: %q", database.ErrUnsupportedScheme, spec.Scheme))
}

func checkOrderField(op, field string) error {
	if !model.IsOrderField(field) {
		return newError(KindValidation, op, fmt.Errorf("cannot order by %q", field))
	}
	return nil
}

// sortEntries sorts in place by field; ties keep their relative order.
func sortEntries(entries []model.WordEntry, field string) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value(field) < entries[j].Value(field)
	})
}
