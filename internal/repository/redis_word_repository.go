package repository

import (
	"context" // context carries deadlines and cancellation
	"errors"  // errors matches wrapped driver errors
	"fmt"     // fmt pads the sequence number
	"strings" // strings builds keys and members
	"time"    // time stamps records and bounds waits

	"github.com/google/uuid"       // uuid generates record ids
	"github.com/redis/go-redis/v9" // go-redis client
	"go.uber.org/zap"              // zap logs schema changes

	"github.com/iliyamo/wordbook/internal/model" // model holds WordEntry
)

// RedisWordRepo keeps each entry in a hash and maintains one sorted set per
// orderable field.  Index members are "<value>\x00\x01<seq>\x00<id>" with
// score 0, so ZRANGEBYLEX walks them in byte order of the value and then in
// insertion order.  NUL bytes inside the value are written as \x00\xff,
// which keeps a value sorting after every proper prefix of itself.
//
// Key layout, with prefix "<database>:<table>":
//
//	<prefix>:meta            hash, created once by EnsureSchema
//	<prefix>:seq             insertion counter
//	<prefix>:entry:<id>      hash {word, definition, seq}
//	<prefix>:idx:<field>     sorted set index
type RedisWordRepo struct {
	client *redis.Client // go-redis client
	prefix string        // "<database>:<table>" key prefix
	table  TableSpec     // database and table names
	log    *zap.Logger   // schema change logging
}

const (
	indexSep        = "\x00"     // separates seq from id
	indexTerminator = "\x00\x01" // ends the escaped value
	indexEscapedNUL = "\x00\xff" // a NUL byte inside the value
)

// indexMember builds the sorted set member for value.
func indexMember(value, seq, id string) string {
	return strings.ReplaceAll(value, "\x00", indexEscapedNUL) + indexTerminator + seq + indexSep + id
}

// indexID returns the entry id carried by an index member.
func indexID(member string) string {
	return member[strings.LastIndex(member, indexSep)+1:]
}

// NewRedisWordRepo wraps a connected client.
func NewRedisWordRepo(client *redis.Client, table TableSpec, log *zap.Logger) *RedisWordRepo {
	return &RedisWordRepo{
		client: client,
		prefix: table.Database + ":" + table.Table,
		table:  table,
		log:    log,
	}
}

func (r *RedisWordRepo) key(parts ...string) string {
	return r.prefix + ":" + strings.Join(parts, ":")
}

// EnsureSchema records the table in its meta hash.  HSETNX makes a second
// call, or a concurrent one, a no-op.
func (r *RedisWordRepo) EnsureSchema(ctx context.Context) error {
	created, err := r.client.HSetNX(ctx, r.key("meta"), "created_at", time.Now().UTC().Format(time.RFC3339)).Result()
	if err != nil {
		return wrap("ensure schema", err, classifyRedis)
	}
	if created {
		if r.table.Replicas > 0 {
			r.log.Debug("replica hint ignored, replication is configured on the server", zap.Int("replicas", r.table.Replicas))
		}
		r.log.Info("table created", zap.String("key", r.key("meta")))
	}
	return nil
}

// Insert writes the entry hash and its index members in one transaction.
func (r *RedisWordRepo) Insert(ctx context.Context, entry model.WordEntry) (*model.WordEntry, error) {
	seq, err := r.client.Incr(ctx, r.key("seq")).Result()
	if err != nil {
		return nil, wrap("insert", err, classifyRedis)
	}
	entry.ID = uuid.NewString()
	seqStr := fmt.Sprintf("%020d", seq)

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key("entry", entry.ID),
			model.FieldWord, entry.Word,
			model.FieldDefinition, entry.Definition,
			"seq", seqStr)
		for _, field := range []string{model.FieldWord, model.FieldDefinition} {
			pipe.ZAdd(ctx, r.key("idx", field), redis.Z{
				Score:  0,
				Member: indexMember(entry.Value(field), seqStr, entry.ID),
			})
		}
		return nil
	})
	if err != nil {
		return nil, wrap("insert", err, classifyRedis)
	}
	return &entry, nil
}

// ListAll walks the index for orderBy and fetches every entry hash in one
// pipeline.  Index members whose hash has vanished are skipped.
func (r *RedisWordRepo) ListAll(ctx context.Context, orderBy string) ([]model.WordEntry, error) {
	if err := checkOrderField("list", orderBy); err != nil {
		return nil, err
	}
	members, err := r.client.ZRangeByLex(ctx, r.key("idx", orderBy), &redis.ZRangeBy{Min: "-", Max: "+"}).Result()
	if err != nil {
		return nil, wrap("list", err, classifyRedis)
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, indexID(m))
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	if len(ids) > 0 {
		_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, id := range ids {
				cmds[i] = pipe.HGetAll(ctx, r.key("entry", id))
			}
			return nil
		})
		if err != nil {
			return nil, wrap("list", err, classifyRedis)
		}
	}

	out := make([]model.WordEntry, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		out = append(out, model.WordEntry{
			ID:         ids[i],
			Word:       fields[model.FieldWord],
			Definition: fields[model.FieldDefinition],
		})
	}
	return out, nil
}

// Ping checks the server answers.
func (r *RedisWordRepo) Ping(ctx context.Context) error {
	return wrap("ping", r.client.Ping(ctx).Err(), classifyRedis)
}

// Close closes the client.
func (r *RedisWordRepo) Close(context.Context) error {
	return wrap("close", r.client.Close(), classifyRedis)
}

func classifyRedis(err error) Kind {
	switch {
	case errors.Is(err, redis.Nil):
		return KindNotFound
	case errors.Is(err, redis.ErrClosed), isConnectionError(err):
		return KindConnection
	}
	return KindUnknown
}
