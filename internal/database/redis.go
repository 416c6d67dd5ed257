package database

// Redis client constructor.  The connection parameters come from the bound
// service's URI (redis:// or rediss://, including password and database
// number); the trust anchor from the binding replaces the system roots.

import (
	"context" // context carries deadlines and cancellation
	"fmt"     // fmt wraps connect errors

	"github.com/redis/go-redis/v9" // go-redis client
)

// OpenRedis instantiates a Redis client from the ConnSpec and pings the server.
// Unlike a best-effort cache client, a failed ping is an error.
func OpenRedis(ctx context.Context, spec *ConnSpec) (*redis.Client, error) {
	opts, err := redis.ParseURL(spec.URI)
	if err != nil {
		return nil, fmt.Errorf("parse redis uri: %w", err)
	}
	if spec.Username != "" {
		opts.Username = spec.Username
	}
	if spec.Password != "" {
		opts.Password = spec.Password
	}
	tlsConf, err := spec.TLSConfig()
	if err != nil {
		return nil, err
	}
	if tlsConf != nil {
		opts.TLSConfig = tlsConf
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", spec.Addr(), err)
	}
	return client, nil
}
