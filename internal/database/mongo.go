package database

import (
	"context" // context carries deadlines and cancellation
	"fmt"     // fmt wraps connect errors

	"go.mongodb.org/mongo-driver/mongo"          // mongo driver client and errors
	"go.mongodb.org/mongo-driver/mongo/options"  // options configures driver calls
	"go.mongodb.org/mongo-driver/mongo/readpref" // readpref selects the primary for ping
)

// OpenMongo connects to MongoDB with the connection URI and trust anchor and
// pings the primary.
func OpenMongo(ctx context.Context, spec *ConnSpec) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(spec.URI).SetAppName("wordbook")
	tlsConf, err := spec.TLSConfig()
	if err != nil {
		return nil, err
	}
	if tlsConf != nil {
		opts.SetTLSConfig(tlsConf)
	}
	if spec.Username != "" && opts.Auth == nil {
		opts.SetAuth(options.Credential{Username: spec.Username, Password: spec.Password})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping %s: %w", spec.Addr(), err)
	}
	return client, nil
}
