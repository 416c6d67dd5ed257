package database

import (
	"crypto/tls"  // tls builds client configurations
	"crypto/x509" // x509 holds the trust anchor pool
	"errors"      // errors defines ErrInvalidCACert
	"strings"     // strings normalises TLS flags
)

// ErrInvalidCACert is returned when the trust anchor holds no PEM certificate.
var ErrInvalidCACert = errors.New("ca certificate contains no PEM certificates")

// TLSConfig returns the client TLS configuration for s.  With a CA
// certificate the pool trusts only that anchor.  Without one it returns nil
// unless the URI itself asks for TLS, in which case system roots are used.
// ServerName is left empty; each driver sets it to the host it dials, which
// matters for replica sets spanning several hostnames.
func (s *ConnSpec) TLSConfig() (*tls.Config, error) {
	if len(s.CACert) == 0 {
		if !s.wantsTLS() {
			return nil, nil
		}
		return &tls.Config{MinVersion: tls.VersionTLS12}, nil
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(s.CACert) {
		return nil, ErrInvalidCACert
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func (s *ConnSpec) wantsTLS() bool {
	if s.Scheme == "rediss" || s.Scheme == "mongodb+srv" {
		return true
	}
	for _, k := range []string{"ssl", "tls"} {
		if v := strings.ToLower(s.Params[k]); v == "true" || v == "1" {
			return true
		}
	}
	return false
}
