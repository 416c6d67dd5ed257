package database

import (
	"encoding/base64" // base64 decodes the trust anchor
	"errors"          // errors matches wrapped driver errors
	"fmt"             // fmt reports malformed credentials
	"net"             // net exposes net.Error
	"net/url"         // url parses credential URIs
	"strconv"         // strconv renders numeric ids
	"strings"         // strings builds keys and members

	"github.com/iliyamo/wordbook/internal/config" // config holds binding credentials
)

// Backends a connection spec can resolve to.
const (
	BackendMongo  = "mongodb"
	BackendMySQL  = "mysql"
	BackendRedis  = "redis"
	BackendDynamo = "dynamodb"
)

var backendBySchema = map[string]string{
	"mongodb":     BackendMongo,
	"mongodb+srv": BackendMongo,
	"mysql":       BackendMySQL,
	"redis":       BackendRedis,
	"rediss":      BackendRedis,
	"dynamodb":    BackendDynamo,
}

var defaultPorts = map[string]int{
	"mongodb": 27017,
	"mysql":   3306,
	"redis":   6379,
	"rediss":  6379,
}

// ErrUnsupportedScheme is returned for a credential URI whose scheme does not
// map to any supported datastore.
var ErrUnsupportedScheme = errors.New("unsupported datastore scheme")

// ConnSpec is everything needed to open a connection to the bound datastore,
// derived from a service binding's credential bundle.
type ConnSpec struct {
	Backend  string            // one of the Backend constants
	Scheme   string            // URI scheme as given
	URI      string            // full URI including credentials
	Host     string            // host name without port
	Port     int               // explicit or default port
	Username string            // URI user, may be empty
	Password string            // URI password, may be empty
	Database string            // path component of the URI, may be empty
	Params   map[string]string // query parameters, first value wins
	CACert   []byte            // PEM trust anchor, nil when not provided
	Replicas int               // replication hint from the binding, 0 when absent

	// DynamoDB only.
	Region          string // AWS region
	Endpoint        string // endpoint override, empty for the AWS default
	AccessKeyID     string // static key id, empty for the default chain
	SecretAccessKey string // static secret paired with AccessKeyID
}

// ParseConnSpec derives a ConnSpec from a credential bundle.  Explicit
// credential fields (username, password, region, endpoint) take precedence
// over what the URI carries.
func ParseConnSpec(creds config.Credentials) (*ConnSpec, error) {
	if strings.TrimSpace(creds.URI) == "" {
		return nil, errors.New("credentials carry no uri")
	}
	u, err := url.Parse(firstHostURI(creds.URI))
	if err != nil {
		return nil, fmt.Errorf("parse credentials uri: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	backend, ok := backendBySchema[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	spec := &ConnSpec{
		Backend:  backend,
		Scheme:   scheme,
		URI:      creds.URI,
		Database: strings.TrimPrefix(u.Path, "/"),
		Params:   map[string]string{},
		Replicas: creds.Replicas,
	}
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			spec.Params[k] = vs[0]
		}
	}
	if u.User != nil {
		spec.Username = u.User.Username()
		spec.Password, _ = u.User.Password()
	}
	if creds.Username != "" {
		spec.Username = creds.Username
	}
	if creds.Password != "" {
		spec.Password = creds.Password
	}

	host, port, err := splitHostPort(u.Host, defaultPorts[scheme])
	if err != nil {
		return nil, err
	}
	spec.Host, spec.Port = host, port

	if backend == BackendDynamo {
		spec.Region = spec.Host
		if creds.Region != "" {
			spec.Region = creds.Region
		}
		spec.Endpoint = spec.Params["endpoint"]
		if creds.Endpoint != "" {
			spec.Endpoint = creds.Endpoint
		}
		spec.AccessKeyID = creds.AccessKeyID
		spec.SecretAccessKey = creds.SecretAccessKey
		if spec.Region == "" {
			return nil, errors.New("dynamodb credentials carry no region")
		}
	}

	if creds.CACertificateBase64 != "" {
		ca, err := base64.StdEncoding.DecodeString(creds.CACertificateBase64)
		if err != nil {
			return nil, fmt.Errorf("decode ca_certificate_base64: %w", err)
		}
		spec.CACert = ca
	}
	return spec, nil
}

// Addr returns host:port.
func (s *ConnSpec) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Redacted returns the URI with the password masked, for logging.
func (s *ConnSpec) Redacted() string {
	u, err := url.Parse(s.URI)
	if err != nil {
		return s.Scheme + "://" + s.Addr()
	}
	return u.Redacted()
}

// firstHostURI trims a multi-host authority ("a:27017,b:27017") down to its
// first host.  Replica set URIs are not valid RFC 3986 URLs otherwise; the
// first host is enough to identify the deployment for logging and TLS.
func firstHostURI(raw string) string {
	i := strings.Index(raw, "://")
	if i < 0 {
		return raw
	}
	start := i + len("://")
	end := len(raw)
	if j := strings.IndexAny(raw[start:], "/?"); j >= 0 {
		end = start + j
	}
	comma := strings.IndexByte(raw[start:end], ',')
	if comma < 0 {
		return raw
	}
	return raw[:start+comma] + raw[end:]
}

func splitHostPort(hostport string, defaultPort int) (string, int, error) {
	if hostport == "" {
		return "", 0, nil
	}
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		// no port present
		return strings.Trim(hostport, "[]"), defaultPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	return host, port, nil
}
