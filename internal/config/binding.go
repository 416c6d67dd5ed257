package config

// This file resolves a bound backing service from Cloud Foundry style
// service-binding metadata.  The metadata comes from a local override file
// (vcap-local.json) when one exists, otherwise from the VCAP_SERVICES
// environment variable.  Both are JSON maps of service label to a list of
// bound instances, the local file optionally nesting that map under a
// "services" key.

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// VCAPServicesEnv is the environment variable carrying service bindings.
const VCAPServicesEnv = "VCAP_SERVICES"

var (
	// ErrNoBindings is returned when neither the local file nor the
	// environment provide any service-binding metadata.
	ErrNoBindings = errors.New("no service bindings available")

	// ErrBindingNotFound is returned when no instance is bound under the
	// requested label.
	ErrBindingNotFound = errors.New("service binding not found")
)

// BindingNotFoundError names the label that could not be resolved.
type BindingNotFoundError struct {
	Label  string
	Source string
}

func (e *BindingNotFoundError) Error() string {
	return fmt.Sprintf("must be bound to %s services (searched %s)", e.Label, e.Source)
}

func (e *BindingNotFoundError) Is(target error) bool {
	return target == ErrBindingNotFound
}

// Credentials is the credential bundle of a bound service.  Only URI is
// required by every datastore; the rest depend on the backend.
type Credentials struct {
	URI                 string `mapstructure:"uri"`
	CACertificateBase64 string `mapstructure:"ca_certificate_base64"`
	Replicas            int    `mapstructure:"replicas"`
	Username            string `mapstructure:"username"`
	Password            string `mapstructure:"password"`
	Region              string `mapstructure:"region"`
	AccessKeyID         string `mapstructure:"access_key_id"`
	SecretAccessKey     string `mapstructure:"secret_access_key"`
	Endpoint            string `mapstructure:"endpoint"`
}

// Binding is one bound service instance.
type Binding struct {
	Name        string      `mapstructure:"name"`
	Label       string      `mapstructure:"label"`
	Plan        string      `mapstructure:"plan"`
	Tags        []string    `mapstructure:"tags"`
	Credentials Credentials `mapstructure:"credentials"`
	Source      string      `mapstructure:"-"` // where the binding was read from
}

// ResolveBinding returns the first instance bound under label.  localFile
// takes precedence over VCAP_SERVICES when it exists; an empty localFile
// disables the override.
func ResolveBinding(label, localFile string) (*Binding, error) {
	services, source, err := loadServices(localFile)
	if err != nil {
		return nil, err
	}
	bound := services[strings.ToLower(label)]
	if len(bound) == 0 {
		return nil, &BindingNotFoundError{Label: label, Source: source}
	}
	b := bound[0]
	b.Source = source
	return &b, nil
}

func loadServices(localFile string) (map[string][]Binding, string, error) {
	if localFile != "" {
		raw, err := os.ReadFile(localFile)
		switch {
		case err == nil:
			services, err := parseServices(string(raw))
			if err != nil {
				return nil, "", fmt.Errorf("parse %s: %w", localFile, err)
			}
			return services, localFile, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, "", fmt.Errorf("read %s: %w", localFile, err)
		}
	}

	raw := os.Getenv(VCAPServicesEnv)
	if strings.TrimSpace(raw) == "" {
		return nil, "", ErrNoBindings
	}
	services, err := parseServices(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", VCAPServicesEnv, err)
	}
	return services, VCAPServicesEnv, nil
}

// parseServices decodes a services map.  Labels routinely contain dots
// ("mongodb.v4") so viper's key delimiter is switched away from ".".
func parseServices(raw string) (map[string][]Binding, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigType("json")
	if err := v.ReadConfig(strings.NewReader(raw)); err != nil {
		return nil, err
	}

	services := map[string][]Binding{}
	var err error
	if v.IsSet("services") {
		err = v.UnmarshalKey("services", &services)
	} else {
		err = v.Unmarshal(&services)
	}
	if err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	return services, nil
}
