package config // package config loads application configuration from the environment

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable; the mapstructure tag is the lower-cased name.
type Config struct {
	Env          string `mapstructure:"app_env" validate:"required"`           // application environment (dev selects the development logger)
	Port         int    `mapstructure:"port" validate:"min=1,max=65535"`       // HTTP port to listen on
	PublicDir    string `mapstructure:"public_dir" validate:"required"`        // directory served as static assets
	ServiceLabel string `mapstructure:"service_binding" validate:"required"`   // label of the bound datastore service
	BindingsFile string `mapstructure:"vcap_local_file"`                       // optional local override of VCAP_SERVICES
	Database     string `mapstructure:"words_database" validate:"required"`    // database holding the words table
	Table        string `mapstructure:"words_table" validate:"required"`       // table (collection) of word entries
	Replicas     int    `mapstructure:"words_replicas" validate:"min=0"`       // replica hint, 0 defers to the binding
}

var defaults = map[string]any{
	"app_env":         "dev",
	"port":            8080,
	"public_dir":      "public",
	"service_binding": "compose-for-mongodb",
	"vcap_local_file": "vcap-local.json",
	"words_database":  "grand_tour",
	"words_table":     "words",
	"words_replicas":  0,
}

// Load reads configuration from an optional .env file and the process
// environment.  Unlike a must-style loader it never exits; the caller decides
// what to do with a failed result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("bind %s environment variable: %w", strings.ToUpper(key), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func validate(cfg Config) error {
	validate, trans, err := newValidator()
	if err != nil {
		return fmt.Errorf("create validator: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return fmt.Errorf("invalid configuration: %s", translate(validationErrors, trans))
	}
	return nil
}

func translate(errs validator.ValidationErrors, trans ut.Translator) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Translate(trans))
	}
	return strings.Join(msgs, ", ")
}
