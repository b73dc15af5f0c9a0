// Package config loads and validates the node-local pgherd
// configuration file. Each cluster node carries one file describing its
// own identity and how to reach the local server.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pgherd/pgherd/pkg/conninfo"
	"github.com/pgherd/pgherd/pkg/primary"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Replication slot names accept a restricted character set.
	slotPattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

func init() {
	validate = validator.New()

	// Report fields under their YAML names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

// DefaultPriority is the probe-ordering priority assigned to nodes that
// do not set one. Lower values are probed first.
const DefaultPriority = 100

// Duration wraps time.Duration so YAML fields accept values like "6s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the per-node pgherd configuration. Name length limits
// match the 63-byte PostgreSQL identifier limit so values are rejected
// here instead of truncated server-side.
type Config struct {
	NodeID          int      `yaml:"node_id" validate:"required,min=1"`
	NodeName        string   `yaml:"node_name" validate:"required,max=63"`
	Conninfo        string   `yaml:"conninfo" validate:"required"`
	ReplicationSlot string   `yaml:"replication_slot" validate:"omitempty,max=63"`
	Priority        int      `yaml:"priority" validate:"min=0"`
	ProbeTimeout    Duration `yaml:"probe_timeout" validate:"min=0"`
	LogLevel        string   `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns a configuration pre-filled with safe defaults; the
// identity fields still have to come from the file.
func Default() *Config {
	return &Config{
		Priority:     DefaultPriority,
		ProbeTimeout: Duration(primary.DefaultProbeTimeout),
		LogLevel:     "info",
	}
}

// Load reads, parses and validates a configuration file. Unknown keys
// are errors, so typos fail loudly instead of silently using defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field constraints and that the conninfo string is
// accepted by the driver.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}

	if c.ReplicationSlot != "" && !slotPattern.MatchString(c.ReplicationSlot) {
		return fmt.Errorf("replication_slot: '%s' contains invalid characters (only lowercase letters, digits and underscore allowed)", c.ReplicationSlot)
	}

	if _, err := conninfo.Parse(c.Conninfo, false); err != nil {
		return fmt.Errorf("conninfo: %w", err)
	}

	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
