package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"stashwatch/internal/history"
)

const DefaultPath = "stashwatch.yaml"

const (
	EnvWebhookURL   = "STASHWATCH_WEBHOOK_URL"
	EnvHistoryDSN   = "STASHWATCH_HISTORY_DSN"
	EnvGatewayToken = "STASHWATCH_GATEWAY_TOKEN"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	TargetPlayers []string        `yaml:"target_players" toml:"target_players" validate:"required,min=1,dive,required"`
	WebhookURL    string          `yaml:"webhook_url" toml:"webhook_url" validate:"required,url,startswith=https://"`
	Lookback      time.Duration   `yaml:"lookback" toml:"lookback" validate:"gt=0"`
	History       HistoryConfig   `yaml:"history" toml:"history"`
	Gateway       GatewayConfig   `yaml:"gateway" toml:"gateway"`
	Dispatch      DispatchConfig  `yaml:"dispatch" toml:"dispatch"`
	Logging       LoggingConfig   `yaml:"logging" toml:"logging"`
	Telemetry     TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
}

type HistoryConfig struct {
	DSN         string `yaml:"dsn" toml:"dsn" validate:"required,historydsn"`
	TablePrefix string `yaml:"table_prefix" toml:"table_prefix" validate:"tableprefix"`
}

type GatewayConfig struct {
	Listen string `yaml:"listen" toml:"listen" validate:"required"`
	Token  string `yaml:"token" toml:"token"`
}

type DispatchConfig struct {
	Workers       int           `yaml:"workers" toml:"workers" validate:"min=1,max=64"`
	QueueSize     int           `yaml:"queue_size" toml:"queue_size" validate:"min=1"`
	Timeout       time.Duration `yaml:"timeout" toml:"timeout" validate:"gt=0"`
	RatePerSecond float64       `yaml:"rate_per_second" toml:"rate_per_second" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" toml:"format" validate:"oneof=json console"`
}

type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" toml:"trace_exporter" validate:"oneof=none stdout otlp"`
	OTLPEndpoint  string `yaml:"otlp_endpoint" toml:"otlp_endpoint" validate:"required_if=TraceExporter otlp"`
}

// Default returns a Config with every optional field set. TargetPlayers,
// WebhookURL and History.DSN have no default.
func Default() *Config {
	return &Config{
		Lookback: 28 * 24 * time.Hour,
		History: HistoryConfig{
			TablePrefix: history.DefaultTablePrefix,
		},
		Gateway: GatewayConfig{
			Listen: ":8765",
		},
		Dispatch: DispatchConfig{
			Workers:       2,
			QueueSize:     256,
			Timeout:       10 * time.Second,
			RatePerSecond: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
			OTLPEndpoint:  "localhost:4317",
		},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("tableprefix", func(fl validator.FieldLevel) bool {
		return history.ValidateTablePrefix(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("historydsn", func(fl validator.FieldLevel) bool {
		_, err := HistoryBackend(fl.Field().String())
		return err == nil
	})
	return v
}

// Load reads path (TOML when it ends in .toml, YAML otherwise) over the
// defaults, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("loading config: decode TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("loading config: decode YAML: %w", err)
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvWebhookURL); ok && v != "" {
		c.WebhookURL = v
	}
	if v, ok := lookup(EnvHistoryDSN); ok && v != "" {
		c.History.DSN = v
	}
	if v, ok := lookup(EnvGatewayToken); ok {
		c.Gateway.Token = v
	}
}

// Validate reports every problem at once, each wrapped in ErrInvalid.
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	seen := make(map[string]struct{}, len(c.TargetPlayers))
	for i, p := range c.TargetPlayers {
		name := strings.TrimSpace(p)
		if name == "" {
			if p != "" {
				problems = append(problems, fmt.Sprintf("target_players[%d] is blank", i))
			}
			continue
		}
		if name != p {
			problems = append(problems, fmt.Sprintf("target_players[%d]: surrounding whitespace in %q", i, p))
		}
		if _, dup := seen[name]; dup {
			problems = append(problems, fmt.Sprintf("target_players[%d]: duplicate player %q", i, name))
		}
		seen[name] = struct{}{}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return field + " is required"
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "required_if":
		return field + " is required when " + fe.Param()
	case "url":
		return field + " must be a valid URL"
	case "startswith":
		return field + " must use https"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "tableprefix":
		return field + " may only contain letters, digits and underscores"
	case "historydsn":
		return field + " must start with sqlite://, postgres:// or postgresql://"
	default:
		return fmt.Sprintf("%s failed %q (%s)", field, fe.Tag(), fe.Param())
	}
}

// Backend names a history store implementation.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// HistoryBackend picks the history store for a DSN by its scheme.
func HistoryBackend(dsn string) (Backend, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return BackendSQLite, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return BackendPostgres, nil
	default:
		return "", fmt.Errorf("%w: unsupported history dsn scheme", ErrInvalid)
	}
}
