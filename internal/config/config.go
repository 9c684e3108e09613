// Package config loads runtime settings from flags, an optional YAML file
// and FLUENTDECK_* environment variables, in increasing order of precedence
// for file and environment, with explicitly set flags winning over both.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment overrides, e.g. FLUENTDECK_HTTP_ADDR.
const EnvPrefix = "FLUENTDECK_"

// ErrInvalid is wrapped by validation failures.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the full application configuration.
type Config struct {
	DB    DBConfig    `koanf:"db"`
	HTTP  HTTPConfig  `koanf:"http"`
	Decks DecksConfig `koanf:"decks"`
	Log   LogConfig   `koanf:"log"`
	Drill DrillConfig `koanf:"drill"`
}

// DBConfig locates the progress database. An empty path runs without
// durable storage.
type DBConfig struct {
	Path string `koanf:"path"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr string `koanf:"addr" validate:"required"`
}

// DecksConfig locates study content.
type DecksConfig struct {
	Dir      string   `koanf:"dir"`
	Verbs    string   `koanf:"verbs"`
	Sources  []string `koanf:"sources" validate:"dive,required"`
	ReposDir string   `koanf:"repos_dir" validate:"required"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// DrillConfig sets round sizes.
type DrillConfig struct {
	VerbRounds int `koanf:"verb_rounds" validate:"min=1"`
	CardCount  int `koanf:"card_count" validate:"min=0"`
}

// NewFlagSet declares every setting as a flag with its default.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file")

	fs.String("db.path", "fluentdeck.db", "path to the SQLite progress database (empty for in-memory only)")
	fs.String("http.addr", "127.0.0.1:8080", "address the HTTP API listens on")

	fs.String("decks.dir", "decks", "directory of <category>.md vocabulary decks")
	fs.String("decks.verbs", "", "path to the YAML verb conjugation dataset")
	fs.StringSlice("decks.sources", nil, "git repositories publishing deck files")
	fs.String("decks.repos_dir", "repos", "directory for git deck checkouts")

	fs.String("log.level", "info", "logging level (debug, info, warn, error)")
	fs.String("log.format", "text", "log output format (text, json)")

	fs.Int("drill.verb_rounds", 10, "questions per verb drill")
	fs.Int("drill.card_count", 0, "cards per flashcard round (0 for the whole deck)")
	return fs
}

// Load parses args and merges the config file, environment and flags.
func Load(args []string) (*Config, error) {
	fs := NewFlagSet("fluentdeck")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envValue maps FLUENTDECK_DECKS_REPOS_DIR to decks.repos_dir and splits the
// comma-separated source list.
func envValue(key, value string) (string, interface{}) {
	name := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	name = strings.Replace(name, "_", ".", 1)
	if name == "decks.sources" {
		return name, strings.Split(value, ",")
	}
	return name, value
}

// Validate checks cfg and reports every problem at once.
func Validate(cfg *Config) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("koanf")
		if name == "-" {
			return ""
		}
		return name
	})

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var msg []string
	for _, field := range verrs {
		namespace := field.Namespace()
		name := namespace[strings.IndexByte(namespace, '.')+1:] // trim top level namespace
		switch field.Tag() {
		case "required":
			msg = append(msg, fmt.Sprintf("%s is required", name))
		case "oneof":
			msg = append(msg, fmt.Sprintf("%s must be one of (%s)", name, field.Param()))
		case "min":
			msg = append(msg, fmt.Sprintf("%s must be at least %s", name, field.Param()))
		default:
			msg = append(msg, fmt.Sprintf("%s failed %s", name, field.Tag()))
		}
	}
	return fmt.Errorf("%w:\n%s", ErrInvalid, strings.Join(msg, "\n"))
}
