// Package config loads the fsmgen configuration from defaults, an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/fsmgen/pkg/refine"
	"github.com/aretw0/fsmgen/pkg/solidity"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FSMGEN_"

// Store kinds.
const (
	StoreJSONL  = "jsonl"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config is the complete fsmgen configuration.
type Config struct {
	LLM       LLM            `mapstructure:"llm"`
	Budgets   refine.Budgets `mapstructure:"budgets"`
	Toolchain Toolchain      `mapstructure:"toolchain"`
	Store     Store          `mapstructure:"store"`
	Cache     Cache          `mapstructure:"cache"`
	Log       Log            `mapstructure:"log"`

	Workers     int    `mapstructure:"workers" validate:"gte=1"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// LLM selects and configures the chat model backend.
type LLM struct {
	BaseURL           string        `mapstructure:"base_url" validate:"omitempty,url"`
	Model             string        `mapstructure:"model" validate:"required"`
	APIKey            string        `mapstructure:"api_key"`
	Temperature       float32       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	TopP              float32       `mapstructure:"top_p" validate:"gte=0,lte=1"`
	Randomize         bool          `mapstructure:"randomize"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// Toolchain points at the compiler and analyzer tools.
type Toolchain struct {
	Solc       string `mapstructure:"solc" validate:"required"`
	SolcSelect string `mapstructure:"solc_select"`
	Slither    string `mapstructure:"slither" validate:"required"`

	// ToolsFile optionally overrides the commands above with a tools.yaml registry.
	ToolsFile string `mapstructure:"tools_file"`

	DefaultVersion string            `mapstructure:"default_version" validate:"required"`
	Substitutions  map[string]string `mapstructure:"substitutions"`
	RemoveImports  bool              `mapstructure:"remove_imports"`
	BasePath       string            `mapstructure:"base_path"`
	WorkDir        string            `mapstructure:"work_dir"`
	Timeout        time.Duration     `mapstructure:"timeout" validate:"gte=0"`
	LockTTL        time.Duration     `mapstructure:"lock_ttl" validate:"gte=0"`
}

// Store configures where pipeline outcomes are kept.
type Store struct {
	Kind  string `mapstructure:"kind" validate:"oneof=jsonl redis memory"`
	Redis Redis  `mapstructure:"redis"`

	// EncryptionKeys are base64 AES-256 keys. When set, stored records are
	// sealed with the first key; the others only open older records.
	EncryptionKeys []string `mapstructure:"encryption_keys"`
}

// Redis holds the connection settings of the redis outcome store.
type Redis struct {
	Addr     string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`

	// Enabled is derived from the store kind.
	Enabled bool `mapstructure:"-"`
}

// Cache configures memoization of toolchain results.
type Cache struct {
	Enabled  bool          `mapstructure:"enabled"`
	Path     string        `mapstructure:"path" validate:"required_if=Enabled true InMemory false"`
	InMemory bool          `mapstructure:"in_memory"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// Log configures the process logger.
type Log struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLM: LLM{
			Model:       "gpt-4o",
			Temperature: 0.6,
			TopP:        0.9,
			Timeout:     2 * time.Minute,
		},
		Budgets: refine.DefaultBudgets(),
		Toolchain: Toolchain{
			Solc:           "solc",
			SolcSelect:     "solc-select",
			Slither:        "slither",
			DefaultVersion: solidity.DefaultVersion,
			Substitutions:  map[string]string{"@openzeppelin": "./openzeppelin"},
			Timeout:        2 * time.Minute,
			LockTTL:        2 * time.Minute,
		},
		Store: Store{
			Kind:  StoreJSONL,
			Redis: Redis{Addr: "localhost:6379", Prefix: "fsmgen:record:"},
		},
		Cache: Cache{Path: ".fsmgen/cache"},
		Log:   Log{Level: "info", Format: "text"},

		Workers: 1,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load builds the configuration. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := decode(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	if err := decode(fromEnv(os.LookupEnv), &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration against its constraints.
func (c *Config) Validate() error {
	c.Store.Redis.Enabled = c.Store.Kind == StoreRedis
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid configuration: %s", verrs.Error())
		}
		return err
	}
	if !solidity.ValidVersion(c.Toolchain.DefaultVersion) {
		return fmt.Errorf("invalid configuration: default_version %q is not a release number", c.Toolchain.DefaultVersion)
	}
	return nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return raw, nil
}

// decode merges raw over cfg. Keys absent from raw keep their current value.
func decode(raw map[string]any, cfg *Config) error {
	if len(raw) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// envKeys maps environment variables to nested config keys.
var envKeys = map[string][]string{
	EnvPrefix + "LLM_BASE_URL":    {"llm", "base_url"},
	EnvPrefix + "LLM_MODEL":       {"llm", "model"},
	EnvPrefix + "LLM_RANDOMIZE":   {"llm", "randomize"},
	EnvPrefix + "BUDGET_FSM":      {"budgets", "fsm"},
	EnvPrefix + "BUDGET_COMPILE":  {"budgets", "compile"},
	EnvPrefix + "BUDGET_SECURITY": {"budgets", "security"},
	EnvPrefix + "SOLC":            {"toolchain", "solc"},
	EnvPrefix + "SLITHER":         {"toolchain", "slither"},
	EnvPrefix + "STORE":           {"store", "kind"},
	EnvPrefix + "REDIS_ADDR":      {"store", "redis", "addr"},
	EnvPrefix + "REDIS_PASSWORD":  {"store", "redis", "password"},
	EnvPrefix + "STORE_KEY":       {"store", "encryption_keys"},
	EnvPrefix + "CACHE_PATH":      {"cache", "path"},
	EnvPrefix + "WORKERS":         {"workers"},
	EnvPrefix + "METRICS_ADDR":    {"metrics_addr"},
	EnvPrefix + "LOG_LEVEL":       {"log", "level"},
	EnvPrefix + "LOG_FORMAT":      {"log", "format"},
	"OPENAI_API_KEY":              {"llm", "api_key"},
	"OPENAI_BASE_URL":             {"llm", "base_url"},
}

func fromEnv(lookup func(string) (string, bool)) map[string]any {
	out := map[string]any{}
	for name, path := range envKeys {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		set(out, path, v)
	}
	// FSMGEN_LLM_BASE_URL wins over OPENAI_BASE_URL.
	if v, ok := lookup(EnvPrefix + "LLM_BASE_URL"); ok && v != "" {
		set(out, []string{"llm", "base_url"}, v)
	}
	return out
}

func set(m map[string]any, path []string, v string) {
	for _, k := range path[:len(path)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}
