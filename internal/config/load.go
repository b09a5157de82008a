package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces the environment overrides.
const EnvPrefix = "MINUTES_"

// Load reads a YAML or TOML config file, applies .env and environment
// overrides, then validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse toml config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse yaml config: %w", err)
		}
	}

	return finish(&cfg)
}

// LoadOrDefault behaves like Load but falls back to defaults when path
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return finish(&Config{})
}

// Default returns a validated config with every default applied and no
// environment overrides.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

func finish(cfg *Config) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	applyEnvOverrides(cfg)
	expandPaths(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	str := map[string]*string{
		EnvPrefix + "INPUT_DIR":          &cfg.Paths.Input,
		EnvPrefix + "OUTPUT_DIR":         &cfg.Paths.Output,
		EnvPrefix + "TEMP_DIR":           &cfg.Paths.Temp,
		EnvPrefix + "LOG_LEVEL":          &cfg.Logging.Level,
		EnvPrefix + "LOG_FORMAT":         &cfg.Logging.Format,
		EnvPrefix + "STORE_BACKEND":      &cfg.Store.Backend,
		EnvPrefix + "SQLITE_PATH":        &cfg.Store.SQLitePath,
		EnvPrefix + "REDIS_ADDR":         &cfg.Store.RedisAddr,
		EnvPrefix + "REDIS_PASSWORD":     &cfg.Store.RedisPassword,
		EnvPrefix + "ARCHIVE_ACCESS_KEY": &cfg.Archive.AccessKey,
		EnvPrefix + "ARCHIVE_SECRET_KEY": &cfg.Archive.SecretKey,
		EnvPrefix + "STATUS_ADDR":        &cfg.Status.Addr,
		"OPENAI_API_KEY":                 &cfg.Transcription.APIKey,
		"OPENAI_BASE_URL":                &cfg.Transcription.BaseURL,
	}
	for name, dst := range str {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("GEMINI_API_KEYS"); v != "" {
		cfg.LLM.APIKeys = splitList(v)
	} else if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.APIKeys = []string{v}
	}
}

func expandPaths(cfg *Config) {
	for _, p := range []*string{
		&cfg.Paths.Input,
		&cfg.Paths.Output,
		&cfg.Paths.Temp,
		&cfg.Store.SQLitePath,
		&cfg.Delivery.OutputDir,
	} {
		*p = ExpandTilde(*p)
	}
}

// ExpandTilde replaces a leading "~/" with the user's home directory.
func ExpandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
