package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/kabar-api/config.yaml",
}

const (
	ConfigPathEnvVar = "CONFIG_PATH"
	envPrefix        = "KABAR_"
)

// envAliases maps the plain variable names used by the deployment
// (.env files, PaaS dashboards) onto koanf keys.
var envAliases = map[string]string{
	"DATABASE_URL":      "database.url",
	"CONNECTION_URI":    "database.url",
	"PORT":              "server.port",
	"TOKEN":             "firms.token",
	"FIRMS_TOKEN":       "firms.token",
	"LOG_LEVEL":         "logging.level",
	"LOG_FORMAT":        "logging.format",
	"BOUNDARIES_PATH":   "regions.boundaries_path",
	"ADMIN_TOKEN_HASH":  "admin.token_hash",
	"SCHEDULER_ENABLED": "scheduler.enabled",
}

// sections lists the top-level keys so KABAR_AIR_QUALITY_ENDPOINT splits
// into air_quality.endpoint rather than air.quality_endpoint.
var sections = []string{
	"air_quality", "database", "firms", "logging", "news",
	"regions", "scheduler", "server", "admin",
}

// listKeys hold []string settings that arrive from the environment as
// comma-separated strings.
var listKeys = []string{"news.keywords", "server.cors_origins"}

// Load reads .env files, then layers defaults, the config file, and the
// environment, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitListKeys(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envValue drops empty variables so an unset alias never clobbers the
// other spelling of the same key.
func envValue(name, value string) (string, interface{}) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return envKey(name), value
}

// envKey turns an environment variable name into a koanf key, or "" to
// ignore it.
func envKey(name string) string {
	if key, ok := envAliases[name]; ok {
		return key
	}
	if !strings.HasPrefix(name, envPrefix) {
		return ""
	}
	rest := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	for _, s := range sections {
		if strings.HasPrefix(rest, s+"_") {
			return s + "." + strings.TrimPrefix(rest, s+"_")
		}
	}
	return ""
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// splitListKeys turns a comma-separated string under a list key into a
// slice before unmarshalling.
func splitListKeys(k *koanf.Koanf) error {
	for _, key := range listKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		if err := k.Set(key, trimAll(strings.Split(raw, ","))); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// normalize trims list entries and upper-cases the country code.
func (c *Config) normalize() {
	c.News.Keywords = trimAll(c.News.Keywords)
	c.Server.CORSOrigins = trimAll(c.Server.CORSOrigins)
	c.FIRMS.Country = strings.ToUpper(strings.TrimSpace(c.FIRMS.Country))
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
