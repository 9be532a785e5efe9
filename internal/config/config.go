// Package config loads runtime configuration from defaults, an optional
// YAML file, and the environment, in that order of precedence.
package config

import (
	"time"
)

// Config is the full runtime configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Logging    LoggingConfig    `koanf:"logging"`
	FIRMS      FIRMSConfig      `koanf:"firms"`
	AirQuality AirQualityConfig `koanf:"air_quality"`
	News       NewsConfig       `koanf:"news"`
	Regions    RegionsConfig    `koanf:"regions"`
	Scheduler  SchedulerConfig  `koanf:"scheduler"`
	Admin      AdminConfig      `koanf:"admin"`
}

type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	SlowThreshold   time.Duration `koanf:"slow_threshold"`
	LogQueries      bool          `koanf:"log_queries"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal disabled off"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// FIRMSConfig configures the NASA FIRMS country CSV API.
type FIRMSConfig struct {
	BaseURL  string        `koanf:"base_url" validate:"required,url"`
	Token    string        `koanf:"token"`
	Source   string        `koanf:"source" validate:"required"`
	Country  string        `koanf:"country" validate:"required,len=3"`
	DayRange int           `koanf:"day_range" validate:"min=1,max=10"`
	Lookback int           `koanf:"lookback_days" validate:"min=1"`
	Timeout  time.Duration `koanf:"timeout"`
}

// AirQualityConfig configures the SiPongi AQMS endpoint.
type AirQualityConfig struct {
	Endpoint string        `koanf:"endpoint" validate:"required,url"`
	Timeout  time.Duration `koanf:"timeout"`
	Timezone string        `koanf:"timezone"`
}

// NewsConfig configures the news search feed.
type NewsConfig struct {
	BaseURL           string        `koanf:"base_url" validate:"required,url"`
	Keywords          []string      `koanf:"keywords" validate:"min=1"`
	MaxResults        int           `koanf:"max_results" validate:"min=1"`
	PeriodDays        int           `koanf:"period_days" validate:"min=1"`
	Language          string        `koanf:"language"`
	Region            string        `koanf:"region"`
	Lookback          int           `koanf:"lookback_days" validate:"min=1"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Timeout           time.Duration `koanf:"timeout"`
}

// RegionsConfig points at the administrative boundary GeoJSON used for
// the spatial join.
type RegionsConfig struct {
	BoundariesPath   string `koanf:"boundaries_path"`
	ProvinceProperty string `koanf:"province_property"`
	DistrictProperty string `koanf:"district_property"`
}

type SchedulerConfig struct {
	Enabled            bool          `koanf:"enabled"`
	FiresInterval      time.Duration `koanf:"fires_interval"`
	AirQualityInterval time.Duration `koanf:"air_quality_interval"`
	ArticlesInterval   time.Duration `koanf:"articles_interval"`
}

// AdminConfig holds the bcrypt hash of the admin bearer token. An empty
// hash disables the admin routes.
type AdminConfig struct {
	TokenHash string `koanf:"token_hash"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              5050,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"http://localhost:8050", "http://localhost:5173"},
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    20,
			ConnMaxLifetime: 30 * time.Minute,
			SlowThreshold:   100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		FIRMS: FIRMSConfig{
			BaseURL:  "https://firms.modaps.eosdis.nasa.gov",
			Source:   "VIIRS_SNPP_NRT",
			Country:  "IDN",
			DayRange: 2,
			Lookback: 2,
			Timeout:  60 * time.Second,
		},
		AirQuality: AirQualityConfig{
			Endpoint: "https://sipongi.menlhk.go.id/api/aqms",
			Timeout:  30 * time.Second,
			Timezone: "Asia/Jakarta",
		},
		News: NewsConfig{
			BaseURL:           "https://news.google.com",
			Keywords:          []string{"kebakaran hutan", "polusi udara", "kebakaran lahan"},
			MaxResults:        15,
			PeriodDays:        2,
			Language:          "id",
			Region:            "ID",
			Lookback:          3,
			RequestsPerSecond: 1,
			Timeout:           30 * time.Second,
		},
		Regions: RegionsConfig{
			ProvinceProperty: "province",
			DistrictProperty: "district",
		},
		Scheduler: SchedulerConfig{
			Enabled:            false,
			FiresInterval:      time.Hour,
			AirQualityInterval: 30 * time.Minute,
			ArticlesInterval:   3 * time.Hour,
		},
	}
}
