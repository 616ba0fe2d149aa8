package config

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

var configValue atomic.Value

func GetConfig() *Config {
	cfg, _ := configValue.Load().(*Config)
	if cfg == nil {
		return NewDefaultConfig()
	}
	return cfg
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

type Config struct {
	Version     string          `mapstructure:"version"`
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Providers   ProvidersConfig `mapstructure:"providers"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Host            string `mapstructure:"host"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	IdleTimeout     int    `mapstructure:"idle_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type ProvidersConfig struct {
	OpenWeather OpenWeatherConfig `mapstructure:"openweather"`
	Nominatim   NominatimConfig   `mapstructure:"nominatim"`
}

// ImperialUnits is the only OpenWeather unit system lookups accept.
const ImperialUnits = "imperial"

// OpenWeatherConfig covers the geocoding, current weather and forecast
// endpoints, which share one API key.
type OpenWeatherConfig struct {
	GeoBaseURL  string `mapstructure:"geo_base_url"`
	DataBaseURL string `mapstructure:"data_base_url"`
	APIKey      string `mapstructure:"api_key"`
	Units       string `mapstructure:"units"`
	Timeout     int    `mapstructure:"timeout"`
}

// NominatimConfig covers the reverse geocoder used for state enrichment.
type NominatimConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
	Language  string `mapstructure:"language"`
	Timeout   int    `mapstructure:"timeout"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     30,
			WriteTimeout:    30,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Providers: ProvidersConfig{
			OpenWeather: OpenWeatherConfig{
				GeoBaseURL:  "https://api.openweathermap.org/geo/1.0",
				DataBaseURL: "https://api.openweathermap.org/data/2.5",
				APIKey:      "",
				Units:       ImperialUnits,
				Timeout:     10,
			},
			Nominatim: NominatimConfig{
				Enabled:   true,
				BaseURL:   "https://nominatim.openstreetmap.org",
				UserAgent: "nimbus/1.0",
				Language:  "en",
				Timeout:   5,
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Endpoint: "tempo:4317",
		},
	}
}

// Validate reports the first setting that would make lookups impossible.
func (c *Config) Validate() error {
	ow := c.Providers.OpenWeather
	if ow.APIKey == "" {
		return errors.New("providers.openweather.api_key is required")
	}
	if ow.GeoBaseURL == "" || ow.DataBaseURL == "" {
		return errors.New("providers.openweather base URLs must be set")
	}
	if ow.Timeout <= 0 {
		return fmt.Errorf("providers.openweather.timeout must be positive, got %d", ow.Timeout)
	}
	// Records carry °F and mph fields, so only imperial readings fit them.
	if ow.Units != ImperialUnits {
		return fmt.Errorf("providers.openweather.units %q is not supported, records are reported in %s units", ow.Units, ImperialUnits)
	}

	nm := c.Providers.Nominatim
	if nm.Enabled {
		if nm.BaseURL == "" {
			return errors.New("providers.nominatim.base_url is required when enabled")
		}
		if nm.Timeout <= 0 {
			return fmt.Errorf("providers.nominatim.timeout must be positive, got %d", nm.Timeout)
		}
	}
	return nil
}

func (c OpenWeatherConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c NominatimConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
