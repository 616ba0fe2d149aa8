package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "NIMBUS"

// Load builds the configuration from defaults, an optional YAML file and
// NIMBUS_* environment variables, in increasing order of precedence.
// A missing ./config.yaml is fine; a missing explicit configPath is not.
func Load(configPath string) (*Config, error) {
	cfg := NewDefaultConfig()
	v := newViper(configPath)

	if err := registerSettings(v, "", reflect.ValueOf(cfg)); err != nil {
		return nil, fmt.Errorf("error registering config keys: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// registerSettings walks the config struct and, for every leaf setting,
// records its current value as the default and binds its NIMBUS_ variable.
// Explicit binding lets env vars reach Unmarshal even for keys absent from
// the file.
func registerSettings(v *viper.Viper, prefix string, rv reflect.Value) error {
	rv = reflect.Indirect(rv)
	if rv.Kind() != reflect.Struct {
		return nil
	}

	for _, field := range reflect.VisibleFields(rv.Type()) {
		if !field.IsExported() || field.Anonymous || len(field.Index) > 1 {
			continue
		}
		name, ok := settingName(field)
		if !ok {
			continue
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		value := rv.FieldByIndex(field.Index)
		if value.Kind() == reflect.Struct {
			if err := registerSettings(v, key, value); err != nil {
				return err
			}
			continue
		}

		v.SetDefault(key, value.Interface())
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// settingName is the key a field is stored under. Fields tagged
// mapstructure:"-" are not settings.
func settingName(field reflect.StructField) (string, bool) {
	tag, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
	switch tag {
	case "-":
		return "", false
	case "":
		return strings.ToLower(field.Name), true
	}
	return tag, true
}
