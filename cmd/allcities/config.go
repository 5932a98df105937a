package main

import (
	"strings"
	"time"

	"github.com/andreiashu/allcities"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "./allcities-data")
	v.SetDefault("update_url", allcities.DefaultUpdateURL)
	v.SetDefault("http_timeout", 5*time.Minute)
	v.SetDefault("attempts", 3)
	v.SetDefault("retry_delay", time.Second)
	v.SetDefault("min_cities", 1)
	v.SetDefault("json_logs", false)
	v.SetDefault("verbose", false)
}

// loadConfig merges defaults, the config file, ALLCITIES_* environment
// variables and flags, in increasing precedence.
func loadConfig(cmd *cobra.Command) error {
	setDefaults(v)
	v.SetEnvPrefix("ALLCITIES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	flags := map[string]string{
		"data_dir":  "data-dir",
		"json_logs": "json-logs",
		"verbose":   "verbose",
	}
	for key, name := range flags {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return errors.Wrapf(err, "binding flag %s", name)
			}
		}
	}

	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("allcities")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return errors.Wrap(err, "reading config")
		}
	}
	return nil
}

// storeOptions turns the merged configuration into library options.
func storeOptions() []allcities.Option {
	return []allcities.Option{
		allcities.WithDataDir(v.GetString("data_dir")),
		allcities.WithUpdateURL(v.GetString("update_url")),
		allcities.WithHTTPTimeout(v.GetDuration("http_timeout")),
		allcities.WithRetries(v.GetInt("attempts"), v.GetDuration("retry_delay")),
		allcities.WithMinCities(v.GetInt("min_cities")),
		allcities.WithLogger(log.Desugar()),
	}
}
