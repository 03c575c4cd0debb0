// Package config loads the bootstrap configuration.
package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/slatecms/slate/internal/logger"
)

const configFilename = "config.yaml"

// Config holds everything the binary needs before the database is up.
type Config struct {
	DatabaseFile string `yaml:"dbfile"`
	Host         string `yaml:"host"`
	LogFormat    string `yaml:"log_format"`
	LogLevel     string `yaml:"log_level"`

	// Languages the content tree is maintained in.
	Clangs []int64 `yaml:"clangs"`
}

// Setup loads file-based configuration, initializes logging and writes
// a default config file when none exists yet.
func Setup() *Config {
	viper.SetDefault("dbfile", "slate.db")
	viper.SetDefault("host", "0.0.0.0:8080")
	viper.SetDefault("log_format", "pretty") // pretty, json, or text
	viper.SetDefault("log_level", "info")    // debug, info, warn, error
	viper.SetDefault("clangs", []int64{1})

	viper.SetConfigFile(configFilename)
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()

	createDefaultConfigFile := false

	if err != nil {
		if strings.Contains(err.Error(), "no such file or directory") {
			createDefaultConfigFile = true
		} else {
			slog.Error("failed to read config", "error", err)
			os.Exit(1)
		}
	}

	logger.Init(viper.GetString("log_format"), viper.GetString("log_level"))

	clangs := make([]int64, 0)
	for _, c := range viper.GetIntSlice("clangs") {
		clangs = append(clangs, int64(c))
	}
	if len(clangs) == 0 {
		clangs = []int64{1}
	}

	config := &Config{
		DatabaseFile: viper.GetString("dbfile"),
		Host:         viper.GetString("host"),
		LogFormat:    viper.GetString("log_format"),
		LogLevel:     viper.GetString("log_level"),
		Clangs:       clangs,
	}

	if createDefaultConfigFile {
		slog.Info("config not found, writing defaults", "file", configFilename)
		conf, err := os.Create(configFilename)
		if err != nil {
			slog.Error("failed to create config file", "error", err)
			os.Exit(1)
		}
		defer conf.Close()

		if err := yaml.NewEncoder(conf).Encode(config); err != nil {
			slog.Error("failed to write config file", "error", err)
			os.Exit(1)
		}
	}

	return config
}
