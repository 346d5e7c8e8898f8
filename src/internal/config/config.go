// Package config loads the tool configuration from a .litdb.yaml file, the
// environment, and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"litdb/src/internal/labels"
	"litdb/src/internal/stringsx"
)

// Config is the resolved tool configuration.
type Config struct {
	// Database is the path to the flat YAML file holding all entries.
	Database string
	// CacheDir holds the parsed-database cache; empty disables caching.
	CacheDir string
	// Git enables automatic commits of every mutating command.
	Git bool
	// LabelTemplate derives the default label for new entries.
	LabelTemplate string
	// Suffix disambiguates colliding labels.
	Suffix labels.Suffix
	// PreserveFiles skips file renames on label changes by default.
	PreserveFiles bool
	// Editor launches for interactive entry editing.
	Editor string
}

// Load reads the configuration, searching the working directory and the home
// directory for a .litdb.yaml file. Environment variables use the LITDB_
// prefix.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		home = "."
	}
	v := viper.New()
	v.SetDefault("database", filepath.Join(home, ".litdb", "literature.yaml"))
	v.SetDefault("cache_dir", filepath.Join(home, ".cache", "litdb"))
	v.SetDefault("git", false)
	v.SetDefault("label_template", labels.DefaultTemplate)
	v.SetDefault("suffix_separator", "_")
	v.SetDefault("suffix_kind", "alpha")
	v.SetDefault("preserve_files", false)
	v.SetDefault("editor", stringsx.FirstNonEmpty(os.Getenv("VISUAL"), os.Getenv("EDITOR"), "vi"))

	v.SetConfigName(".litdb")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("LITDB")
	v.AutomaticEnv()
	if override := os.Getenv("LITDB_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath(".")
	v.AddConfigPath(home)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	kind, err := labels.ParseSuffixKind(v.GetString("suffix_kind"))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	database, err := homedir.Expand(v.GetString("database"))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cacheDir, err := homedir.Expand(v.GetString("cache_dir"))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &Config{
		Database:      database,
		CacheDir:      cacheDir,
		Git:           v.GetBool("git"),
		LabelTemplate: v.GetString("label_template"),
		Suffix:        labels.Suffix{Separator: v.GetString("suffix_separator"), Kind: kind},
		PreserveFiles: v.GetBool("preserve_files"),
		Editor:        v.GetString("editor"),
	}, nil
}
