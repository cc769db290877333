// Package config holds the CLI's file-backed configuration: which sources to
// load and where snapshots go. The engine packages never read configuration;
// everything they need arrives through their constructors.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		// Root is the directory the scanner starts from.
		Root string `yaml:"root"`
		// Package is the import path reported as the namespace of loaded
		// types.
		Package string `yaml:"package"`
	} `yaml:"project"`
	Scan struct {
		Include      []string `yaml:"include"`
		Exclude      []string `yaml:"exclude"`
		UseGitignore bool     `yaml:"use_gitignore"`
	} `yaml:"scan"`
	Snapshot struct {
		Path string `yaml:"path"`
	} `yaml:"snapshot"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Project.Root = "."
	cfg.Scan.Include = []string{"**/*.go"}
	cfg.Scan.Exclude = []string{"**/*_test.go", "vendor/**", "testdata/**"}
	cfg.Scan.UseGitignore = true
	cfg.Snapshot.Path = "typegraph.db"
	return cfg
}

// Load reads a YAML config file over the defaults. A .env file in the working
// directory is loaded first; environment variables override the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if root := os.Getenv("TYPEGRAPH_ROOT"); root != "" {
		cfg.Project.Root = root
	}
	if pkg := os.Getenv("TYPEGRAPH_PACKAGE"); pkg != "" {
		cfg.Project.Package = pkg
	}
	if snap := os.Getenv("TYPEGRAPH_SNAPSHOT"); snap != "" {
		cfg.Snapshot.Path = snap
	}

	return cfg, nil
}
