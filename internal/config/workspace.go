package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WorkspaceConfigFile is the optional YAML file a workspace root may carry
// alongside workspace.vl to set CLI defaults, grounded on the teacher's
// funxy.yaml (internal/ext/config.go's LoadConfig) — same
// read-file-then-yaml.Unmarshal shape, generalized from "declare Go
// dependencies for ext bindings" to "set default CLI flags for a
// workspace".
const WorkspaceConfigFile = "vael.yaml"

// WorkspaceConfig holds the defaults a vael.yaml may override. Every field
// is a zero-value-means-unset primitive, since this config's only consumer
// (pkg/cli) already treats "" / 0 / false as "fall through to the next
// precedence layer" for its own flag defaults.
type WorkspaceConfig struct {
	LogLevel   string   `yaml:"log_level,omitempty"`
	Format     string   `yaml:"format,omitempty"`
	Jobs       int      `yaml:"jobs,omitempty"`
	StoreDir   string   `yaml:"store_dir,omitempty"`
	SearchPath []string `yaml:"search_path,omitempty"`
	FailFast   bool     `yaml:"fail_fast,omitempty"`
	MaxFrames  int      `yaml:"max_frames,omitempty"`
	StoreIndex bool     `yaml:"store_index,omitempty"`
}

// LoadWorkspaceConfig reads and parses path's vael.yaml, if present. A
// missing file is not an error — the caller falls back to built-in
// defaults (spec.md §6 describes no required configuration file).
func LoadWorkspaceConfig(path string) (*WorkspaceConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &WorkspaceConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg WorkspaceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}
