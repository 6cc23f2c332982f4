package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type ToolConfig struct {
	ListenAddr    string  `yaml:"listen_addr"`
	AnimationsDir string  `yaml:"animations_dir"`
	SkeletonPath  string  `yaml:"skeleton_path"`
	ImportScale   float32 `yaml:"import_scale"`
	Encoding      string  `yaml:"encoding"`
}

// LoadToolConfig reads the yaml tool configuration and applies the global
// knobs (import scale, charmap) it carries.
func LoadToolConfig(path string) (*ToolConfig, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read config %q", path)
	}

	cfg := &ToolConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "Failed to unmarshal config %q", path)
	}

	if cfg.ImportScale != 0 {
		SetImportScale(cfg.ImportScale)
	}
	if cfg.Encoding != "" {
		if err := SetEncoding(cfg.Encoding); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
