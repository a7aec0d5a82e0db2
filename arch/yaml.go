package arch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlFile is the on-disk shape of a user-supplied architecture table.
//
// Example:
//
//	models:
//	  - name: acme/acme-7b
//	    num_layers: 32
//	    hidden_size: 4096
//	    residual_template: model.layers.%d
//	    mlp_template: model.layers.%d.mlp
//	    attention_template: model.layers.%d.self_attn
//	    recommended_layers:
//	      formality: [14, 15, 16]
type yamlFile struct {
	Models []yamlConfig `yaml:"models"`
}

type yamlConfig struct {
	Name              string           `yaml:"name"`
	NumLayers         int              `yaml:"num_layers"`
	HiddenSize        int              `yaml:"hidden_size"`
	ResidualTemplate  string           `yaml:"residual_template"`
	MLPTemplate       string           `yaml:"mlp_template"`
	AttentionTemplate string           `yaml:"attention_template"`
	RecommendedLayers map[string][]int `yaml:"recommended_layers"`
}

// ParseYAML decodes architecture configs from YAML bytes.
func ParseYAML(data []byte) ([]Config, error) {
	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse architecture yaml: %w", err)
	}

	configs := make([]Config, 0, len(file.Models))
	for _, m := range file.Models {
		cfg := Config{
			Name:              m.Name,
			NumLayers:         m.NumLayers,
			HiddenSize:        m.HiddenSize,
			ResidualTemplate:  m.ResidualTemplate,
			MLPTemplate:       m.MLPTemplate,
			AttentionTemplate: m.AttentionTemplate,
			RecommendedLayers: m.RecommendedLayers,
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// LoadYAML reads a YAML architecture table from disk and registers every
// config into the given registry (the process-wide one if reg is nil).
func LoadYAML(path string, reg *Registry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read architecture yaml: %w", err)
	}

	configs, err := ParseYAML(data)
	if err != nil {
		return err
	}

	if reg == nil {
		reg = defaultRegistry
	}
	for _, cfg := range configs {
		if err := reg.Register(cfg); err != nil {
			return err
		}
	}
	return nil
}
