package process

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ToolConfig overrides how one toolchain binary is started, e.g. a solc
// wrapper script or a slither inside a virtualenv.
type ToolConfig struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
}

type toolsFile struct {
	Tools []ToolConfig `yaml:"tools"`
}

// LoadTools reads a tools file keyed by tool name. YAML and JSON are both
// accepted. A missing file yields an empty set so the configured commands apply.
func LoadTools(path string) (map[string]ToolConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]ToolConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tools file: %w", err)
	}

	var file toolsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse tools file %s: %w", path, err)
	}

	tools := make(map[string]ToolConfig, len(file.Tools))
	for i, tool := range file.Tools {
		switch {
		case tool.Name == "":
			return nil, fmt.Errorf("tools file %s: entry %d has no name", path, i)
		case tool.Command == "":
			return nil, fmt.Errorf("tools file %s: %s has no command", path, tool.Name)
		}
		if _, dup := tools[tool.Name]; dup {
			return nil, fmt.Errorf("tools file %s: %s declared twice", path, tool.Name)
		}
		tools[tool.Name] = tool
	}
	return tools, nil
}
