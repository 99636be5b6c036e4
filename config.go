package flyerscan

import (
	"fmt"
	"os"

	"github.com/wudi/flyerscan/preprocess"
	"gopkg.in/yaml.v3"
)

// registryFile is the on-disk shape of a pipeline registry override:
//
//	pipelines:
//	  - name: basic
//	    steps: [grayscale, otsu_threshold, invert_if_dark]
type registryFile struct {
	Pipelines []struct {
		Name  string   `yaml:"name"`
		Steps []string `yaml:"steps"`
	} `yaml:"pipelines"`
}

// LoadRegistry reads a pipeline registry from a YAML file, validating every
// step name against the fixed transform vocabulary. Registration order
// follows file order, which also fixes the selector's tie-break order.
func LoadRegistry(path string) (*preprocess.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("flyerscan: read registry: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry builds a registry from YAML bytes. See LoadRegistry.
func ParseRegistry(data []byte) (*preprocess.Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("flyerscan: parse registry: %w", err)
	}
	pipelines := make([]preprocess.Pipeline, 0, len(file.Pipelines))
	for _, p := range file.Pipelines {
		steps := make([]preprocess.Step, 0, len(p.Steps))
		for _, name := range p.Steps {
			step, err := preprocess.ParseStep(name)
			if err != nil {
				return nil, fmt.Errorf("flyerscan: registry pipeline %q: %w", p.Name, err)
			}
			steps = append(steps, step)
		}
		pipelines = append(pipelines, preprocess.Pipeline{Name: p.Name, Steps: steps})
	}
	reg, err := preprocess.NewRegistry(pipelines...)
	if err != nil {
		return nil, fmt.Errorf("flyerscan: registry: %w", err)
	}
	return reg, nil
}
