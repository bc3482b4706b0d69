package config

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// YAMLFileProvider retrieves configuration values from a YAML file. Nested
// mappings are flattened with '.' separators, so `ready: {max_attempts: 5}`
// is addressable as "ready.max_attempts". The file is read once, on the
// first lookup.
type YAMLFileProvider struct {
	path string

	once    sync.Once
	values  map[string]string
	loadErr error
}

// NewYAMLFileProvider creates a provider backed by the YAML file at path.
func NewYAMLFileProvider(path string) *YAMLFileProvider {
	return &YAMLFileProvider{path: path}
}

// Get retrieves the value for the given key, loading the file on first use.
func (p *YAMLFileProvider) Get(_ context.Context, name string) (string, error) {
	p.once.Do(p.load)
	if p.loadErr != nil {
		return "", p.loadErr
	}
	value, exists := p.values[name]
	if !exists {
		return "", fmt.Errorf("key '%s' not found in '%s'", name, p.path)
	}
	return value, nil
}

func (p *YAMLFileProvider) load() {
	content, err := os.ReadFile(p.path)
	if err != nil {
		p.loadErr = fmt.Errorf("read config file: %w", err)
		return
	}
	var doc map[string]any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		p.loadErr = fmt.Errorf("parse config file: %w", err)
		return
	}
	p.values = map[string]string{}
	flattenYAML("", doc, p.values)
}

func flattenYAML(prefix string, node map[string]any, out map[string]string) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flattenYAML(full, v, out)
		case nil:
			out[full] = ""
		default:
			out[full] = fmt.Sprint(v)
		}
	}
}
