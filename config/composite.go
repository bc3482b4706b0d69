package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cleitonmarx/vanguard/internal/reflectx"
)

// CompositeProvider chains multiple providers and returns the first
// successful value. The typical arrangement puts environment variables
// first and a YAML file underneath, so the environment always wins.
type CompositeProvider struct {
	providers []Provider
}

// NewCompositeProvider creates a provider that tries each provider in order
// until one succeeds.
func NewCompositeProvider(providers ...Provider) CompositeProvider {
	return CompositeProvider{providers: providers}
}

// Get retrieves a configuration value from the first provider that has it.
// When every provider fails, the combined error names each one.
func (p CompositeProvider) Get(ctx context.Context, name string) (string, error) {
	var errMsgs []string
	for _, provider := range p.providers {
		value, err := provider.Get(ctx, name)
		if err == nil {
			return value, nil
		}
		errMsgs = append(errMsgs, fmt.Sprintf("%s: %v", reflectx.TypeNameOf(provider), err))
	}
	return "", errors.New(strings.Join(errMsgs, "; "))
}
