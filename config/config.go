// Package config provides configuration lookup with pluggable providers and
// struct field injection via tags. Environment variables are the default
// source; a YAML file can be composed underneath as a fallback.
package config

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/cleitonmarx/vanguard/internal/reflectx"
)

const (
	// tagName is the struct tag key for configuration value names
	tagName = "config"
	// defaultTagName is the struct tag key for default values
	defaultTagName = "default"
)

var (
	// globalProvider is the active source for all configuration lookups
	globalProvider Provider
	// parserRegistry maps types to their parsing functions for string value conversion
	parserRegistry map[reflect.Type]func(value string) (any, error)
)

// Provider retrieves configuration values by key.
// Implementations can read from environment variables, files, remote services, etc.
type Provider interface {
	// Get retrieves the configuration value for the given key.
	Get(ctx context.Context, name string) (string, error)
}

// SetGlobalProvider sets the active provider for all configuration lookups.
// Call during startup, before any settings are loaded.
func SetGlobalProvider(provider Provider) {
	globalProvider = provider
}

// ResetGlobalProvider restores the default environment variable provider.
// Typically used in tests to isolate configuration between test cases.
func ResetGlobalProvider() {
	globalProvider = NewEnvVarProvider()
}

// ParseFunc is a function that parses a string value into type T.
type ParseFunc[T any] func(value string) (T, error)

// RegisterParser registers a custom parser for type T.
// Built-in parsers exist for string, bool, int, int64, float64, and time.Duration.
func RegisterParser[T any](parser ParseFunc[T]) {
	parserRegistry[reflect.TypeOf((*T)(nil)).Elem()] = func(value string) (any, error) {
		return parser(value)
	}
}

// Get retrieves and parses a configuration value by key and type.
// Returns an error if the key is not found or parsing fails.
func Get[T any](ctx context.Context, name string) (T, error) {
	zero := reflectx.EmptyValue[T]()
	typeOfT := reflect.TypeOf((*T)(nil)).Elem()
	parser, exists := parserRegistry[typeOfT]
	if !exists {
		return zero, fmt.Errorf("config: parser for type '%s' does not exist", reflectx.TypeName(typeOfT))
	}
	raw, err := globalProvider.Get(ctx, name)
	if err != nil {
		return zero, fmt.Errorf("config: %s", err)
	}
	value, err := parser(raw)
	if err != nil {
		return zero, fmt.Errorf("config: %s", err)
	}
	return value.(T), nil
}

// GetWithDefault retrieves a configuration value or returns the default if
// the lookup or the parse fails. No error is returned.
func GetWithDefault[T any](ctx context.Context, name string, defaultValue T) T {
	value, err := Get[T](ctx, name)
	if err != nil {
		return defaultValue
	}
	return value
}

// LoadStruct injects configuration values into all struct fields tagged
// with config:"key". A default tag supplies the value when the key is not
// found; without one, a missing key is an error.
func LoadStruct[T any](ctx context.Context, target *T) error {
	return reflectx.IterateStructFields(target, loadStructFieldValue(ctx))
}

func loadStructFieldValue(ctx context.Context) reflectx.StructFieldIteratorFunc {
	return func(fieldValue reflect.Value, structField reflect.StructField, targetType reflect.Type) error {
		configName, ok := structField.Tag.Lookup(tagName)
		if !ok {
			return nil
		}

		parser, exists := parserRegistry[structField.Type]
		if !exists {
			return fmt.Errorf("config: parser for type '%s' does not exist", reflectx.TypeName(structField.Type))
		}

		valueStr, err := globalProvider.Get(ctx, configName)
		if err != nil {
			defaultValue, hasDefault := structField.Tag.Lookup(defaultTagName)
			if !hasDefault {
				return fmt.Errorf("config: error getting value for field '%s': %s", structField.Name, err)
			}
			valueStr = defaultValue
		}

		value, parseErr := parser(valueStr)
		if parseErr != nil {
			return fmt.Errorf("config: error parsing value for field '%s': %s", structField.Name, parseErr)
		}

		if err := reflectx.SetFieldValue(fieldValue, structField, value); err != nil {
			return fmt.Errorf("config: %s", err)
		}
		return nil
	}
}

func init() {
	parserRegistry = map[reflect.Type]func(value string) (any, error){
		reflect.TypeOf((*string)(nil)).Elem():        func(value string) (any, error) { return value, nil },
		reflect.TypeOf((*bool)(nil)).Elem():          func(value string) (any, error) { return strconv.ParseBool(value) },
		reflect.TypeOf((*int)(nil)).Elem():           func(value string) (any, error) { return strconv.Atoi(value) },
		reflect.TypeOf((*int64)(nil)).Elem():         func(value string) (any, error) { return strconv.ParseInt(value, 10, 64) },
		reflect.TypeOf((*float64)(nil)).Elem():       func(value string) (any, error) { return strconv.ParseFloat(value, 64) },
		reflect.TypeOf((*time.Duration)(nil)).Elem(): func(value string) (any, error) { return time.ParseDuration(value) },
	}

	globalProvider = NewEnvVarProvider()
}
