package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileStructure is the nested document of a configuration file.
//
// Dotted keys map onto nested sections:
//
//	ingest:
//	  concurrency: 8
//	  blob_mode: full
//	watch:
//	  debounce: 150ms
//
// holds "ingest.concurrency", "ingest.blob_mode" and "watch.debounce".
type ConfigFileStructure struct {
	data map[string]any
}

// NewConfigFileStructure creates a new empty ConfigFileStructure.
func NewConfigFileStructure() *ConfigFileStructure {
	return &ConfigFileStructure{data: make(map[string]any)}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *ConfigFileStructure) UnmarshalYAML(node *yaml.Node) error {
	c.data = make(map[string]any)
	return node.Decode(&c.data)
}

// MarshalYAML implements yaml.Marshaler.
func (c *ConfigFileStructure) MarshalYAML() (any, error) {
	return c.data, nil
}

// Range iterates over all top-level keys and values in the configuration.
// The callback function can return an error to stop iteration early.
func (c *ConfigFileStructure) Range(fn func(key string, value any) error) error {
	for key, value := range c.data {
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return nil
}

// SetNestedValue sets a value using dot notation, creating intermediate
// sections as needed. Setting an existing scalar key again turns it into a
// list.
func (c *ConfigFileStructure) SetNestedValue(keyPath, value string) error {
	if strings.TrimSpace(keyPath) == "" {
		return NewInvalidValueError(keyPath, fmt.Errorf("empty key path"))
	}
	pathSegments := strings.Split(keyPath, ".")

	finalKey := pathSegments[len(pathSegments)-1]
	target := c.navigateToTargetObject(pathSegments[:len(pathSegments)-1])

	c.setValueInObject(target, finalKey, value)
	return nil
}

// navigateToTargetObject walks the section path, replacing anything that is
// not a section with an empty one.
func (c *ConfigFileStructure) navigateToTargetObject(pathSegments []string) map[string]any {
	currentObject := c.data

	for _, segment := range pathSegments {
		next, ok := currentObject[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			currentObject[segment] = next
		}
		currentObject = next
	}

	return currentObject
}

func (c *ConfigFileStructure) setValueInObject(targetObject map[string]any, key, newValue string) {
	existingValue, exists := targetObject[key]
	if !exists {
		targetObject[key] = newValue
		return
	}

	switch v := existingValue.(type) {
	case []any:
		targetObject[key] = append(v, newValue)
	case map[string]any:
		// a section stays a section
	default:
		targetObject[key] = []any{v, newValue}
	}
}
