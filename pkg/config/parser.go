package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parser handles parsing and serialization of YAML configuration files
type Parser struct{}

// ValidationResult contains validation results
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Parse parses YAML configuration content into a map of entries keyed by
// dotted path. Lists produce one entry per element.
func (p *Parser) Parse(content string, source ConfigSource, level ConfigLevel) (map[string][]*ConfigEntry, error) {
	result := make(map[string][]*ConfigEntry)

	if strings.TrimSpace(content) == "" {
		return result, nil
	}

	configData := NewConfigFileStructure()
	if err := yaml.Unmarshal([]byte(content), configData); err != nil {
		return nil, NewInvalidFormatError("parse", source.String(), fmt.Errorf("%w: %v", ErrInvalidFormat, err))
	}

	if err := p.parseSection(configData.data, result, source, level, ""); err != nil {
		return nil, err
	}

	return result, nil
}

// Serialize converts configuration entries to YAML.
func (p *Parser) Serialize(entries map[string][]*ConfigEntry) (string, error) {
	configData := NewConfigFileStructure()

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, fullKey := range keys {
		for _, entry := range entries[fullKey] {
			if err := configData.SetNestedValue(fullKey, entry.Value); err != nil {
				return "", err
			}
		}
	}

	data, err := yaml.Marshal(configData)
	if err != nil {
		return "", NewInvalidFormatError("serialize", "", fmt.Errorf("%w: %v", ErrInvalidFormat, err))
	}

	return string(data), nil
}

// Validate checks that content is a YAML mapping whose lists hold only
// scalars.
func (p *Parser) Validate(content string) ValidationResult {
	errors := []string{}

	if strings.TrimSpace(content) == "" {
		return ValidationResult{Valid: true, Errors: errors}
	}

	var parsed any
	if err := yaml.Unmarshal([]byte(content), &parsed); err != nil {
		errors = append(errors, fmt.Sprintf("Invalid YAML: %v", err))
		return ValidationResult{Valid: false, Errors: errors}
	}

	if parsed == nil {
		return ValidationResult{Valid: true, Errors: errors}
	}

	configMap, ok := parsed.(map[string]any)
	if !ok {
		errors = append(errors, "Configuration must be a YAML mapping")
		return ValidationResult{Valid: false, Errors: errors}
	}

	p.validateSection(configMap, "", &errors)
	return ValidationResult{Valid: len(errors) == 0, Errors: errors}
}

func (p *Parser) parseSection(
	section map[string]any,
	result map[string][]*ConfigEntry,
	source ConfigSource,
	level ConfigLevel,
	keyPrefix string,
) error {
	for key, value := range section {
		fullKey := p.buildFullKey(keyPrefix, key)
		if err := p.processConfigValue(fullKey, value, result, source, level); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) buildFullKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func (p *Parser) processConfigValue(
	key string,
	value any,
	result map[string][]*ConfigEntry,
	source ConfigSource,
	level ConfigLevel,
) error {
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			p.addEntry(result, key, scalarString(item), source, level)
		}
		return nil
	case map[string]any:
		return p.parseSection(v, result, source, level, key)
	case nil:
		return nil
	default:
		p.addEntry(result, key, scalarString(v), source, level)
		return nil
	}
}

func scalarString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func (p *Parser) addEntry(
	entryMap map[string][]*ConfigEntry,
	configKey string,
	configValue string,
	source ConfigSource,
	level ConfigLevel,
) {
	entryMap[configKey] = append(entryMap[configKey], NewEntry(configKey, configValue, level, source))
}

func (p *Parser) validateSection(configSection map[string]any, currentPath string, errors *[]string) {
	for key, value := range configSection {
		valuePath := p.buildFullKey(currentPath, key)
		switch v := value.(type) {
		case []any:
			for _, item := range v {
				switch item.(type) {
				case map[string]any, []any:
					*errors = append(*errors, fmt.Sprintf("Configuration list at '%s' must hold scalars", valuePath))
				}
			}
		case map[string]any:
			p.validateSection(v, valuePath, errors)
		}
	}
}
