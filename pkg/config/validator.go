package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/utkarsh5026/gitgo/pkg/common/logger"
)

// Validator provides semantic validation for configuration values
type Validator struct{}

var blobModes = []string{"full", "last-line", "none"}

// ValidateKeyValue validates a configuration key-value pair
// Returns nil if valid, or an error describing the validation failure
func (v *Validator) ValidateKeyValue(key, value string) error {
	parts := strings.Split(key, ".")
	if len(parts) < 2 || slices.Contains(parts, "") {
		return NewInvalidValueError(key, fmt.Errorf("configuration key must have at least section.name format"))
	}

	section := parts[0]
	name := strings.Join(parts[1:], ".")
	return v.validateBySection(section, name, value)
}

// validateBySection performs section-specific validation
func (v *Validator) validateBySection(section, name, value string) error {
	switch section {
	case "git":
		return v.validateGit(name, value)
	case "ingest":
		return v.validateIngest(name, value)
	case "watch":
		return v.validateWatch(name, value)
	case "artifacts":
		return v.validateArtifacts(name, value)
	case "log":
		return v.validateLog(name, value)
	default:
		// Unknown sections are allowed (extensibility)
		return nil
	}
}

func (v *Validator) validateGit(name, value string) error {
	if name == "binary" && strings.TrimSpace(value) == "" {
		return NewInvalidValueError(KeyGitBinary, fmt.Errorf("git binary cannot be empty"))
	}
	return nil
}

func (v *Validator) validateIngest(name, value string) error {
	key := "ingest." + name
	switch name {
	case "concurrency":
		n, err := v.validateInt(value, key)
		if err != nil {
			return err
		}
		if n < 1 {
			return NewInvalidValueError(key, fmt.Errorf("concurrency must be at least 1, got %d", n))
		}
	case "unordered":
		return v.validateBoolean(value, key)
	case "blob_mode":
		if !slices.Contains(blobModes, value) {
			return NewInvalidValueError(key, fmt.Errorf("invalid blob mode %q (valid: %s)", value, strings.Join(blobModes, ", ")))
		}
	case "timeout":
		return v.validateDuration(value, key)
	}
	return nil
}

func (v *Validator) validateWatch(name, value string) error {
	if name == "debounce" {
		return v.validateDuration(value, KeyWatchDebounce)
	}
	return nil
}

func (v *Validator) validateArtifacts(name, value string) error {
	switch name {
	case "enabled":
		return v.validateBoolean(value, KeyArtifactsEnabled)
	case "dir":
		if strings.TrimSpace(value) == "" {
			return NewInvalidValueError(KeyArtifactsDir, fmt.Errorf("artifact directory cannot be empty"))
		}
	}
	return nil
}

func (v *Validator) validateLog(name, value string) error {
	switch name {
	case "level":
		if _, err := logger.ParseLevel(value); err != nil {
			return NewInvalidValueError(KeyLogLevel, err)
		}
	case "format":
		if _, err := logger.ParseFormat(value); err != nil {
			return NewInvalidValueError(KeyLogFormat, err)
		}
	}
	return nil
}

func (v *Validator) validateInt(value, key string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, NewInvalidValueError(key, fmt.Errorf("must be an integer, got %q", value))
	}
	return n, nil
}

func (v *Validator) validateBoolean(value, key string) error {
	lower := strings.ToLower(strings.TrimSpace(value))
	validBools := []string{"true", "false", "yes", "no", "1", "0", "on", "off"}
	if !slices.Contains(validBools, lower) {
		return NewInvalidValueError(key, fmt.Errorf("must be a boolean value (true/false), got %q", value))
	}
	return nil
}

func (v *Validator) validateDuration(value, key string) error {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return NewInvalidValueError(key, fmt.Errorf("must be a duration such as 150ms, got %q", value))
	}
	if d < 0 {
		return NewInvalidValueError(key, fmt.Errorf("duration cannot be negative"))
	}
	return nil
}
