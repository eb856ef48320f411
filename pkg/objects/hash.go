package objects

import (
	"fmt"
	"strings"
)

// ObjectHash represents a SHA-1 hash of a Git object (40-character hex string)
// Example: "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"
type ObjectHash string

// ShortHash represents an abbreviated hash (typically 7 characters)
// Example: "e69de29"
type ShortHash string

const (
	// HashLength is the length of a full SHA-1 hash in hex (40 characters)
	HashLength = 40
	// ShortHashLength is the default length for abbreviated hashes (7 characters)
	ShortHashLength = 7
)

// NewObjectHashFromString creates an ObjectHash from a hex string.
// Returns an error if the string is not a valid hash.
func NewObjectHashFromString(s string) (ObjectHash, error) {
	hash := ObjectHash(strings.ToLower(strings.TrimSpace(s)))
	if err := hash.Validate(); err != nil {
		return "", err
	}
	return hash, nil
}

// ParseObjectHash is an alias for NewObjectHashFromString
func ParseObjectHash(s string) (ObjectHash, error) {
	return NewObjectHashFromString(s)
}

// String returns the hash as a string
func (h ObjectHash) String() string {
	return string(h)
}

// IsValid returns true if this is a valid SHA-1 hash
func (h ObjectHash) IsValid() bool {
	return h.Validate() == nil
}

// Validate checks if the hash is valid
func (h ObjectHash) Validate() error {
	if len(h) != HashLength {
		return fmt.Errorf("hash must be %d characters long, got %d", HashLength, len(h))
	}

	for _, c := range h {
		if !isHexChar(c) {
			return fmt.Errorf("hash must contain only hex characters, found '%c'", c)
		}
	}

	return nil
}

// Short returns the abbreviated version of the hash
func (h ObjectHash) Short() ShortHash {
	if len(h) >= ShortHashLength {
		return ShortHash(h[:ShortHashLength])
	}
	return ShortHash(h)
}

// String returns the short hash as a string
func (s ShortHash) String() string {
	return string(s)
}

func isHexChar(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
