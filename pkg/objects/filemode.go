package objects

import (
	"fmt"
	"strconv"
)

// FileMode represents Git file mode (type + permissions) as printed in the
// first column of `git cat-file -p <tree>`.
type FileMode uint32

// File mode constants that Git uses
const (
	FileModeTypeMask FileMode = 0xF000
	FileModeExecMask FileMode = 0x0049

	FileModeTypeRegular FileMode = 0x8000
	FileModeTypeSymlink FileMode = 0xA000
	FileModeTypeGitlink FileMode = 0xE000
	FileModeTypeDir     FileMode = 0x4000

	FileModeRegular    FileMode = 0o100644
	FileModeExecutable FileMode = 0o100755
	FileModeSymlink    FileMode = 0o120000
	FileModeGitlink    FileMode = 0o160000
	FileModeDirectory  FileMode = 0o040000
)

// Type returns the file type portion of the mode.
func (m FileMode) Type() FileMode {
	return m & FileModeTypeMask
}

// IsDirectory returns true if this is a directory.
func (m FileMode) IsDirectory() bool {
	return m.Type() == FileModeTypeDir
}

// IsExecutable returns true if the file has execute permissions.
func (m FileMode) IsExecutable() bool {
	return m.Type() == FileModeTypeRegular && (m&FileModeExecMask) != 0
}

// IsSymlink returns true if this is a symbolic link.
func (m FileMode) IsSymlink() bool {
	return m.Type() == FileModeTypeSymlink
}

// IsGitlink returns true if this is a gitlink (submodule).
func (m FileMode) IsGitlink() bool {
	return m.Type() == FileModeTypeGitlink
}

// String returns a human-readable representation of the file mode.
func (m FileMode) String() string {
	switch m.Type() {
	case FileModeTypeRegular:
		if m.IsExecutable() {
			return "executable"
		}
		return "file"
	case FileModeTypeSymlink:
		return "symlink"
	case FileModeTypeGitlink:
		return "gitlink"
	case FileModeTypeDir:
		return "directory"
	default:
		return fmt.Sprintf("unknown(%o)", uint32(m))
	}
}

// ToOctalString returns the mode as a six digit octal string ("100644", "040000").
func (m FileMode) ToOctalString() string {
	return fmt.Sprintf("%06o", uint32(m))
}

// FromOctalString parses a mode code such as "100644" or "40000".
func FromOctalString(s string) (FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode string %q: %w", s, err)
	}
	return FileMode(v), nil
}
