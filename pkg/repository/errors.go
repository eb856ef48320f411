package repository

import (
	"fmt"

	"github.com/utkarsh5026/gitgo/pkg/common/err"
)

const (
	pkgName = "repository"

	// ValidationID is the numeric id the panel front end shows for path
	// validation failures.
	ValidationID = 410
)

// Error codes for repository validation
const (
	CodePathNotFound  = "PATH_NOT_FOUND"
	CodeNotRepository = "NOT_A_REPOSITORY"
	CodeInvalidLayout = "INVALID_LAYOUT"
)

// ValidationError is raised before any subprocess is spawned when the
// target path cannot be used as a repository.
type ValidationError struct {
	base *err.Error
	ID   int
	Path string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.base.Error()
}

// Unwrap returns the underlying error
func (e *ValidationError) Unwrap() error {
	return e.base
}

// Code returns the machine-checkable code.
func (e *ValidationError) Code() string {
	return e.base.Code
}

// Message returns the human-readable message.
func (e *ValidationError) Message() string {
	return e.base.Message
}

// NewPathNotFoundError reports a path that does not exist.
func NewPathNotFoundError(path string, cause error) error {
	return &ValidationError{
		base: err.New(pkgName, CodePathNotFound, "open",
			fmt.Sprintf("the path %s was not found", path), cause),
		ID:   ValidationID,
		Path: path,
	}
}

// NewNotRepositoryError reports a path outside any git repository.
func NewNotRepositoryError(path string) error {
	return &ValidationError{
		base: err.New(pkgName, CodeNotRepository, "open",
			fmt.Sprintf("the directory %s does not appear to be inside a git repository", path), nil),
		ID:   ValidationID,
		Path: path,
	}
}

// NewInvalidLayoutError reports a .git entry that cannot be used.
func NewInvalidLayoutError(path string, cause error) error {
	return &ValidationError{
		base: err.New(pkgName, CodeInvalidLayout, "open",
			fmt.Sprintf("%s is not a usable git directory", path), cause),
		ID:   ValidationID,
		Path: path,
	}
}
