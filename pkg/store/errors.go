package store

import (
	"fmt"

	"github.com/utkarsh5026/gitgo/pkg/common/err"
	"github.com/utkarsh5026/gitgo/pkg/objects"
)

const pkgName = "store"

// NotFoundError reports a hash that is not in the current graph.
type NotFoundError struct {
	base *err.Error
	Kind objects.ObjectType
	Hash objects.ObjectHash
}

// NewNotFoundError creates a NotFoundError. An empty kind means any type.
func NewNotFoundError(kind objects.ObjectType, hash objects.ObjectHash) error {
	what := "object"
	if kind != "" {
		what = kind.String()
	}
	return &NotFoundError{
		base: err.New(pkgName, err.CodeNotFound, "lookup",
			fmt.Sprintf("%s %s is not in the graph", what, hash), nil),
		Kind: kind,
		Hash: hash,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return e.base.Error()
}

// Unwrap returns the underlying error
func (e *NotFoundError) Unwrap() error {
	return e.base
}
