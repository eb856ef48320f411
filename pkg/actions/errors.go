package actions

import (
	"fmt"

	"github.com/utkarsh5026/gitgo/pkg/common/err"
)

const pkgName = "actions"

// Error codes for message handling
const (
	CodeUnknownAction = "UNKNOWN_ACTION"
	CodeDecode        = "DECODE_FAILED"
)

// UnknownActionError reports a message whose type names no operation.
type UnknownActionError struct {
	baseError *err.Error
	Type      string
}

// NewUnknownActionError creates a new unknown action error
func NewUnknownActionError(msgType string) error {
	return &UnknownActionError{
		baseError: err.New(
			pkgName,
			CodeUnknownAction,
			"dispatch",
			fmt.Sprintf("unknown message type %q", msgType),
			nil,
		),
		Type: msgType,
	}
}

// Error implements the error interface
func (e *UnknownActionError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *UnknownActionError) Unwrap() error {
	return e.baseError
}

// NewDecodeError reports a message that is not valid JSON.
func NewDecodeError(cause error) error {
	return err.New(pkgName, CodeDecode, "decode", "invalid message", cause)
}

// InvalidArgumentError reports a message field that git would read as an
// option.
type InvalidArgumentError struct {
	baseError *err.Error
	Field     string
	Value     string
}

// NewInvalidArgumentError creates a new invalid argument error
func NewInvalidArgumentError(field, value string) error {
	return &InvalidArgumentError{
		baseError: err.New(
			pkgName,
			err.CodeInvalidInput,
			"validate",
			fmt.Sprintf("%s %q must not start with '-'", field, value),
			nil,
		),
		Field: field,
		Value: value,
	}
}

// Error implements the error interface
func (e *InvalidArgumentError) Error() string {
	return e.baseError.Error()
}

// Unwrap returns the underlying error
func (e *InvalidArgumentError) Unwrap() error {
	return e.baseError
}
