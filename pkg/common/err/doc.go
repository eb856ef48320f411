// Package err provides the error structure shared by every gitgo package.
//
// # Package-Specific Errors
//
// Each package defines its own error types that wrap *err.Error and add
// domain fields:
//
//	type SpawnError struct {
//	    base *err.Error
//	    Args []string
//	}
//
//	func (e *SpawnError) Unwrap() error { return e.base }
//
// Package name and codes are constants in the owning package:
//
//	const (
//	    pkgName          = "gitexec"
//	    CodeGitNotFound  = "GIT_NOT_FOUND"
//	)
//
// # Error Checking
//
//	if err.IsCode(e, gitexec.CodeGitNotFound) {
//	    // tell the user to install git
//	}
//
// # Adding Context
//
//	e := err.New("store", err.CodeInternal, "record", "batch failed", cause)
//	e.WithContext("batch", gen).WithContext("pending", n)
//
// Codes follow the UPPER_SNAKE_CASE convention.
package err
