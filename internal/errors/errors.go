// Package errors provides standardized error handling for imgmeta.
// It defines the error kinds surfaced by the file lister, the metadata
// reader and rewriter, and the configuration loader, plus helpers for
// consistent wrapping and inspection.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	FileCreateFailed
	FileOperationFailed
	DestinationExists
	// Config error kinds
	InvalidConfig
	// Metadata error kinds
	UnsupportedFormat
	MetadataDecodeFailed
	MetadataWriteFailed
	SegmentTooLarge
	InvalidXMPField
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// MetadataError represents a failure while decoding or rewriting image
// metadata.
type MetadataError struct {
	ApplicationError
	path      string
	operation string
}

// NewMetadataError creates a new metadata error. operation is "read" or
// "rewrite" and may be empty.
func NewMetadataError(msg, path, operation string, kind ErrorKind, err error) *MetadataError {
	return &MetadataError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path:      path,
		operation: operation,
	}
}

// Error returns the metadata error message
func (e *MetadataError) Error() string {
	prefix := e.msg
	if e.operation != "" {
		prefix = e.operation + ": " + prefix
	}
	switch {
	case e.path != "" && e.err != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, e.path, e.err)
	case e.path != "":
		return fmt.Sprintf("%s: %s", prefix, e.path)
	case e.err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.err)
	}
	return prefix
}

// Path returns the image path associated with the error
func (e *MetadataError) Path() string {
	return e.path
}

// Operation returns the metadata operation that failed
func (e *MetadataError) Operation() string {
	return e.operation
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// KindOf returns the kind of the first application error in err's chain.
func KindOf(err error) ErrorKind {
	var kinded interface{ Kind() ErrorKind }
	if errors.As(err, &kinded) {
		return kinded.Kind()
	}
	return Unknown
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileNotFound
	}
	return false
}

// IsFileAccessDenied checks if the error is a file access denied error
func IsFileAccessDenied(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileAccessDenied
	}
	return false
}

// IsDestinationExists checks if a rewrite refused to touch an existing copy
func IsDestinationExists(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == DestinationExists
	}
	return false
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// IsUnsupportedFormat checks if the metadata codec rejected the file format
func IsUnsupportedFormat(err error) bool {
	var metaErr *MetadataError
	if errors.As(err, &metaErr) {
		return metaErr.Kind() == UnsupportedFormat
	}
	return false
}

// IsMetadataError checks if the error came from the metadata codec
func IsMetadataError(err error) bool {
	var metaErr *MetadataError
	return errors.As(err, &metaErr)
}
