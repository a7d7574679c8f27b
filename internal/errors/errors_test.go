package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewf(t *testing.T) {
	err := Newf("formatted %s", "error")
	assert.NotNil(t, err)
	assert.Equal(t, "formatted error", err.Error())

	var appErr *ApplicationError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, Unknown, appErr.Kind())
	assert.Nil(t, Unwrap(err))
}

func TestFileError(t *testing.T) {
	// Test creating a file error
	fileErr := NewFileError("cannot access", "/path/to/file", FileAccessDenied, nil)
	assert.NotNil(t, fileErr)
	assert.Equal(t, "cannot access: /path/to/file", fileErr.Error())
	assert.Equal(t, "/path/to/file", fileErr.Path())
	assert.Equal(t, FileAccessDenied, fileErr.Kind())

	// Test with wrapped error
	origErr := fmt.Errorf("permission denied")
	fileErr = NewFileError("cannot access", "/path/to/file", FileAccessDenied, origErr)
	assert.Equal(t, "cannot access: /path/to/file: permission denied", fileErr.Error())
	assert.Equal(t, origErr, Unwrap(fileErr))

	// Test IsFileNotFound predicate
	notFoundErr := NewFileError("file not found", "/missing/file", FileNotFound, nil)
	assert.True(t, IsFileNotFound(notFoundErr))
	assert.False(t, IsFileNotFound(fileErr)) // This is FileAccessDenied

	// Test IsFileAccessDenied predicate
	assert.True(t, IsFileAccessDenied(fileErr))
	assert.False(t, IsFileAccessDenied(notFoundErr))

	// Test As for FileError
	var fe *FileError
	assert.True(t, As(fileErr, &fe))
	assert.Equal(t, "/path/to/file", fe.Path())
}

func TestConfigError(t *testing.T) {
	// Test creating a config error
	configErr := NewConfigError("invalid value", "timeout", InvalidConfig, nil)
	assert.NotNil(t, configErr)
	assert.Equal(t, "invalid value: timeout", configErr.Error())
	assert.Equal(t, "timeout", configErr.Param())
	assert.Equal(t, InvalidConfig, configErr.Kind())

	// Test with wrapped error
	origErr := fmt.Errorf("value out of range")
	configErr = NewConfigError("invalid value", "timeout", InvalidConfig, origErr)
	assert.Equal(t, "invalid value: timeout: value out of range", configErr.Error())
	assert.Equal(t, origErr, Unwrap(configErr))

	// Test IsInvalidConfig predicate
	assert.True(t, IsInvalidConfig(configErr))
	assert.False(t, IsInvalidConfig(Newf("some other error")))

	// Test As for ConfigError
	var ce *ConfigError
	assert.True(t, As(configErr, &ce))
	assert.Equal(t, "timeout", ce.Param())
}

func TestMetadataError(t *testing.T) {
	metaErr := NewMetadataError("not a JPEG", "/photos/a.png", "rewrite", UnsupportedFormat, nil)
	assert.Equal(t, "rewrite: not a JPEG: /photos/a.png", metaErr.Error())
	assert.Equal(t, "/photos/a.png", metaErr.Path())
	assert.Equal(t, "rewrite", metaErr.Operation())
	assert.Equal(t, UnsupportedFormat, metaErr.Kind())

	origErr := fmt.Errorf("short read")
	metaErr = NewMetadataError("decode failed", "/photos/a.jpg", "", MetadataDecodeFailed, origErr)
	assert.Equal(t, "decode failed: /photos/a.jpg: short read", metaErr.Error())
	assert.Equal(t, origErr, Unwrap(metaErr))

	assert.True(t, IsUnsupportedFormat(NewMetadataError("not a JPEG", "", "rewrite", UnsupportedFormat, nil)))
	assert.False(t, IsUnsupportedFormat(metaErr))
	assert.True(t, IsMetadataError(metaErr))
	assert.False(t, IsMetadataError(Newf("plain")))
}

func TestDestinationExists(t *testing.T) {
	err := NewFileError("modified copy already exists", "/photos/a_modified.jpg", DestinationExists, nil)
	assert.True(t, IsDestinationExists(err))
	assert.True(t, IsDestinationExists(fmt.Errorf("rewrite: %w", err)))
	assert.False(t, IsDestinationExists(NewFileError("file not found", "/photos/a.jpg", FileNotFound, nil)))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, FileNotFound, KindOf(NewFileError("file not found", "", FileNotFound, nil)))
	assert.Equal(t, InvalidConfig, KindOf(fmt.Errorf("load: %w", NewConfigError("invalid configuration", "", InvalidConfig, nil))))
	assert.Equal(t, SegmentTooLarge, KindOf(NewMetadataError("too large", "", "rewrite", SegmentTooLarge, nil)))
	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
	assert.Equal(t, Unknown, KindOf(nil))
}

func TestErrorChains(t *testing.T) {
	// Create a chain of errors
	baseErr := errors.New("base error")
	fileErr := NewFileError("file error", "/path/to/file", FileNotFound, baseErr)
	configErr := NewConfigError("config error", "folder.initial", InvalidConfig, fileErr)
	metaErr := NewMetadataError("metadata error", "/path/to/img.jpg", "read", MetadataDecodeFailed, configErr)

	// Test complete error message
	assert.Equal(t, "read: metadata error: /path/to/img.jpg: config error: folder.initial: file error: /path/to/file: base error", metaErr.Error())

	// Test Is function through the chain
	assert.True(t, Is(metaErr, baseErr))
	assert.True(t, Is(metaErr, fileErr))
	assert.True(t, Is(metaErr, configErr))

	// Test As function through the chain
	var fe *FileError
	assert.True(t, As(metaErr, &fe))
	assert.Equal(t, "/path/to/file", fe.Path())

	var ce *ConfigError
	assert.True(t, As(metaErr, &ce))
	assert.Equal(t, "folder.initial", ce.Param())

	// Test error predicates through the chain
	assert.True(t, IsFileNotFound(metaErr))
	assert.True(t, IsInvalidConfig(metaErr))
	assert.True(t, IsMetadataError(metaErr))
}
