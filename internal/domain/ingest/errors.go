package ingest

import (
	"errors"
	"fmt"
)

// FileErrorKind classifies a file-level fatal error
type FileErrorKind string

const (
	FileErrorAccess      FileErrorKind = "FILE_ACCESS"
	FileErrorFingerprint FileErrorKind = "FINGERPRINT"
	FileErrorParse       FileErrorKind = "PARSE"
)

// FileError aborts the pipeline for one file. It is matched with errors.Is
// against ErrFileAccess, ErrFingerprint and ErrParse.
type FileError struct {
	Kind FileErrorKind
	Path string
	Err  error
}

// Error implements the error interface
func (e *FileError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.label(), e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.label(), e.Path, e.Err)
}

func (e *FileError) label() string {
	switch e.Kind {
	case FileErrorAccess:
		return "cannot read file"
	case FileErrorFingerprint:
		return "cannot fingerprint file"
	case FileErrorParse:
		return "malformed CSV in"
	default:
		return "file error"
	}
}

// Unwrap returns the underlying cause
func (e *FileError) Unwrap() error {
	return e.Err
}

// Is matches kind sentinels
func (e *FileError) Is(target error) bool {
	var t *FileError
	if errors.As(target, &t) && t.Path == "" && t.Err == nil {
		return t.Kind == e.Kind
	}
	return false
}

// NewFileError wraps err as a file-level fatal error
func NewFileError(kind FileErrorKind, path string, err error) *FileError {
	return &FileError{Kind: kind, Path: path, Err: err}
}

// Kind sentinels for errors.Is
var (
	ErrFileAccess  = &FileError{Kind: FileErrorAccess}
	ErrFingerprint = &FileError{Kind: FileErrorFingerprint}
	ErrParse       = &FileError{Kind: FileErrorParse}
)

// ErrPersistenceUnavailable is wrapped by the persistence layer when the store
// cannot be reached. It aborts the whole file.
var ErrPersistenceUnavailable = errors.New("persistence unavailable")

// IsFatal reports whether err must abort the file instead of failing one row.
func IsFatal(err error) bool {
	var fe *FileError
	return errors.As(err, &fe) || errors.Is(err, ErrPersistenceUnavailable)
}
