package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a file-level failure.
type ErrorKind string

const (
	IOError       ErrorKind = "io"
	ParseError    ErrorKind = "parse"
	EncodingError ErrorKind = "encoding"
)

// FileError records why a file could not be checked. It never aborts a run.
type FileError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Pos     *Position `json:"pos,omitempty"`
	Err     error     `json:"-"`
}

func (e *FileError) Error() string {
	msg := fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	if e.Pos != nil {
		msg = fmt.Sprintf("%s error at %s: %s", e.Kind, e.Pos, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NewFileError wraps err as a file-level failure of the given kind.
func NewFileError(kind ErrorKind, msg string, err error) *FileError {
	return &FileError{Kind: kind, Message: msg, Err: err}
}

// IsKind reports whether err is a FileError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *FileError
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}
