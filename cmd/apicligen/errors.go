package main

import (
	"errors"
	"fmt"
)

// commandError attaches the user-facing prefix of a failed command.
type commandError struct {
	prefix string
	err    error
}

func (e *commandError) Error() string {
	return fmt.Sprintf("%s: %v", e.prefix, e.err)
}

func (e *commandError) Unwrap() error {
	return e.err
}

func withPrefix(prefix string, err error) error {
	if err == nil {
		return nil
	}
	return &commandError{prefix: prefix, err: err}
}

// errorMessage renders err for the error stream.
func errorMessage(err error) string {
	var cerr *commandError
	if errors.As(err, &cerr) {
		return cerr.Error()
	}
	return "Error: " + err.Error()
}
