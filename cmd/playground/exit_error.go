package main

import "fmt"

const (
	exitFault             = 1
	exitDependencyMissing = 2
)

// exitError signals a non-zero exit code without calling os.Exit in RunE
// handlers. A nil Err means the output has already been printed.
type exitError struct {
	Code int
	Err  error
}

func (e *exitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *exitError) Unwrap() error {
	return e.Err
}
