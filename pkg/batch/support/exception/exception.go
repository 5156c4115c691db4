// Package exception provides the custom error type used throughout the order
// batch application. Every failure raised by a batch component is wrapped in a
// BatchError carrying the module that produced it, so the orchestration layer
// can report where a run broke without inspecting error strings.
package exception

import (
	"fmt"
)

// Module names used across the application. The step components map onto the
// pipeline error taxonomy: a "reader" error is a source failure, a "writer"
// error is a sink failure, a "tasklet" error is a pre-check failure and a
// "scheduler" error is one swallowed at the trigger boundary.
const (
	ModuleReader     = "reader"
	ModuleProcessor  = "processor"
	ModuleWriter     = "writer"
	ModuleTasklet    = "tasklet"
	ModuleStep       = "step"
	ModuleJob        = "job"
	ModuleLauncher   = "launcher"
	ModuleScheduler  = "scheduler"
	ModuleRepository = "repository"
	ModuleConfig     = "config"
)

// BatchError is the error type raised by batch components. It holds the module
// where the error occurred, a concise message and the wrapped original error.
type BatchError struct {
	// Module indicates the component where the error occurred (e.g. "reader").
	Module string
	// Message is a concise description of the failure.
	Message string
	// Err is the wrapped original error, possibly nil.
	Err error
}

// NewBatchError creates a new BatchError wrapping originalErr.
func NewBatchError(module, message string, originalErr error) *BatchError {
	return &BatchError{
		Module:  module,
		Message: message,
		Err:     originalErr,
	}
}

// NewBatchErrorf creates a new BatchError with a formatted message and no
// wrapped cause.
func NewBatchErrorf(module, format string, a ...interface{}) *BatchError {
	return &BatchError{
		Module:  module,
		Message: fmt.Sprintf(format, a...),
	}
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Is / errors.As.
func (e *BatchError) Unwrap() error {
	return e.Err
}

// IsBatchError reports whether err is a *BatchError.
func IsBatchError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*BatchError)
	return ok
}

// ModuleOf returns the module of a BatchError, or "" for any other error.
func ModuleOf(err error) string {
	if be, ok := err.(*BatchError); ok {
		return be.Module
	}
	return ""
}

// ExtractErrorMessage extracts a display message from an error. For a
// BatchError it returns the cleaner Message field; otherwise the standard
// Error() string.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if be, ok := err.(*BatchError); ok {
		return be.Message
	}
	return err.Error()
}
