package prompts

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingContextKey is returned when a template reads a key the
	// context does not carry.
	ErrMissingContextKey = errors.New("missing context key")
	// ErrUnknownOperation is returned when neither the resolved nor the
	// default template set implements an operation.
	ErrUnknownOperation = errors.New("unknown prompt operation")
	// ErrIncompleteTemplateSet is returned by completeness checks.
	ErrIncompleteTemplateSet = errors.New("incomplete template set")
	// ErrInvalidTemplateSet is returned when a template set cannot be built
	// or registered.
	ErrInvalidTemplateSet = errors.New("invalid template set")
	// ErrEmptyRender is returned when a prompt function produces no messages.
	ErrEmptyRender = errors.New("prompt rendered no messages")
)

// MissingKeyError identifies the context key a render could not find.
type MissingKeyError struct {
	Key         string
	Operation   Operation
	TemplateSet string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("template set %q operation %q: %s %q", e.TemplateSet, e.Operation, ErrMissingContextKey, e.Key)
}

func (e *MissingKeyError) Unwrap() error { return ErrMissingContextKey }

// UnknownOperationError identifies an operation that no template set serves.
type UnknownOperationError struct {
	Family      Family
	Operation   Operation
	TemplateSet string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("%s: %s %q (template set %q)", e.Family, ErrUnknownOperation, e.Operation, e.TemplateSet)
}

func (e *UnknownOperationError) Unwrap() error { return ErrUnknownOperation }
