package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("login required")
	ErrNotFound     = errors.New("not found")
	ErrView         = errors.New("view unavailable")
	ErrRender       = errors.New("render failed")
)

// Kind ties a sentinel error to the handler operation that produced it.
type Kind struct {
	Op   string
	Kind error
	Err  error
}

func (k *Kind) Error() string {
	if k.Err == nil {
		return fmt.Sprintf("%s: %v", k.Op, k.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", k.Op, k.Kind, k.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (k *Kind) Unwrap() []error {
	if k.Err == nil {
		return []error{k.Kind}
	}
	return []error{k.Kind, k.Err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Kind{Op: op, Kind: kind}
}

// WrapKind returns an error of kind raised by op because of err.
func WrapKind(op string, kind, err error) error {
	return &Kind{Op: op, Kind: kind, Err: err}
}
