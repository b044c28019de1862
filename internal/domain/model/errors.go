package model

import "errors"

// ErrMissingColumn is returned when a required column is absent from a table.
var ErrMissingColumn = errors.New("missing column")
