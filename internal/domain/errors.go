// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a registration collision (duplicate agent or task id).
var ErrConflict = errors.New("conflict: id already registered")

// ErrDisabled indicates the task exists but is disabled.
var ErrDisabled = errors.New("task disabled")
