// Package common defines shared constants and sentinel errors used across the
// Inkwell client layers. Callers should use errors.Is to match these values.
package common

import "errors"

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("not found")
