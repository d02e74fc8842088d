package model

import "errors"

// ErrNotFound is returned by stores when no document exists for the
// requested key. Callers substitute a fallback value instead of
// propagating it to the surface.
var ErrNotFound = errors.New("not found")
