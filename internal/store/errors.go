package store

import "errors"

// ErrRunNotFound is returned when a run id does not exist. The HTTP layer
// maps it to 404.
var ErrRunNotFound = errors.New("run not found")
