package repositories

import "errors"

// ErrNotFound is returned when a referenced document does not exist
var ErrNotFound = errors.New("document not found")
