package storage

import "errors"

// ErrUnsupportedDatabase is returned for database URLs whose scheme has no backend.
var ErrUnsupportedDatabase = errors.New("unsupported database URL")
