package storage

import (
	"errors"
)

var (
	// ErrNotFound is returned by the storage layer when a key is absent. The
	// badger specific badger.ErrKeyNotFound never leaves storage/badger.
	ErrNotFound = errors.New("key not found")

	ErrAlreadyExists = errors.New("key already exists")
)
