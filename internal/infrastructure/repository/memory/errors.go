package memory

import "errors"

var (
	ErrDuplicateKey = errors.New("memory: duplicate key")
	ErrRowNotFound  = errors.New("memory: row not found")
)
