package domain

import "errors"

var (
	ErrNotFound     = errors.New("project not found")
	ErrInvalidID    = errors.New("invalid project id")
	ErrInvalidQuery = errors.New("invalid query")
	ErrCacheMiss    = errors.New("snapshot not cached")

	ErrInvalidProject = errors.New("invalid project")
	ErrAlreadyExists  = errors.New("project already exists")
)
