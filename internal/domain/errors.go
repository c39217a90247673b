package domain

import "errors"

var (
	ErrSessionNotFound   = errors.New("screen session not found")
	ErrRoleNotFound      = errors.New("role filter option not found")
	ErrDirectoryDisabled = errors.New("user directory is disabled")
	ErrInvalidRoster     = errors.New("invalid roster")
)
