package client

import "errors"

var (
	ErrUnavailable     = errors.New("identity store unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrNoSession       = errors.New("no session")
)
