package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrRateLimited     = errors.New("rate limited")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidSource   = errors.New("invalid source")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNoProvider      = errors.New("no provider for source")
)
