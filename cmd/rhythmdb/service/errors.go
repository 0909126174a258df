package service

import "errors"

// Sentinel errors the handler layer maps to HTTP status codes. Services
// wrap them with context via fmt.Errorf and %w.
var (
	// ErrNotFound means the requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied means the caller is not on the admin allow-list
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidAliasType means the alias type is not a storable one
	ErrInvalidAliasType = errors.New("invalid alias type")

	// ErrInvalidArgument means the request parameters are unacceptable
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict means the record already exists
	ErrConflict = errors.New("already exists")
)
