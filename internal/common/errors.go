package common

import "errors"

var (
	// ErrUnauthorized means no valid session where one is required, or bad credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means a valid session that does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means the referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the username is already taken.
	ErrConflict = errors.New("already exists")
	// ErrInvalid means caller input failed validation.
	ErrInvalid = errors.New("invalid input")

	// ErrInvalidColumn is returned when a column outside the allow-list reaches
	// the query builder. Not reachable from user input.
	ErrInvalidColumn = errors.New("invalid column")
)
