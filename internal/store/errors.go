package store

import "errors"

var (
	// ErrUserExists is returned when registering a username that is already taken.
	ErrUserExists = errors.New("username already exists")

	// ErrPostNotFound is returned when no post file exists for an id.
	ErrPostNotFound = errors.New("post not found")

	// ErrVersionConflict is returned when a post changed after the caller read it.
	ErrVersionConflict = errors.New("post was modified since it was loaded")

	// ErrInvalidID is returned for ids that cannot be used as file names.
	ErrInvalidID = errors.New("invalid post id")

	// ErrMalformedPost is returned when a file in the posts directory is not a post.
	ErrMalformedPost = errors.New("malformed post file")
)
