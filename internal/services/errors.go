// Package services holds the two engines of the site (voting and the
// paginated feed) plus the post/mail plumbing around them. Sentinel
// errors below let handlers pick an HTTP status without string matching.
package services

import "errors"

// ErrPostNotFound is returned when an operation references a post id
// that does not exist. Handlers should translate this into a 404.
var ErrPostNotFound = errors.New("post not found")

// ErrBadCursor is returned when a feed cursor is present but is not a
// millisecond timestamp. Handlers should translate this into a 400.
var ErrBadCursor = errors.New("invalid cursor")

// ErrNotAuthorized is returned when the actor does not own the record
// being mutated. Handlers should translate this into a 403.
var ErrNotAuthorized = errors.New("not authorized")
