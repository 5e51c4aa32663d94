// Package apperr defines the error kinds of the submission pipeline.
// Callers classify failures with errors.Is; messages are stringified
// only at the web and MCP boundaries.
package apperr

import "errors"

var (
	// ErrValidation marks bad submission input (date shape, image type,
	// missing required fields).
	ErrValidation = errors.New("invalid submission")
	// ErrFetch marks a failed remote avatar fetch (unreachable URL,
	// missing or non-PNG content type).
	ErrFetch = errors.New("avatar fetch failed")
	// ErrStore marks any posts-table failure.
	ErrStore = errors.New("store failure")
	// ErrMedia marks any media file write failure.
	ErrMedia = errors.New("media write failed")
)
