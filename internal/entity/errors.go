package entity

import "errors"

// Domain errors
var (
	// Chat errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrGenerationFailed = errors.New("generation failed")

	// Validation errors
	ErrEmptyMessage     = errors.New("message must not be empty")
	ErrUnsupportedModel = errors.New("unsupported model id")
	ErrInvalidParameter = errors.New("invalid parameter")
)
