package core

import (
	"errors"
	"fmt"
)

// ErrValidation is the parent of every input-boundary error. Callers test
// with errors.Is(err, ErrValidation).
var ErrValidation = errors.New("validation failed")

var (
	ErrInvalidAmount      = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidFrequency   = fmt.Errorf("%w: invalid frequency", ErrValidation)
	ErrInvalidCategory    = fmt.Errorf("%w: invalid category", ErrValidation)
	ErrInvalidStatus      = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrEmptyName          = fmt.Errorf("%w: empty name", ErrValidation)
	ErrNameTooLong        = fmt.Errorf("%w: name too long (max 100 characters)", ErrValidation)
	ErrDescriptionTooLong = fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	ErrMissingUser        = fmt.Errorf("%w: missing user id", ErrValidation)
	ErrMissingID          = fmt.Errorf("%w: missing record id", ErrValidation)
	ErrEmptyGuide         = fmt.Errorf("%w: empty guide id", ErrValidation)
	ErrEmptyInteraction   = fmt.Errorf("%w: empty interaction type", ErrValidation)
	ErrEmptyFeature       = fmt.Errorf("%w: empty feature", ErrValidation)
	ErrEmptyTransaction   = fmt.Errorf("%w: empty transaction reference", ErrValidation)
	ErrInvalidRange       = fmt.Errorf("%w: range start after end", ErrValidation)
	ErrInvalidFID         = fmt.Errorf("%w: invalid fid", ErrValidation)
)

var (
	// ErrNotFound covers both absent records and records owned by another user.
	ErrNotFound = errors.New("record not found")

	// ErrUnconfigured is returned by third-party integrations that have no credentials.
	ErrUnconfigured = errors.New("service not configured")

	ErrUnauthorized = errors.New("unauthorized")
)
