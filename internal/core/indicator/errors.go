package indicator

import "errors"

var (
	// Registry errors

	ErrDuplicateRegistration = errors.New("entity already registered")
	ErrPoolExhausted         = errors.New("no free indicator widget")
	ErrNilTarget             = errors.New("target is nil")
	ErrEmptyPool             = errors.New("indicator pool is empty")
	ErrInvalidSizeBounds     = errors.New("min size exceeds max size")

	// Projection errors

	ErrMissingCollaborator = errors.New("camera or reference height unavailable")

	// Event errors

	ErrUnexpectedPayload = errors.New("unexpected event payload")
)
