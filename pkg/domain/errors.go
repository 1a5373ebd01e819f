package domain

import "errors"

// ErrStateNotFound is returned when a project has no persisted workflow state.
var ErrStateNotFound = errors.New("workflow state not found")

// ErrIntentNotFound is returned when a project has no persisted intent record.
var ErrIntentNotFound = errors.New("workflow intent not found")
