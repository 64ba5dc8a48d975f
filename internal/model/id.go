package model

import "github.com/google/uuid"

// NewID returns a fresh record identifier.
func NewID() string { return uuid.NewString() }
