package models

import "time"

// Canvas is a shared drawing surface. It is never mutated after creation;
// the only destructive action is deleting its operations on clear.
type Canvas struct {
	ID           string
	Name         string
	IsPrivate    bool
	PasswordHash []byte // nil for public canvases
	CreatedBy    string
	CreatedAt    time.Time
}
