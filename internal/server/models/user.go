// Package models holds the server-side persistence structs.
package models

import "time"

type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	ProfilePic   string
	CreatedAt    time.Time
}
