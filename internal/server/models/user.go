// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a reviewer account. Email is the login identifier.
type User struct {
	ID           string
	Email        string
	UserName     string
	PasswordHash string
	IsSuperuser  bool
	IsActive     bool
	FullName     string
	PhoneNumber  string
	JobTitle     string
	CreatedAt    time.Time
}

// Profile holds the user-editable fields of a User. Nil fields are left
// unchanged on update.
type Profile struct {
	UserName    *string
	FullName    *string
	PhoneNumber *string
	JobTitle    *string
}
