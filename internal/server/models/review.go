package models

import "time"

type Review struct {
	ID           string
	AuthorID     string
	BusinessID   string
	TagSelection []int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
