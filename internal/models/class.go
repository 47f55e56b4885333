package models

import "time"

// Class is a classroom. Reference data, read-only here.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
