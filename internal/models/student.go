package models

import "time"

// Student is a learner in the roster. Reference data: this service only
// reads it, registry maintenance happens elsewhere.
type Student struct {
	ID        string    `db:"id" json:"id"`
	TagID     string    `db:"tag_id" json:"tag_id"`
	NIS       string    `db:"nis" json:"nis"`
	FullName  string    `db:"full_name" json:"full_name"`
	ClassID   string    `db:"class_id" json:"class_id"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail joins the student with its class display name.
type StudentDetail struct {
	Student
	ClassName string `db:"class_name" json:"class_name"`
}
