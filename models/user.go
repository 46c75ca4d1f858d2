// Package models holds the record types of the questions store. Each type
// maps 1-to-1 onto a table; relations are plain id fields and are resolved
// on demand by the repo package, never embedded.
package models

import "github.com/Skryldev/questionsdb/db"

// User represents a row in the "users" table.
type User struct {
	ID    int64  `json:"id"`
	Fname string `json:"fname"`
	Lname string `json:"lname"`
}

// UserFromRecord builds a User from a field-keyed row. Missing columns are
// left at their zero value.
func UserFromRecord(r db.Record) User {
	return User{
		ID:    r.Int64("id"),
		Fname: r.String("fname"),
		Lname: r.String("lname"),
	}
}

// Persisted reports whether the user has been saved.
func (u User) Persisted() bool { return u.ID != 0 }
