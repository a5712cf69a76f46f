// internal/domain/models/user.go
package models

import "time"

// User is an account on the platform. Parents carry the IDs of the
// students they follow in ChildIDs.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	FullName     string    `bson:"full_name" json:"full_name"`
	FullNameCI   string    `bson:"full_name_ci" json:"-"`
	Email        string    `bson:"email" json:"email"`
	EmailCI      string    `bson:"email_ci" json:"-"`
	PasswordHash string    `bson:"password_hash,omitempty" json:"-"`
	Role         string    `bson:"role" json:"role"`
	Status       string    `bson:"status" json:"status"`
	Locale       string    `bson:"locale,omitempty" json:"locale,omitempty"`
	ChildIDs     []string  `bson:"child_ids,omitempty" json:"child_ids,omitempty"`
	Points       int64     `bson:"points" json:"points"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// Account is what a successful sign-in yields: the user plus the bearer
// token the remote backend issued (empty for the local backend).
type Account struct {
	User  User   `json:"user"`
	Token string `json:"token,omitempty"`
}
