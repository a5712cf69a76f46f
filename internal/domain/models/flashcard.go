// internal/domain/models/flashcard.go
package models

import "time"

// Flashcard is a two-sided study card in a named deck.
type Flashcard struct {
	ID        string    `bson:"_id" json:"id"`
	OwnerID   string    `bson:"owner_id" json:"owner_id"`
	Deck      string    `bson:"deck" json:"deck"`
	Front     string    `bson:"front" json:"front"`
	Back      string    `bson:"back" json:"back"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
