package model

import "time"

// Note is the single free-form notepad each user owns.
// There is at most one Note per UserID; saving again overwrites Content.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
