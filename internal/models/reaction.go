package models

import "time"

// Reaction is an emoji reaction to a note (PostgreSQL). One reaction per
// account per note.
type Reaction struct {
	ID        int64     `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	NoteID    int64     `json:"note_id,string" gorm:"index;uniqueIndex:idx_note_account"`
	AccountID int64     `json:"account_id,string" gorm:"index;uniqueIndex:idx_note_account"`
	Emoji     string    `json:"emoji" gorm:"size:64"`
	CreatedAt time.Time `json:"created_at"`
}

// ReactRequest defines the request body for reacting to a note.
type ReactRequest struct {
	Emoji string `json:"emoji" validate:"required,min=1,max=64"`
}
