package models

import (
	"time"
)

// Visibility governs who may see a note.
type Visibility string

const (
	// VisibilityPublic notes are visible to anyone and appear on the
	// public timeline.
	VisibilityPublic Visibility = "public"
	// VisibilityHome notes are visible to anyone but only surface on home
	// and list timelines, never the public one.
	VisibilityHome Visibility = "home"
	// VisibilityFollowers notes are visible only to followers of the author.
	VisibilityFollowers Visibility = "followers"
	// VisibilityDirect notes are visible only to the author and the single
	// addressed recipient.
	VisibilityDirect Visibility = "direct"
)

// Valid reports whether v is one of the four visibility classes.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityHome, VisibilityFollowers, VisibilityDirect:
		return true
	}
	return false
}

// MaxAttachments is the per-note attachment cap.
const MaxAttachments = 16

// Note represents a note document stored in MongoDB. Notes are immutable
// after creation except for soft deletion.
type Note struct {
	ID            int64      `json:"id,string" bson:"_id"`
	AuthorID      int64      `json:"author_id,string" bson:"author_id"`
	Content       string     `json:"content" bson:"content"`
	Visibility    Visibility `json:"visibility" bson:"visibility"`
	RecipientID   int64      `json:"recipient_id,string,omitempty" bson:"recipient_id,omitempty"` // set iff visibility is direct
	RenoteOfID    int64      `json:"renote_of_id,string,omitempty" bson:"renote_of_id,omitempty"`
	AttachmentIDs []int64    `json:"attachment_ids,omitempty" bson:"attachment_ids,omitempty"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	DeletedAt     *time.Time `json:"-" bson:"deleted_at,omitempty"`
}

// PageID implements pagination.Item.
func (n *Note) PageID() int64 { return n.ID }

// PageCreatedAt implements pagination.Item.
func (n *Note) PageCreatedAt() time.Time { return n.CreatedAt }

// Attachment is media metadata referenced by a note. The binary itself
// lives behind the media pipeline; this service only reads the flags.
type Attachment struct {
	ID          int64  `json:"id,string" bson:"_id"`
	NoteID      int64  `json:"note_id,string" bson:"note_id"`
	URL         string `json:"url" bson:"url"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Sensitive   bool   `json:"sensitive" bson:"sensitive"`
}

// CreateNoteRequest defines the request body for creating a note.
type CreateNoteRequest struct {
	Content       string  `json:"content" validate:"required,min=1,max=3000"`
	Visibility    string  `json:"visibility" validate:"required,oneof=public home followers direct"`
	RecipientID   int64   `json:"recipient_id,string,omitempty"`
	AttachmentIDs []int64 `json:"attachment_ids,omitempty" validate:"omitempty,max=16"`
	MentionIDs    []int64 `json:"mention_ids,omitempty"`
}
