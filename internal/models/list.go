package models

import "time"

// ListPublicity controls who may read a list timeline.
type ListPublicity string

const (
	ListPublic  ListPublicity = "public"
	ListPrivate ListPublicity = "private"
)

// MaxListMembers is the membership cap enforced on append.
const MaxListMembers = 250

// List is an owner-curated, bounded set of accounts (PostgreSQL).
// Ownership is immutable after creation.
type List struct {
	ID        int64         `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	OwnerID   int64         `json:"owner_id,string" gorm:"index"`
	Title     string        `json:"title" gorm:"size:100"`
	Publicity ListPublicity `json:"publicity" gorm:"size:10;default:private"`
	CreatedAt time.Time     `json:"created_at"`
}

// ListMember is a single membership row (PostgreSQL). The unique index
// makes duplicate appends a constraint violation rather than silent
// corruption.
type ListMember struct {
	ListID    int64     `json:"list_id,string" gorm:"primaryKey;autoIncrement:false;uniqueIndex:idx_list_account"`
	AccountID int64     `json:"account_id,string" gorm:"primaryKey;autoIncrement:false;uniqueIndex:idx_list_account"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateListRequest defines the request body for creating a list.
type CreateListRequest struct {
	Title     string `json:"title" validate:"required,min=1,max=100"`
	Publicity string `json:"publicity" validate:"omitempty,oneof=public private"`
}

// UpdateListRequest defines the request body for editing a list.
type UpdateListRequest struct {
	Title     string `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Publicity string `json:"publicity,omitempty" validate:"omitempty,oneof=public private"`
}
