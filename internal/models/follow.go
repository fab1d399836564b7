package models

import (
	"time"

	"gorm.io/gorm"
)

// FollowEdge represents a directed follow relationship (PostgreSQL).
// Edges are soft-deleted so an unfollow leaves an audit trail.
type FollowEdge struct {
	ID          int64          `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	FollowerID  int64          `json:"follower_id,string" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID int64          `json:"following_id,string" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// FollowRequest is a pending follow toward a locked account (PostgreSQL).
// Accepting one creates the FollowEdge and removes the request.
type FollowRequest struct {
	ID          int64     `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	RequesterID int64     `json:"requester_id,string" gorm:"index;uniqueIndex:idx_requester_target"`
	TargetID    int64     `json:"target_id,string" gorm:"index;uniqueIndex:idx_requester_target"`
	CreatedAt   time.Time `json:"created_at"`
}
