package models

import "time"

// NotificationType is the closed set of notification kinds.
type NotificationType string

const (
	NotificationFollowed        NotificationType = "followed"
	NotificationFollowRequested NotificationType = "follow_requested"
	NotificationFollowAccepted  NotificationType = "follow_accepted"
	NotificationMentioned       NotificationType = "mentioned"
	NotificationRenoted         NotificationType = "renoted"
	NotificationReacted         NotificationType = "reacted"
)

// Notification represents an event delivered to one recipient (PostgreSQL).
// SourceID is the object acted upon (e.g. the mentioned-in note),
// ActivityID the object the action produced (e.g. the renote itself).
// Read state is monotonic: ReadAt is set at most once and never cleared.
type Notification struct {
	ID          int64            `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	RecipientID int64            `json:"recipient_id,string" gorm:"index"`
	Type        NotificationType `json:"type" gorm:"size:30;index"`
	ActorID     int64            `json:"actor_id,string" gorm:"index"`
	SourceID    int64            `json:"source_id,string,omitempty"`
	ActivityID  int64            `json:"activity_id,string,omitempty"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
}

// PageID implements pagination.Item.
func (n *Notification) PageID() int64 { return n.ID }

// PageCreatedAt implements pagination.Item.
func (n *Notification) PageCreatedAt() time.Time { return n.CreatedAt }
