package models

import "time"

// Account is the slim profile this service reads; the full account
// aggregate (credentials, settings) lives in the account service.
type Account struct {
	ID          int64     `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	Username    string    `json:"username" gorm:"size:64;uniqueIndex"`
	DisplayName string    `json:"display_name" gorm:"size:128"`
	Locked      bool      `json:"locked" gorm:"default:false"` // locked accounts gate follows behind requests
	CreatedAt   time.Time `json:"created_at"`
}
