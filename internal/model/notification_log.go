package model

import "time"

// NotificationLog is the audit record for one dispatched notification batch.
type NotificationLog struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Title     string    `gorm:"size:256;not null" json:"title"`
	Target    string    `gorm:"size:128;not null" json:"target"`
	Sent      int       `gorm:"not null" json:"sent"`
	Failed    int       `gorm:"not null" json:"failed"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}
