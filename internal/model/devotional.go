package model

import "time"

// Devotional is the per-day audio devotional metadata. The admin panel
// that writes these is outside this service; the scheduler and the
// public read endpoint only consume them.
type Devotional struct {
	ID        int64     `gorm:"primaryKey" json:"-"`
	Date      string    `gorm:"uniqueIndex;size:10;not null" json:"date"` // YYYY-MM-DD
	Title     string    `gorm:"size:256" json:"title"`
	Verse     string    `gorm:"size:512" json:"verse"`
	AudioPath string    `gorm:"size:512" json:"audioPath"`
	CreatedAt time.Time `json:"createdAt"`
}
