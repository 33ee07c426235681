package model

import "time"

// DeviceInfo is the structured view of a raw user-agent string.
// It is recomputed on every contact since the UA may change.
type DeviceInfo struct {
	DeviceType string `gorm:"size:32" json:"deviceType"`
	OS         string `gorm:"size:32" json:"os"`
	OSVersion  string `gorm:"size:32" json:"osVersion"`
	Browser    string `gorm:"size:32" json:"browser"`
	Icon       string `gorm:"size:8" json:"icon"`
}

// Location is the geo enrichment for a subscription. Resolved is false
// until a lookup has actually been attempted for the current IP.
type Location struct {
	Country     string `gorm:"size:64" json:"country"`
	CountryCode string `gorm:"size:4" json:"countryCode"`
	City        string `gorm:"size:64" json:"city"`
	Resolved    bool   `json:"-"`
}

// UnknownLocation is the sentinel returned when a geo lookup fails.
func UnknownLocation() Location {
	return Location{Country: "Desconocido", CountryCode: "??", City: "", Resolved: true}
}

// Subscription holds a registered push endpoint plus its derived
// device and geo metadata.
type Subscription struct {
	Endpoint string `gorm:"primaryKey" json:"endpoint"`
	DeviceID string `gorm:"uniqueIndex;size:32;not null" json:"id"`
	P256DH   string `gorm:"column:p256dh;not null" json:"-"`
	Auth     string `gorm:"not null" json:"-"`

	UserAgent string     `gorm:"size:512" json:"userAgent"`
	Device    DeviceInfo `gorm:"embedded;embeddedPrefix:device_" json:"device"`
	IP        string     `gorm:"size:64" json:"ip"`
	Location  Location   `gorm:"embedded;embeddedPrefix:location_" json:"location"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	LastSeen  time.Time `gorm:"not null;index" json:"lastSeen"`
}
