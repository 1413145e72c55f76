package model

import "time"

// AlertSubscription holds a browser push subscription for market alerts.
type AlertSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Cities []SubscriptionCity `gorm:"foreignKey:Endpoint;constraint:OnDelete:CASCADE"`
}

// SubscriptionCity maps a subscription to one city it watches.
type SubscriptionCity struct {
	Endpoint string `gorm:"primaryKey"`
	City     string `gorm:"primaryKey;size:128"`
}
