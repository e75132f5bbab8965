package models

import "time"

// DeviceInfo captures what we know about the device a push token belongs to.
type DeviceInfo struct {
	UserAgent   string    `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Platform    string    `bson:"platform,omitempty" json:"platform,omitempty"`
	InstalledAt time.Time `bson:"installed_at,omitempty" json:"installed_at,omitempty"`
}

// NotificationToken is one device's push registration. Its document ID is
// derived deterministically from the token string, so re-registering the
// same token is always an upsert.
type NotificationToken struct {
	ID           string     `bson:"_id" json:"id"`
	Token        string     `bson:"token" json:"token"`
	UserID       string     `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Device       DeviceInfo `bson:"device" json:"device"`
	LastActiveAt time.Time  `bson:"last_active_at" json:"last_active_at"`
	IsValid      bool       `bson:"is_valid" json:"is_valid"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updated_at"`
}

// InstallMetricsID is the fixed document ID of the metrics singleton.
const InstallMetricsID = "install_metrics"

// InstallMetrics is a denormalized counter document kept in step with
// token creation and invalidation. It caches token state; the token
// collection stays authoritative.
type InstallMetrics struct {
	ID              string           `bson:"_id" json:"-"`
	TotalInstalls   int64            `bson:"total_installs" json:"total_installs"`
	ActiveInstalls  int64            `bson:"active_installs" json:"active_installs"`
	LastUpdated     time.Time        `bson:"last_updated" json:"last_updated"`
	MonthlyInstalls map[string]int64 `bson:"monthly_installs,omitempty" json:"monthly_installs,omitempty"`
}
