package entity

import (
	"time"

	"gorm.io/datatypes"
)

// PushSubscriptionKeys are the browser-generated encryption keys of a subscription.
type PushSubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

type PushSubscription struct {
	ID        string                                   `gorm:"column:id;type:varchar(36);primaryKey"`
	Endpoint  string                                   `gorm:"column:endpoint;type:varchar(512);not null;uniqueIndex"`
	Keys      datatypes.JSONType[PushSubscriptionKeys] `gorm:"column:subscription_keys"`
	CreatedAt time.Time                                `gorm:"column:created_at;autoCreateTime"`
}

func (PushSubscription) TableName() string {
	return "push_subscription"
}
