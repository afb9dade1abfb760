package config

import "time"

type NotificationConfig interface {
	GetDefaultNotificationDuration() time.Duration
}

type Notification struct{}

var _ NotificationConfig = Notification{}

func (Notification) GetDefaultNotificationDuration() time.Duration {
	return GetEnvDuration("NOTIFICATION_DURATION", 5*time.Second)
}
