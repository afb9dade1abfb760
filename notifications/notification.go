package notifications

import "time"

// Kind is the severity of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindSuccess, KindError, KindWarning, KindInfo:
		return true
	}
	return false
}

// Notification is a user facing message. A zero Duration means it stays until dismissed.
type Notification struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}

// PublishOption modifies a single Publish call.
type PublishOption func(*publishSettings)

type publishSettings struct {
	duration    time.Duration
	hasDuration bool
}

// WithDuration overrides the kind's default display duration. Zero disables auto-dismiss.
func WithDuration(d time.Duration) PublishOption {
	return func(s *publishSettings) {
		s.duration = d
		s.hasDuration = true
	}
}
