package notifications

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-backoffice-core/internal/broadcast"
	"github.com/rs/zerolog/log"
)

const DefaultDuration = 5 * time.Second

// Timer is a cancellable unit of deferred work. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn after d.
type AfterFunc func(d time.Duration, fn func()) Timer

func timeAfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Bus holds the ordered list of active notifications.
type Bus struct {
	active          *broadcast.Subject[[]Notification]
	defaultDuration time.Duration
	afterFunc       AfterFunc
	nowTime         func() time.Time
	loginPath       string

	mu     sync.Mutex
	timers map[string]Timer
	closed bool
}

// BusOption modifies a Bus at construction.
type BusOption func(*Bus)

// WithDefaultDuration sets the display duration for non-error kinds.
func WithDefaultDuration(d time.Duration) BusOption {
	return func(b *Bus) {
		b.defaultDuration = d
	}
}

// WithAfterFunc replaces time.AfterFunc, mainly for tests.
func WithAfterFunc(afterFunc AfterFunc) BusOption {
	return func(b *Bus) {
		b.afterFunc = afterFunc
	}
}

func WithNowTime(nowTime func() time.Time) BusOption {
	return func(b *Bus) {
		b.nowTime = nowTime
	}
}

// WithLoginPath sets the login endpoint whose failures are not reported.
func WithLoginPath(path string) BusOption {
	return func(b *Bus) {
		b.loginPath = path
	}
}

func NewBus(options ...BusOption) *Bus {
	b := &Bus{
		active:          broadcast.New([]Notification{}),
		defaultDuration: DefaultDuration,
		afterFunc:       timeAfterFunc,
		nowTime:         time.Now,
		loginPath:       "/auth/login",
		timers:          make(map[string]Timer),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// Publish appends a notification and returns its id. Errors stay until
// dismissed unless WithDuration says otherwise; other kinds use the bus default.
func (b *Bus) Publish(kind Kind, title, message string, options ...PublishOption) string {
	settings := publishSettings{duration: b.defaultDuration}
	if kind == KindError {
		settings.duration = 0
	}
	for _, opt := range options {
		opt(&settings)
	}
	if settings.duration < 0 {
		settings.duration = 0
	}

	n := Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		Duration:  settings.duration,
		CreatedAt: b.nowTime(),
	}
	b.active.Update(func(current []Notification) []Notification {
		next := make([]Notification, 0, len(current)+1)
		next = append(next, current...)
		return append(next, n)
	})
	log.Debug().Str("id", n.ID).Str("kind", string(kind)).Str("title", title).Dur("duration", n.Duration).Msg("notification published")

	if n.Duration > 0 {
		b.schedule(n.ID, n.Duration)
	}
	return n.ID
}

func (b *Bus) Success(title, message string, options ...PublishOption) string {
	return b.Publish(KindSuccess, title, message, options...)
}

// Error publishes an error notification. It does not auto-dismiss by default.
func (b *Bus) Error(title, message string, options ...PublishOption) string {
	return b.Publish(KindError, title, message, options...)
}

func (b *Bus) Warning(title, message string, options ...PublishOption) string {
	return b.Publish(KindWarning, title, message, options...)
}

func (b *Bus) Info(title, message string, options ...PublishOption) string {
	return b.Publish(KindInfo, title, message, options...)
}

func (b *Bus) schedule(id string, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.timers[id] = b.afterFunc(d, func() {
		b.mu.Lock()
		delete(b.timers, id)
		b.mu.Unlock()
		b.remove(id)
	})
}

// Dismiss removes a notification and cancels its pending auto-dismiss.
// Unknown ids are ignored.
func (b *Bus) Dismiss(id string) {
	b.mu.Lock()
	if timer, ok := b.timers[id]; ok {
		timer.Stop()
		delete(b.timers, id)
	}
	b.mu.Unlock()
	b.remove(id)
}

// DismissAll removes every notification and cancels all pending timers.
func (b *Bus) DismissAll() {
	b.stopTimers()
	if len(b.active.Get()) == 0 {
		return
	}
	b.active.Set([]Notification{})
}

func (b *Bus) remove(id string) {
	if !b.contains(id) {
		return
	}
	b.active.Update(func(current []Notification) []Notification {
		next := make([]Notification, 0, len(current))
		for _, n := range current {
			if n.ID != id {
				next = append(next, n)
			}
		}
		return next
	})
}

func (b *Bus) contains(id string) bool {
	for _, n := range b.active.Get() {
		if n.ID == id {
			return true
		}
	}
	return false
}

// Active returns the current notifications in display order.
func (b *Bus) Active() []Notification {
	return append([]Notification(nil), b.active.Get()...)
}

// Subscribe calls fn with the active notifications now and after every change.
// Each call receives its own slice.
func (b *Bus) Subscribe(fn func([]Notification)) (unsubscribe func()) {
	return b.active.Subscribe(func(current []Notification) {
		fn(append([]Notification(nil), current...))
	})
}

// Close cancels pending auto-dismiss timers. Notifications published after
// Close stay until dismissed.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.stopTimers()
}

func (b *Bus) stopTimers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, timer := range b.timers {
		timer.Stop()
		delete(b.timers, id)
	}
}

func (b *Bus) isLoginPath(path string) bool {
	if b.loginPath == "" {
		return false
	}
	path = strings.TrimRight(strings.SplitN(path, "?", 2)[0], "/")
	return strings.HasSuffix(path, strings.TrimRight(b.loginPath, "/"))
}
