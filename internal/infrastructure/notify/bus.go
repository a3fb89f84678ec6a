// Package notify carries user-facing toasts from the request pipeline and
// services to whatever displays them.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/catalog-console/internal/api/metrics"
	"github.com/99minutos/catalog-console/internal/core/domain"
)

// Handler receives published notifications.
type Handler func(domain.Notification)

type subscriber struct {
	id uint64
	fn Handler
}

// Bus is a process-wide publish/subscribe channel for notifications.
// Handlers run synchronously on the publisher's goroutine in subscription order.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	subs     []subscriber
	duration time.Duration
}

// NewBus returns an empty Bus. Notifications published without a duration get
// defaultDuration, or domain.DefaultToastDuration when that is not positive.
func NewBus(defaultDuration time.Duration) *Bus {
	if defaultDuration <= 0 {
		defaultDuration = domain.DefaultToastDuration
	}
	return &Bus{duration: defaultDuration}
}

// Publish fills in the ID, severity and duration defaults and fans n out to
// every subscriber. With no subscribers it does nothing.
func (b *Bus) Publish(n domain.Notification) domain.Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Severity == "" {
		n.Severity = domain.SeverityInfo
	}
	if n.Duration <= 0 {
		n.Duration = b.duration
	}

	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	metrics.NotificationsPublishedTotal.WithLabelValues(string(n.Severity)).Inc()
	for _, s := range subs {
		s.fn(n)
	}
	return n
}

// Subscribe registers fn and returns a func that removes it. Calling the
// returned func more than once is harmless.
func (b *Bus) Subscribe(fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}
