package notify

import (
	"slices"
	"sync"
	"time"

	"github.com/99minutos/catalog-console/internal/core/domain"
)

// Tray is the visible toast list. Each toast is dismissed automatically after
// its own Duration unless Dismiss removes it first.
type Tray struct {
	mu     sync.Mutex
	items  []domain.Notification
	timers map[string]*time.Timer
	after  func(time.Duration, func()) *time.Timer
	unsub  func()
}

// NewTray subscribes a new Tray to bus.
func NewTray(bus *Bus) *Tray {
	t := &Tray{
		timers: make(map[string]*time.Timer),
		after:  time.AfterFunc,
	}
	t.unsub = bus.Subscribe(t.add)
	return t
}

func (t *Tray) add(n domain.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, n)
	id := n.ID
	t.timers[id] = t.after(n.Duration, func() { t.Dismiss(id) })
}

// Dismiss removes the toast with id. It reports whether the toast was visible.
func (t *Tray) Dismiss(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if timer, ok := t.timers[id]; ok {
		timer.Stop()
		delete(t.timers, id)
	}
	i := slices.IndexFunc(t.items, func(n domain.Notification) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	t.items = slices.Delete(t.items, i, i+1)
	return true
}

// Active returns the visible toasts, oldest first.
func (t *Tray) Active() []domain.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.items)
}

// Close unsubscribes the tray and stops pending timers.
func (t *Tray) Close() {
	t.unsub()
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
	t.items = nil
}
