package ports

import "github.com/99minutos/catalog-console/internal/core/domain"

// Notifier publishes toasts to whoever is listening.
type Notifier interface {
	Publish(n domain.Notification) domain.Notification
}
