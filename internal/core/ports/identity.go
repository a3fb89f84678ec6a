package ports

import "context"

// SessionSource is the request pipeline's read-only view of the session, plus
// the forced teardown it triggers on a 401.
type SessionSource interface {
	AccessToken() string
	ForceLogout()
}

// TenantSource exposes the active tenant id, "" when none is selected.
type TenantSource interface {
	ActiveTenantID() string
}

// Task is a best-effort background call.
type Task func(ctx context.Context) error

// TaskRunner runs fire-and-forget tasks. Tasks sharing a key run in order.
type TaskRunner interface {
	Enqueue(key string, task Task)
}
