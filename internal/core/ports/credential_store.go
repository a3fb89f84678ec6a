package ports

import "context"

// Keys under which the console persists its state.
const (
	KeyAccessToken  = "session.access_token"
	KeyRefreshToken = "session.refresh_token"
	KeySessionUser  = "session.user"
	KeyActiveTenant = "tenant.active_id"
)

// CredentialStore is durable key/value storage for the console's session and
// tenant selection. Reads are served locally and never block on the network.
// Contents are not validated.
type CredentialStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Clear(key string) error
	Ping(ctx context.Context) error
}
