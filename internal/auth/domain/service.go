package domain

import "context"

type Service interface {
	// Authenticate resolves an opaque session token into a Principal.
	Authenticate(ctx context.Context, rawToken string) (*Principal, error)
	// Logout revokes the session behind rawToken. Revoking twice is a no-op.
	Logout(ctx context.Context, rawToken string) error
}
