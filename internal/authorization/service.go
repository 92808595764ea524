package authorization

import (
	"context"
	"errors"

	authdomain "github.com/smallbiznis/clinicops/internal/auth/domain"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
)

type Service interface {
	// Authorize returns ErrForbidden when the principal's role may not
	// perform action on object.
	Authorize(ctx context.Context, principal *authdomain.Principal, object string, action string) error
}
