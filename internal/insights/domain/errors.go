package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrStoreNotFound   = errors.New("store_not_found")
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidStoreID  = errors.New("invalid_store_id")
	ErrInvalidSortKey  = errors.New("invalid_sort_key")
)

// ComputationError reports a storage or deadline failure while aggregating.
// Callers never receive a partial payload alongside it.
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("insights %s: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}
