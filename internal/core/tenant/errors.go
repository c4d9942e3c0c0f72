package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when the tenant does not exist.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantNotActive is returned when the tenant exists but is not active.
	ErrTenantNotActive = errors.New("tenant is not active")
)
