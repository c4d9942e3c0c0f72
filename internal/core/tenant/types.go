// Package tenant provides multi-tenant scoping for a shared-database
// deployment. Every row carries the owning tenant's id; every request
// carries the tenant in its context, and repositories filter by it.
package tenant

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"clinicore/internal/core/sequence"
)

// Status represents tenant lifecycle state.
type Status string

const (
	// StatusActive - tenant can accept requests
	StatusActive Status = "active"

	// StatusSuspended - tenant is temporarily disabled
	StatusSuspended Status = "suspended"

	// StatusDeleted - tenant is marked for deletion
	StatusDeleted Status = "deleted"
)

// Settings is the tenant's JSONB settings document.
// Counters holds per-kind numbering defaults applied when a counter row
// is created lazily on first allocation.
type Settings struct {
	Counters map[string]sequence.Settings `json:"counters,omitempty"`
}

// CounterDefaults returns the tenant's default numbering configuration
// for a kind, falling back to the built-in defaults.
func (s Settings) CounterDefaults(kind sequence.Kind) sequence.Settings {
	if cfg, ok := s.Counters[string(kind)]; ok {
		return cfg
	}
	return sequence.DefaultSettings(kind)
}

// Scan implements sql.Scanner for reading from PostgreSQL JSONB.
func (s *Settings) Scan(src any) error {
	if src == nil {
		*s = Settings{}
		return nil
	}

	var source []byte
	switch v := src.(type) {
	case []byte:
		source = v
	case string:
		source = []byte(v)
	default:
		return fmt.Errorf("unsupported type for Settings: %T", src)
	}

	if len(source) == 0 {
		*s = Settings{}
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(source))
	var result Settings
	if err := decoder.Decode(&result); err != nil {
		return fmt.Errorf("failed to decode Settings: %w", err)
	}

	*s = result
	return nil
}

// Value implements driver.Valuer for writing to PostgreSQL JSONB.
func (s Settings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Tenant represents one hospital/organization.
type Tenant struct {
	ID        string    `db:"id"`
	Slug      string    `db:"slug"` // URL-safe identifier
	Name      string    `db:"name"` // Human-readable name
	Status    Status    `db:"status"`
	Settings  Settings  `db:"settings"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsActive returns true if tenant can accept requests.
func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

// CreateTenantInput contains data for creating a new tenant.
type CreateTenantInput struct {
	Slug string
	Name string
}

// Validate checks if input is valid.
func (i *CreateTenantInput) Validate() error {
	if i.Slug == "" {
		return fmt.Errorf("slug is required")
	}
	i.Slug = strings.ToLower(i.Slug)
	if len(i.Slug) > 63 {
		return fmt.Errorf("slug must be 63 characters or less")
	}
	if i.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}
