package dto

import (
	"time"

	"clinicore/internal/core/tenant"
)

// CreateTenantRequest is the admin request to provision a tenant.
type CreateTenantRequest struct {
	Slug string `json:"slug" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// UpdateTenantStatusRequest changes tenant lifecycle state.
type UpdateTenantStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active suspended deleted"`
}

// CounterSettings is the wire form of one counter's numbering defaults.
type CounterSettings struct {
	Prefix        string `json:"prefix"`
	UseYearSuffix bool   `json:"use_year_suffix"`
}

// UpdateTenantSettingsRequest replaces the tenant settings document.
type UpdateTenantSettingsRequest struct {
	Counters map[string]CounterSettings `json:"counters"`
}

// TenantResponse is the API representation of a tenant.
type TenantResponse struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromTenant(t *tenant.Tenant) TenantResponse {
	return TenantResponse{
		ID:        t.ID,
		Slug:      t.Slug,
		Name:      t.Name,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
