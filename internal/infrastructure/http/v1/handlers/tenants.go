package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"clinicore/internal/core/apperror"
	"clinicore/internal/core/sequence"
	"clinicore/internal/core/tenant"
	"clinicore/internal/infrastructure/http/v1/dto"
)

// TenantsHandler serves the admin tenant provisioning endpoints.
// These routes sit outside the tenant-scoped group.
type TenantsHandler struct {
	*BaseHandler
	registry tenant.Registry
}

func NewTenantsHandler(registry tenant.Registry) *TenantsHandler {
	return &TenantsHandler{
		BaseHandler: NewBaseHandler(),
		registry:    registry,
	}
}

// Create handles POST /admin/tenants.
func (h *TenantsHandler) Create(c *gin.Context) {
	var req dto.CreateTenantRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input := tenant.CreateTenantInput{Slug: req.Slug, Name: req.Name}
	if err := input.Validate(); err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	t := &tenant.Tenant{
		Slug:   input.Slug,
		Name:   input.Name,
		Status: tenant.StatusActive,
	}
	if err := h.registry.Create(c.Request.Context(), t); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromTenant(t))
}

// Get handles GET /admin/tenants/:id.
func (h *TenantsHandler) Get(c *gin.Context) {
	t, err := h.registry.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.tenantError(c, err)
		return
	}
	h.OK(c, dto.FromTenant(t))
}

// List handles GET /admin/tenants.
func (h *TenantsHandler) List(c *gin.Context) {
	tenants, err := h.registry.ListActive(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, dto.FromTenant(t))
	}
	h.OK(c, gin.H{"tenants": out})
}

// UpdateStatus handles PUT /admin/tenants/:id/status.
func (h *TenantsHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateTenantStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := h.registry.UpdateStatusByID(c.Request.Context(), c.Param("id"), tenant.Status(req.Status))
	if err != nil {
		h.tenantError(c, err)
		return
	}
	h.OK(c, dto.SuccessResponse{Success: true})
}

// UpdateSettings handles PUT /admin/tenants/:id/settings.
// Replaces the whole counter defaults document.
func (h *TenantsHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateTenantSettingsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	settings := tenant.Settings{}
	if len(req.Counters) > 0 {
		settings.Counters = make(map[string]sequence.Settings, len(req.Counters))
		for name, cfg := range req.Counters {
			kind, err := sequence.ParseKind(name)
			if err != nil {
				h.Error(c, apperror.NewValidation("unknown counter kind").
					WithDetail("kind", name))
				return
			}
			settings.Counters[string(kind)] = sequence.Settings{
				Prefix:        cfg.Prefix,
				UseYearSuffix: cfg.UseYearSuffix,
			}
		}
	}

	err := h.registry.UpdateSettings(c.Request.Context(), c.Param("id"), settings)
	if err != nil {
		h.tenantError(c, err)
		return
	}
	h.OK(c, dto.SuccessResponse{Success: true})
}

func (h *TenantsHandler) tenantError(c *gin.Context, err error) {
	if errors.Is(err, tenant.ErrTenantNotFound) {
		h.Error(c, apperror.NewNotFound("tenant", c.Param("id")))
		return
	}
	h.Error(c, err)
}
