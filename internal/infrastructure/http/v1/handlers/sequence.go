package handlers

import (
	"github.com/gin-gonic/gin"

	"clinicore/internal/core/apperror"
	"clinicore/internal/core/sequence"
	"clinicore/internal/infrastructure/http/v1/dto"
)

// SequenceHandler serves counter inspection and administration.
type SequenceHandler struct {
	*BaseHandler
	allocator sequence.Allocator
}

func NewSequenceHandler(allocator sequence.Allocator) *SequenceHandler {
	return &SequenceHandler{
		BaseHandler: NewBaseHandler(),
		allocator:   allocator,
	}
}

func (h *SequenceHandler) parseKey(c *gin.Context) (sequence.Kind, int, bool) {
	kind, err := sequence.ParseKind(c.Param("kind"))
	if err != nil {
		h.Error(c, apperror.NewValidation("unknown counter kind").
			WithDetail("kind", c.Param("kind")))
		return "", 0, false
	}

	year := h.ParseIntQuery(c, "year", 0)
	if year == 0 {
		h.Error(c, apperror.NewValidation("year query parameter is required"))
		return "", 0, false
	}
	return kind, year, true
}

// Peek handles GET /sequences/:kind/next?year=.
// Shows what the next allocation would issue without consuming it.
func (h *SequenceHandler) Peek(c *gin.Context) {
	kind, year, ok := h.parseKey(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	next, err := h.allocator.PeekNext(ctx, kind, year)
	if err != nil {
		h.Error(c, err)
		return
	}
	settings, err := h.allocator.CurrentSettings(ctx, kind, year)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SequenceStateResponse{
		Kind:          string(kind),
		Year:          year,
		NextNumber:    next,
		Prefix:        settings.Prefix,
		UseYearSuffix: settings.UseYearSuffix,
	})
}

// Reset handles PUT /sequences/:kind?year=.
// Moves the counter and optionally replaces its formatting. The next
// allocation issues value+1.
func (h *SequenceHandler) Reset(c *gin.Context) {
	kind, year, ok := h.parseKey(c)
	if !ok {
		return
	}

	var req dto.ResetSequenceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.Value < 0 {
		h.Error(c, apperror.NewInvalidRange("counter value must not be negative").
			WithDetail("value", req.Value))
		return
	}
	ctx := c.Request.Context()

	var settings *sequence.Settings
	if req.Prefix != nil || req.UseYearSuffix != nil {
		current, err := h.allocator.CurrentSettings(ctx, kind, year)
		if err != nil {
			h.Error(c, err)
			return
		}
		if req.Prefix != nil {
			current.Prefix = *req.Prefix
		}
		if req.UseYearSuffix != nil {
			current.UseYearSuffix = *req.UseYearSuffix
		}
		settings = &current
	}

	if err := h.allocator.ResetTo(ctx, kind, year, req.Value, settings); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.SuccessResponse{Success: true})
}
