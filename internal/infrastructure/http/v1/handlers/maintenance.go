package handlers

import (
	"github.com/gin-gonic/gin"

	"clinicore/internal/core/apperror"
	"clinicore/internal/core/sequence"
	"clinicore/internal/domain/maintenance"
	"clinicore/internal/infrastructure/http/v1/dto"
	"clinicore/internal/infrastructure/storage/postgres"
)

// MaintenanceHandler serves the administrative bulk operations.
type MaintenanceHandler struct {
	*BaseHandler
	cascade    *maintenance.CascadeEngine
	resequence *maintenance.ResequenceEngine
	journal    *postgres.JournalService
}

func NewMaintenanceHandler(
	cascade *maintenance.CascadeEngine,
	resequence *maintenance.ResequenceEngine,
	journal *postgres.JournalService,
) *MaintenanceHandler {
	return &MaintenanceHandler{
		BaseHandler: NewBaseHandler(),
		cascade:     cascade,
		resequence:  resequence,
		journal:     journal,
	}
}

// Purge handles POST /maintenance/purge.
func (h *MaintenanceHandler) Purge(c *gin.Context) {
	var req dto.PurgeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	summary, err := h.cascade.DeleteByRange(c.Request.Context(), maintenance.PurgeCriteria{
		Start:  req.Start,
		End:    req.End,
		Filter: req.Filter,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDeleteSummary(summary))
}

// Thin handles POST /maintenance/thin.
func (h *MaintenanceHandler) Thin(c *gin.Context) {
	var req dto.ThinRequest
	if !h.BindJSON(c, &req) {
		return
	}

	summary, err := h.cascade.Thin(c.Request.Context(), maintenance.ThinCriteria{
		Start:   req.Start,
		End:     req.End,
		MinKeep: req.MinKeep,
		MaxKeep: req.MaxKeep,
		Filter:  req.Filter,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDeleteSummary(summary))
}

// Resequence handles POST /maintenance/resequence.
func (h *MaintenanceHandler) Resequence(c *gin.Context) {
	var req dto.ResequenceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	kind, err := sequence.ParseKind(req.Kind)
	if err != nil {
		h.Error(c, apperror.NewValidation("unknown counter kind").
			WithDetail("kind", req.Kind))
		return
	}

	summary, err := h.resequence.Resequence(c.Request.Context(), kind, req.Year)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ResequenceSummaryResponse{Renumbered: summary.Renumbered})
}

// Journal handles GET /maintenance/journal?limit=.
func (h *MaintenanceHandler) Journal(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 50)

	entries, err := h.journal.GetRecent(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"entries": entries})
}
