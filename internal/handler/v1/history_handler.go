package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/service"
)

type HistoryHandler struct {
	svc *service.HistoryService
}

func NewHistoryHandler(svc *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

func (h *HistoryHandler) List(c *gin.Context) {
	from, ok := queryTime(c, "from")
	if !ok {
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return
	}
	page, err := h.svc.ListEvents(c.Request.Context(), &history.ListQuery{
		EntityType:   queryEnum[history.EntityType](c, "entity_type"),
		EntityID:     c.Query("entity_id"),
		Kind:         queryEnum[history.Kind](c, "kind"),
		MinCriticity: queryEnum[history.Criticity](c, "min_criticity"),
		From:         from,
		To:           to,
		Page:         parseQueryInt(c, "page", 1),
		PageSize:     parseQueryInt(c, "page_size", 50),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

// ForEntity lists the trail of one record, newest first.
func (h *HistoryHandler) ForEntity(c *gin.Context) {
	entity := history.EntityType(c.Param("entity"))
	page, err := h.svc.ListEvents(c.Request.Context(), &history.ListQuery{
		EntityType: &entity,
		EntityID:   c.Param("id"),
		Page:       parseQueryInt(c, "page", 1),
		PageSize:   parseQueryInt(c, "page_size", 50),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}
