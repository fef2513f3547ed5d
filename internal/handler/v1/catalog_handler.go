package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/catalog"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/service"
)

type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

type serviceSupplyRequest struct {
	SupplyID   uuid.UUID `json:"supply_id" binding:"required"`
	Days       int       `json:"days"`
	Containers int64     `json:"containers"`
}

func supplyInputs(in []serviceSupplyRequest) []catalog.SupplyInput {
	out := make([]catalog.SupplyInput, 0, len(in))
	for _, s := range in {
		out = append(out, catalog.SupplyInput{SupplyID: s.SupplyID, Days: s.Days, Containers: s.Containers})
	}
	return out
}

type createServiceRequest struct {
	Name     string                 `json:"name"`
	Category catalog.Category       `json:"category"`
	Price    decimal.Decimal        `json:"price"`
	Supplies []serviceSupplyRequest `json:"supplies" binding:"dive"`
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var req createServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.svc.CreateService(c.Request.Context(), &catalog.CreateServiceCommand{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Supplies: supplyInputs(req.Supplies),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, s)
}

func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	s, err := h.svc.GetService(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, s)
}

type updateServiceRequest struct {
	Name     *string           `json:"name"`
	Category *catalog.Category `json:"category"`
	Price    *decimal.Decimal  `json:"price"`
}

func (h *CatalogHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.svc.UpdateService(c.Request.Context(), id, &catalog.UpdateServiceCommand{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, s)
}

func (h *CatalogHandler) List(c *gin.Context) {
	page, err := h.svc.ListServices(c.Request.Context(), &catalog.ListServicesQuery{
		Search:     c.Query("search"),
		Category:   queryEnum[catalog.Category](c, "category"),
		ActiveOnly: c.Query("active") == "true",
		Page:       parseQueryInt(c, "page", 1),
		PageSize:   parseQueryInt(c, "page_size", 20),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

func (h *CatalogHandler) Deactivate(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	s, err := h.svc.DeactivateService(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, s)
}

type replaceSuppliesRequest struct {
	Supplies []serviceSupplyRequest `json:"supplies" binding:"dive"`
}

func (h *CatalogHandler) ReplaceSupplies(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req replaceSuppliesRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.svc.ReplaceSupplies(c.Request.Context(), id, supplyInputs(req.Supplies))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, s)
}
