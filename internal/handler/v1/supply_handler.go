package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/supply"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/service"
)

type SupplyHandler struct {
	svc *service.SupplyService
}

func NewSupplyHandler(svc *service.SupplyService) *SupplyHandler {
	return &SupplyHandler{svc: svc}
}

type createSupplyRequest struct {
	Code                string          `json:"code"`
	Name                string          `json:"name"`
	Kind                supply.Kind     `json:"kind"`
	Format              supply.Format   `json:"format"`
	DosePerKg           decimal.Decimal `json:"dose_per_kg"`
	ApplicationsPerDay  int             `json:"applications_per_day"`
	ContentPerContainer decimal.Decimal `json:"content_per_container"`
	ContentUnit         string          `json:"content_unit"`
	MinWeightKg         decimal.Decimal `json:"min_weight_kg"`
	MaxWeightKg         decimal.Decimal `json:"max_weight_kg"`
	InitialStock        int64           `json:"initial_stock"`
	MinStock            int64           `json:"min_stock"`
	CostPrice           decimal.Decimal `json:"cost_price"`
	SalePrice           decimal.Decimal `json:"sale_price"`
}

func (h *SupplyHandler) Create(c *gin.Context) {
	var req createSupplyRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.svc.CreateSupply(c.Request.Context(), &supply.CreateSupplyCommand{
		Code:                req.Code,
		Name:                req.Name,
		Kind:                req.Kind,
		Format:              req.Format,
		DosePerKg:           req.DosePerKg,
		ApplicationsPerDay:  req.ApplicationsPerDay,
		ContentPerContainer: req.ContentPerContainer,
		ContentUnit:         req.ContentUnit,
		MinWeightKg:         req.MinWeightKg,
		MaxWeightKg:         req.MaxWeightKg,
		InitialStock:        req.InitialStock,
		MinStock:            req.MinStock,
		CostPrice:           req.CostPrice,
		SalePrice:           req.SalePrice,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, s)
}

func (h *SupplyHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	s, err := h.svc.GetSupply(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, s)
}

type updateSupplyRequest struct {
	Name                *string          `json:"name"`
	Format              *supply.Format   `json:"format"`
	DosePerKg           *decimal.Decimal `json:"dose_per_kg"`
	ApplicationsPerDay  *int             `json:"applications_per_day"`
	ContentPerContainer *decimal.Decimal `json:"content_per_container"`
	ContentUnit         *string          `json:"content_unit"`
	MinWeightKg         *decimal.Decimal `json:"min_weight_kg"`
	MaxWeightKg         *decimal.Decimal `json:"max_weight_kg"`
	MinStock            *int64           `json:"min_stock"`
	CostPrice           *decimal.Decimal `json:"cost_price"`
	SalePrice           *decimal.Decimal `json:"sale_price"`
}

func (h *SupplyHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updateSupplyRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.svc.UpdateSupply(c.Request.Context(), id, &supply.UpdateSupplyCommand{
		Name:                req.Name,
		Format:              req.Format,
		DosePerKg:           req.DosePerKg,
		ApplicationsPerDay:  req.ApplicationsPerDay,
		ContentPerContainer: req.ContentPerContainer,
		ContentUnit:         req.ContentUnit,
		MinWeightKg:         req.MinWeightKg,
		MaxWeightKg:         req.MaxWeightKg,
		MinStock:            req.MinStock,
		CostPrice:           req.CostPrice,
		SalePrice:           req.SalePrice,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, s)
}

func (h *SupplyHandler) List(c *gin.Context) {
	page, err := h.svc.ListSupplies(c.Request.Context(), &supply.ListSuppliesQuery{
		Search:     c.Query("search"),
		Kind:       queryEnum[supply.Kind](c, "kind"),
		LowStock:   c.Query("low_stock") == "true",
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

func (h *SupplyHandler) Deactivate(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	s, err := h.svc.DeactivateSupply(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, s)
}

type restockRequest struct {
	Quantity int64            `json:"quantity" binding:"required"`
	UnitCost *decimal.Decimal `json:"unit_cost"`
	Note     string           `json:"note"`
}

func (h *SupplyHandler) Restock(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req restockRequest
	if !bindJSON(c, &req) {
		return
	}
	s, m, err := h.svc.Restock(c.Request.Context(), id, supply.RestockCommand{
		Quantity: req.Quantity,
		UnitCost: req.UnitCost,
		Note:     req.Note,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"supply": s, "movement": m})
}

type adjustRequest struct {
	CountedStock *int64 `json:"counted_stock" binding:"required"`
	Reason       string `json:"reason"`
}

func (h *SupplyHandler) Adjust(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req adjustRequest
	if !bindJSON(c, &req) {
		return
	}
	s, m, err := h.svc.Adjust(c.Request.Context(), id, supply.AdjustCommand{
		CountedStock: *req.CountedStock,
		Reason:       req.Reason,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"supply": s, "movement": m})
}

type previewRequest struct {
	WeightKg   decimal.Decimal `json:"weight_kg"`
	Days       int             `json:"days"`
	Containers int64           `json:"containers"`
}

// Preview computes how many containers a treatment needs without touching stock.
func (h *SupplyHandler) Preview(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req previewRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.svc.PreviewRequirement(c.Request.Context(), id, supply.DoseRequest{
		WeightKg:   req.WeightKg,
		Days:       req.Days,
		Containers: req.Containers,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, r)
}

func (h *SupplyHandler) Movements(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	originID, ok := queryUUID(c, "origin_id")
	if !ok {
		return
	}
	page, err := h.svc.Movements(c.Request.Context(), &supply.ListMovementsQuery{
		SupplyID:   id,
		OriginType: queryEnum[supply.OriginType](c, "origin_type"),
		OriginID:   originID,
		Page:       parseQueryInt(c, "page", 1),
		PageSize:   parseQueryInt(c, "page_size", 50),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}
