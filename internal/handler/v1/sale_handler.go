package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/sale"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/service"
)

type SaleHandler struct {
	sales *service.SaleService
	cash  *service.CashService
}

func NewSaleHandler(sales *service.SaleService, cash *service.CashService) *SaleHandler {
	return &SaleHandler{sales: sales, cash: cash}
}

type openSessionRequest struct {
	OpeningAmount decimal.Decimal `json:"opening_amount"`
	Notes         string          `json:"notes"`
}

func (h *SaleHandler) OpenSession(c *gin.Context) {
	var req openSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	cs, err := h.cash.Open(c.Request.Context(), currentUser(c).UserID, req.OpeningAmount, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, cs)
}

type closeSessionRequest struct {
	CountedAmount decimal.Decimal `json:"counted_amount"`
	Notes         string          `json:"notes"`
}

func (h *SaleHandler) CloseSession(c *gin.Context) {
	var req closeSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	cs, err := h.cash.Close(c.Request.Context(), currentUser(c).UserID, req.CountedAmount, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, cs)
}

func (h *SaleHandler) CurrentSession(c *gin.Context) {
	cs, err := h.cash.Current(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, cs)
}

func (h *SaleHandler) GetSession(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	cs, err := h.cash.GetSession(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, cs)
}

type createSaleRequest struct {
	OwnerID  *uuid.UUID      `json:"owner_id"`
	Discount decimal.Decimal `json:"discount"`
}

func (h *SaleHandler) Create(c *gin.Context) {
	var req createSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	sl, err := h.sales.CreateSale(c.Request.Context(), &sale.CreateSaleCommand{
		OwnerID:   req.OwnerID,
		Discount:  req.Discount,
		CreatedBy: currentUser(c).UserID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, sl)
}

func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	sl, err := h.sales.GetSale(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, sl)
}

func (h *SaleHandler) List(c *gin.Context) {
	sessionID, ok := queryUUID(c, "session_id")
	if !ok {
		return
	}
	ownerID, ok := queryUUID(c, "owner_id")
	if !ok {
		return
	}
	from, ok := queryTime(c, "from")
	if !ok {
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return
	}
	page, err := h.sales.ListSales(c.Request.Context(), &sale.ListSalesQuery{
		SessionID: sessionID,
		OwnerID:   ownerID,
		Status:    queryEnum[sale.Status](c, "status"),
		DateFrom:  from,
		DateTo:    to,
		Page:      parseQueryInt(c, "page", 1),
		PageSize:  parseQueryInt(c, "page_size", 20),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

type addItemRequest struct {
	Kind      sale.ItemKind `json:"kind" binding:"required"`
	SupplyID  *uuid.UUID    `json:"supply_id"`
	ServiceID *uuid.UUID    `json:"service_id"`
	Quantity  int64         `json:"quantity" binding:"required"`
}

func (h *SaleHandler) AddItem(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req addItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.sales.AddItem(c.Request.Context(), id, &sale.AddItemCommand{
		Kind:      req.Kind,
		SupplyID:  req.SupplyID,
		ServiceID: req.ServiceID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, item)
}

func (h *SaleHandler) RemoveItem(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUUID(c, "itemID")
	if !ok {
		return
	}
	if err := h.sales.RemoveItem(c.Request.Context(), id, itemID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type payRequest struct {
	Method sale.PaymentMethod `json:"method" binding:"required"`
}

func (h *SaleHandler) Pay(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req payRequest
	if !bindJSON(c, &req) {
		return
	}
	sl, err := h.sales.Pay(c.Request.Context(), id, req.Method)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, sl)
}

// Void reverses a paid sale and returns its supplies to stock.
func (h *SaleHandler) Void(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	sl, err := h.sales.Void(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, sl)
}
