package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/owner"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/service"
)

type OwnerHandler struct {
	svc *service.OwnerService
}

func NewOwnerHandler(svc *service.OwnerService) *OwnerHandler {
	return &OwnerHandler{svc: svc}
}

type ownerRequest struct {
	RUT       string `json:"rut"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

func (h *OwnerHandler) Create(c *gin.Context) {
	var req ownerRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.svc.CreateOwner(c.Request.Context(), &owner.CreateOwnerCommand{
		RUT:       req.RUT,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, o)
}

func (h *OwnerHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	o, err := h.svc.GetOwner(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, o)
}

type updateOwnerRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Address   *string `json:"address"`
}

func (h *OwnerHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updateOwnerRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.svc.UpdateOwner(c.Request.Context(), id, &owner.UpdateOwnerCommand{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, o)
}

func (h *OwnerHandler) List(c *gin.Context) {
	page, err := h.svc.ListOwners(c.Request.Context(), &owner.ListOwnersQuery{
		Search:   c.Query("search"),
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

func (h *OwnerHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteOwner(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
