package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/middleware"
)

type Handlers struct {
	Auth            *AuthHandler
	Owners          *OwnerHandler
	Patients        *PatientHandler
	Supplies        *SupplyHandler
	Catalog         *CatalogHandler
	Consultations   *ConsultationHandler
	Hospitalization *HospitalizationHandler
	Sales           *SaleHandler
	Appointments    *AppointmentHandler
	History         *HistoryHandler
}

const (
	admin     = domain.RoleAdmin
	vet       = domain.RoleVeterinarian
	assistant = domain.RoleAssistant
	cashier   = domain.RoleCashier
)

// Register mounts the v1 API on rg. login is applied to the credential
// endpoints only.
func Register(rg *gin.RouterGroup, h Handlers, tokens middleware.TokenValidator, login gin.HandlerFunc) {
	auth := rg.Group("/auth")
	auth.POST("/login", login, h.Auth.Login)
	auth.POST("/refresh", login, h.Auth.Refresh)

	api := rg.Group("", middleware.RequireAuth(tokens))
	staff := middleware.RequireRole(vet, assistant, cashier)
	clinical := middleware.RequireRole(vet)
	ward := middleware.RequireRole(vet, assistant)
	till := middleware.RequireRole(cashier)
	adminOnly := middleware.RequireRole(admin)

	api.GET("/auth/me", h.Auth.Me)
	api.POST("/auth/password", h.Auth.ChangePassword)
	api.POST("/users", adminOnly, h.Auth.CreateUser)

	owners := api.Group("/owners", staff)
	owners.POST("", h.Owners.Create)
	owners.GET("", h.Owners.List)
	owners.GET("/:id", h.Owners.Get)
	owners.PATCH("/:id", h.Owners.Update)
	owners.DELETE("/:id", adminOnly, h.Owners.Delete)

	patients := api.Group("/patients", staff)
	patients.POST("", h.Patients.Create)
	patients.GET("", h.Patients.List)
	patients.GET("/:id", h.Patients.Get)
	patients.PATCH("/:id", h.Patients.Update)
	patients.POST("/:id/transfer", ward, h.Patients.Transfer)
	patients.POST("/:id/deceased", clinical, h.Patients.MarkDeceased)
	patients.DELETE("/:id", adminOnly, h.Patients.Delete)

	supplies := api.Group("/supplies", staff)
	supplies.GET("", h.Supplies.List)
	supplies.GET("/:id", h.Supplies.Get)
	supplies.GET("/:id/movements", h.Supplies.Movements)
	supplies.POST("/:id/preview", h.Supplies.Preview)
	supplies.POST("", adminOnly, h.Supplies.Create)
	supplies.PATCH("/:id", adminOnly, h.Supplies.Update)
	supplies.POST("/:id/deactivate", adminOnly, h.Supplies.Deactivate)
	supplies.POST("/:id/restock", ward, h.Supplies.Restock)
	supplies.POST("/:id/adjust", adminOnly, h.Supplies.Adjust)

	services := api.Group("/services", staff)
	services.GET("", h.Catalog.List)
	services.GET("/:id", h.Catalog.Get)
	services.POST("", adminOnly, h.Catalog.Create)
	services.PATCH("/:id", adminOnly, h.Catalog.Update)
	services.PUT("/:id/supplies", adminOnly, h.Catalog.ReplaceSupplies)
	services.POST("/:id/deactivate", adminOnly, h.Catalog.Deactivate)

	consultations := api.Group("/consultations", ward)
	consultations.GET("", h.Consultations.List)
	consultations.GET("/:id", h.Consultations.Get)
	consultations.POST("", clinical, h.Consultations.Create)
	consultations.PATCH("/:id", clinical, h.Consultations.Update)
	consultations.POST("/:id/services", clinical, h.Consultations.AddService)
	consultations.POST("/:id/supplies", clinical, h.Consultations.AddSupply)
	consultations.DELETE("/:id/lines/:lineID", clinical, h.Consultations.RemoveLine)
	consultations.POST("/:id/confirm", clinical, h.Consultations.Confirm)
	consultations.POST("/:id/cancel", clinical, h.Consultations.Cancel)

	stays := api.Group("/hospitalizations", ward)
	stays.GET("", h.Hospitalization.List)
	stays.GET("/:id", h.Hospitalization.Get)
	stays.POST("", clinical, h.Hospitalization.Admit)
	stays.POST("/:id/supplies", h.Hospitalization.AddSupply)
	stays.POST("/:id/discharge", clinical, h.Hospitalization.Discharge)

	cash := api.Group("/cash", till)
	cash.POST("/open", h.Sales.OpenSession)
	cash.POST("/close", h.Sales.CloseSession)
	cash.GET("/current", h.Sales.CurrentSession)
	cash.GET("/sessions/:id", h.Sales.GetSession)

	sales := api.Group("/sales", till)
	sales.POST("", h.Sales.Create)
	sales.GET("", h.Sales.List)
	sales.GET("/:id", h.Sales.Get)
	sales.POST("/:id/items", h.Sales.AddItem)
	sales.DELETE("/:id/items/:itemID", h.Sales.RemoveItem)
	sales.POST("/:id/pay", h.Sales.Pay)
	sales.POST("/:id/void", adminOnly, h.Sales.Void)

	appointments := api.Group("/appointments", staff)
	appointments.POST("", h.Appointments.Schedule)
	appointments.GET("", h.Appointments.List)
	appointments.GET("/:id", h.Appointments.Get)
	appointments.POST("/:id/status", h.Appointments.UpdateStatus)
	appointments.POST("/:id/reschedule", h.Appointments.Reschedule)

	trail := api.Group("/history", adminOnly)
	trail.GET("", h.History.List)
	trail.GET("/:entity/:id", h.History.ForEntity)
}
