package handler

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"pharmaclic/internal/middleware"
	"pharmaclic/internal/model"
	"pharmaclic/internal/repository"
	"pharmaclic/internal/ws"
)

// Routes holds every handler mounted under /api/v1. Staff, Roles and Hub are optional.
type Routes struct {
	Auth      *AuthHandler
	Catalog   *CatalogHandler
	Register  *RegisterHandler
	Report    *ReportHandler
	Assistant *AssistantHandler
	Admin     *AdminHandler
	Staff     *StaffHandler
	Roles     *RoleHandler
	UserRepo  repository.UserRepository
	Hub       *ws.Hub
}

func (r Routes) Mount(app *fiber.App) {
	api := app.Group("/api/v1")
	requireAuth := middleware.RequireAuth(r.UserRepo)

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", r.Auth.Login)
	auth.Post("/change-password", r.Auth.ChangePassword)
	auth.Post("/validate-token", r.Auth.ValidateToken)
	auth.Post("/heartbeat", requireAuth, r.Auth.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	// Catalog
	protected.Get("/products", r.Catalog.GetProducts)
	protected.Get("/products/:id", r.Catalog.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege(model.PrivProductCreate), r.Catalog.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege(model.PrivProductUpdate), r.Catalog.ReplaceProduct)
	protected.Get("/clients", r.Catalog.GetClients)
	protected.Post("/clients", middleware.RequirePrivilege(model.PrivClientCreate), r.Catalog.CreateClient)
	protected.Get("/doctors", r.Catalog.GetDoctors)
	protected.Post("/doctors", middleware.RequirePrivilege(model.PrivDoctorCreate), r.Catalog.CreateDoctor)

	// Register
	cart := protected.Group("/cart", middleware.RequirePrivilege(model.PrivSaleCreate))
	cart.Get("", r.Register.GetCart)
	cart.Post("/items", r.Register.AddItem)
	cart.Patch("/items/:productId", r.Register.UpdateQuantity)
	cart.Delete("/items/:productId", r.Register.RemoveItem)
	cart.Delete("", r.Register.ClearCart)
	cart.Post("/checkout", r.Register.Checkout)

	protected.Get("/sales", middleware.RequireAnyPrivilege(model.PrivSaleView, model.PrivReportView), r.Register.GetSales)
	protected.Get("/sales/:id", middleware.RequireAnyPrivilege(model.PrivSaleView, model.PrivReportView), r.Register.GetSale)

	// Reports
	reports := protected.Group("/reports", middleware.RequirePrivilege(model.PrivReportView))
	reports.Get("/dashboard", r.Report.GetDashboard)
	reports.Get("/sales-by-day", r.Report.GetSalesByDay)
	reports.Get("/top-products", r.Report.GetTopProducts)
	reports.Get("/recent-sales", r.Report.GetRecentSales)
	reports.Get("/low-stock", r.Report.GetLowStock)
	reports.Get("/expiring", r.Report.GetExpiring)
	reports.Get("/expired", r.Report.GetExpired)

	// Assistant
	ai := protected.Group("/assistant", middleware.RequirePrivilege(model.PrivAssistantUse))
	ai.Post("/ask", r.Assistant.Ask)
	ai.Get("/history", r.Assistant.History)
	ai.Delete("/history", r.Assistant.ResetHistory)

	// Admin
	protected.Post("/admin/reset", middleware.RequirePrivilege(model.PrivStoreReset), r.Admin.ResetStore)

	if r.Staff != nil {
		users := protected.Group("/users", middleware.RequirePrivilege(model.PrivUserManage))
		users.Get("", r.Staff.GetUsers)
		users.Get("/:id", r.Staff.GetUser)
		users.Post("", r.Staff.CreateUser)
		users.Put("/:id", r.Staff.UpdateUser)
		users.Put("/:id/privileges", r.Staff.UpdateUserPrivileges)
		users.Delete("/:id", r.Staff.DeleteUser)
	}

	if r.Roles != nil {
		protected.Get("/roles", r.Roles.GetRoles)
		protected.Get("/privileges", r.Roles.GetPrivileges)
	}

	if r.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(func(c *websocket.Conn) {
			r.Hub.Register <- c
			defer func() { r.Hub.Unregister <- c }()

			for {
				if _, _, err := c.ReadMessage(); err != nil {
					break
				}
			}
		}))
	}
}
