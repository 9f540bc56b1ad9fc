package routes

import (
	"varto-api/handlers"
	"varto-api/metrics"
	"varto-api/middleware"
	"varto-api/models"
	"varto-api/realtime"

	"github.com/gin-gonic/gin"
)

// SetupRoutes mounts the admin and store namespaces on r
func SetupRoutes(r *gin.Engine, h *handlers.Handler, auth *middleware.Auth, otpLimiter *middleware.RateLimiter, hub *realtime.Hub) {
	r.GET("/", h.Welcome)
	r.GET("/health", h.Health)
	r.GET("/metrics", metrics.Handler())

	// ── Admin namespace ────────────────────────────────────────────
	r.POST("/admin/auth/login", h.Login)

	staff := r.Group("/admin")
	staff.Use(auth.StaffRequired())
	{
		staff.GET("/auth/me", h.Me)
		staff.GET("/order-statuses", h.GetOrderStatuses)
		staff.GET("/vendor-categories", h.ListVendorCategories)
		if hub != nil {
			staff.GET("/ws", handlers.LiveFeed(hub))
		}

		// Profiles: vendor and courier users may edit their own
		staff.GET("/vendors/:id", h.GetVendor)
		staff.POST("/vendors/:id", h.UpdateVendor)
		staff.GET("/couriers/:id", h.GetCourier)
		staff.POST("/couriers/:id", h.UpdateCourier)

		// Orders are scoped to the caller's vendor or courier profile
		orders := staff.Group("/varto-orders")
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id", h.UpdateOrder)
		orders.POST("/:id/advance", h.AdvanceOrder)
		orders.POST("/:id/accept", middleware.RoleRequired(models.RoleCourier), h.AcceptOrder)
	}

	admin := staff.Group("")
	admin.Use(middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/dashboard", h.Dashboard)

		admin.GET("/users", h.ListUsers)
		admin.POST("/users", h.CreateUser)

		admin.GET("/vendors", h.ListVendors)
		admin.POST("/vendors", h.CreateVendor)
		admin.DELETE("/vendors/:id", h.DeleteVendor)

		admin.GET("/couriers", h.ListCouriers)
		admin.POST("/couriers", h.CreateCourier)
		admin.DELETE("/couriers/:id", h.DeleteCourier)

		admin.GET("/customers", h.ListCustomers)
		admin.POST("/customers", h.CreateCustomer)
		admin.GET("/customers/:id", h.GetCustomer)
		admin.POST("/customers/:id", h.UpdateCustomer)
		admin.DELETE("/customers/:id", h.DeleteCustomer)

		admin.GET("/listings", h.ListListings)
		admin.POST("/listings", h.CreateListing)
		admin.GET("/listings/:id", h.GetListing)
		admin.POST("/listings/:id", h.UpdateListing)
		admin.DELETE("/listings/:id", h.DeleteListing)
		admin.POST("/listings/:id/approve", h.ApproveListing)
		admin.POST("/listings/:id/reject", h.RejectListing)

		admin.GET("/appointments", h.ListAppointments)
		admin.POST("/appointments", h.CreateAppointment)
		admin.GET("/appointments/:id", h.GetAppointment)
		admin.POST("/appointments/:id", h.UpdateAppointment)
		admin.DELETE("/appointments/:id", h.DeleteAppointment)

		admin.POST("/varto-orders", h.CreateOrder)
		admin.DELETE("/varto-orders/:id", h.DeleteOrder)
		admin.POST("/varto-orders/:id/items", h.AddOrderItem)
		admin.POST("/varto-orders/:id/items/:itemId", h.UpdateOrderItem)
		admin.DELETE("/varto-orders/:id/items/:itemId", h.DeleteOrderItem)

		admin.GET("/notifications", h.ListNotifications)
		admin.POST("/notifications", h.CreateNotification)
		admin.POST("/notifications/read-all", h.MarkAllNotificationsRead)
		admin.POST("/notifications/:id/read", h.MarkNotificationRead)
		admin.DELETE("/notifications/:id", h.DeleteNotification)
	}

	// ── Store namespace ────────────────────────────────────────────
	store := r.Group("/store")
	{
		store.POST("/auth/send-otp", otpLimiter.ByPhone(), h.SendOTP)
		store.POST("/auth/verify-otp", otpLimiter.ByPhone(), h.VerifyOTP)

		store.GET("/vendors", h.StoreListVendors)
		store.GET("/vendors/:id", h.StoreGetVendor)
		store.GET("/listings", h.StoreListListings)
	}

	customer := store.Group("")
	customer.Use(auth.CustomerRequired())
	{
		customer.GET("/customers/me", h.StoreGetMe)
		customer.POST("/customers/me", h.StoreUpdateMe)

		customer.GET("/listings/mine", h.StoreMyListings)
		customer.POST("/listings", h.StoreCreateListing)

		customer.POST("/orders", h.StoreCreateOrder)
		customer.GET("/orders", h.StoreListOrders)
		customer.GET("/orders/:id", h.StoreGetOrder)

		customer.POST("/appointments", h.StoreCreateAppointment)
		customer.GET("/appointments", h.StoreMyAppointments)

		customer.GET("/notifications", h.StoreListNotifications)
		customer.POST("/notifications/:id/read", h.StoreMarkNotificationRead)
	}
	store.GET("/listings/:id", h.StoreGetListing)
}
