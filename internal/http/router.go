// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourbook/internal/http/handlers"
	"tourbook/internal/http/middleware"
	"tourbook/internal/infra"
	"tourbook/internal/modules/booking"
	"tourbook/internal/modules/fleet"
	"tourbook/internal/modules/payment"
	"tourbook/internal/modules/wizard"
)

type RouterDeps struct {
	Bookings *booking.Service
	Wizard   *wizard.Service
	Payments *payment.Service
	Fleet    fleet.Directory
	Verifier infra.TokenVerifier
}

func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")

	wizardHandler := handlers.NewWizardHandler(deps.Wizard)
	api.GET("/fares/quote", wizardHandler.QuoteQuery)
	api.POST("/fares/quote", wizardHandler.Quote)
	api.POST("/wizard", wizardHandler.Start)
	api.GET("/wizard/:id", wizardHandler.Get)
	api.PATCH("/wizard/:id", wizardHandler.Edit)
	api.POST("/wizard/:id/next", wizardHandler.Next)
	api.POST("/wizard/:id/back", wizardHandler.Back)
	api.POST("/wizard/:id/submit", wizardHandler.Submit)

	if deps.Payments != nil {
		paymentHandler := handlers.NewPaymentHandler(deps.Payments)
		api.POST("/bookings/:id/payment", paymentHandler.Initiate)
		api.POST("/webhooks/stripe", paymentHandler.Webhook)
	}

	admin := api.Group("/admin",
		middleware.Auth(deps.Verifier),
		middleware.RequireRole(middleware.RoleAdmin, middleware.RoleOperator),
	)

	bookingHandler := handlers.NewBookingHandler(deps.Bookings)
	admin.GET("/bookings", bookingHandler.List)
	admin.GET("/bookings/counts", bookingHandler.Counts)
	admin.GET("/bookings/:id", bookingHandler.Get)
	admin.DELETE("/bookings/:id", bookingHandler.Delete)
	admin.POST("/bookings/:id/transition", bookingHandler.Transition)
	admin.POST("/bookings/:id/confirm", bookingHandler.Confirm)
	admin.POST("/bookings/:id/start", bookingHandler.Start)
	admin.POST("/bookings/:id/complete", bookingHandler.Complete)
	admin.POST("/bookings/:id/cancel", bookingHandler.Cancel)
	admin.POST("/bookings/:id/assign", bookingHandler.Assign)
	admin.PUT("/bookings/:id/payment-status", bookingHandler.SetPaymentStatus)

	fleetHandler := handlers.NewFleetHandler(deps.Fleet)
	admin.GET("/drivers", fleetHandler.ListDrivers)
	admin.GET("/drivers/:id", fleetHandler.GetDriver)
	admin.GET("/vehicles", fleetHandler.ListVehicles)
	admin.GET("/vehicles/:id", fleetHandler.GetVehicle)

	return r, nil
}
