// README: HTTP router registration.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"oortgo/internal/http/handlers"
	"oortgo/internal/http/middleware"
	"oortgo/internal/modules/driver"
	"oortgo/internal/modules/notify"
	"oortgo/internal/modules/passenger"
	"oortgo/internal/modules/pricing"
	"oortgo/internal/modules/wallet"
)

type RouterDeps struct {
	Passenger *passenger.Flow
	Driver    *driver.Flow
	Wallet    *wallet.Service
	Pricing   *pricing.Engine
	// PassengerCues and DriverCues back the cue feed; nil disables it.
	PassengerCues *notify.Recorder
	DriverCues    *notify.Recorder
	Logger        *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	r := gin.New()
	r.Use(middleware.Recovery(deps.Logger), middleware.Logging(deps.Logger))

	api := r.Group("/api")

	if deps.Passenger != nil {
		h := handlers.NewPassengerHandler(deps.Passenger)
		p := api.Group("/passenger")
		p.GET("", h.Snapshot)
		p.POST("/search", h.StartSearch)
		p.PUT("/pickup", h.SetPickup)
		p.PUT("/destination", h.SetDestination)
		p.POST("/swap", h.Swap)
		p.POST("/destination/submit", h.SubmitDestination)
		p.POST("/schedule/open", h.OpenSchedule)
		p.PUT("/schedule", h.SetSchedule)
		p.DELETE("/schedule", h.ClearSchedule)
		p.PUT("/vehicle", h.SelectVehicle)
		p.PUT("/mode", h.SetMode)
		p.POST("/availability", h.RefreshAvailability)
		p.POST("/vehicle/confirm", h.ConfirmVehicle)
		p.POST("/seats/:id/toggle", h.ToggleSeat)
		p.POST("/booking/confirm", h.ConfirmBooking)
		p.POST("/payment/open", h.OpenPayment)
		p.POST("/payment/pay", h.Pay)
		p.POST("/payment/close", h.ClosePayment)
		p.POST("/cancel", h.Cancel)
		p.POST("/back", h.Back)
		p.POST("/voice", h.VoiceSearch)
		p.GET("/quote", h.Quote)
	}

	if deps.Driver != nil {
		h := handlers.NewDriverHandler(deps.Driver)
		d := api.Group("/driver")
		d.GET("", h.Snapshot)
		d.POST("/online", h.GoOnline)
		d.POST("/offline", h.GoOffline)
		d.POST("/offers/accept", h.Accept)
		d.POST("/offers/ignore", h.Ignore)
		d.POST("/arrival", h.ConfirmArrival)
		d.PUT("/otp", h.EnterOTP)
		d.POST("/trip/start", h.StartTrip)
		d.GET("/route", h.Route)
		d.POST("/account/open", h.OpenAccount)
		d.POST("/account/close", h.CloseAccount)
		d.PUT("/account/profile", h.SaveProfile)
		d.POST("/account/payout", h.Payout)
		d.GET("/account/ledger", h.Ledger)
	}

	if deps.Wallet != nil {
		h := handlers.NewWalletHandler(deps.Wallet)
		api.GET("/wallet/driver", h.DriverCard)
		api.PUT("/wallet/photo", h.UpdatePhoto)
		api.PUT("/wallet/upi-qr", h.UpdateUPIQR)
	}

	if deps.Pricing != nil {
		api.GET("/fares", handlers.NewFareHandler(deps.Pricing).Quote)
	}

	if deps.PassengerCues != nil && deps.DriverCues != nil {
		api.GET("/cues/:role", handlers.NewCueHandler(deps.PassengerCues, deps.DriverCues).List)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return r
}
