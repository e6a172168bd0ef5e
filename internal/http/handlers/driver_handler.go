// README: Driver handlers for going online, offers, navigation, OTP and the account panel.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"oortgo/internal/modules/driver"
	"oortgo/internal/modules/wallet"
)

type DriverHandler struct {
	flow *driver.Flow
}

func NewDriverHandler(flow *driver.Flow) *DriverHandler {
	return &DriverHandler{flow: flow}
}

type otpReq struct {
	Code string `json:"code"`
}

func (h *DriverHandler) respond(c *gin.Context, err error) {
	if err != nil {
		writeFlowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, h.flow.Snapshot())
}

// Snapshot handles GET /api/driver.
func (h *DriverHandler) Snapshot(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.flow.Snapshot())
}

func (h *DriverHandler) GoOnline(c *gin.Context) {
	h.respond(c, h.flow.GoOnline())
}

func (h *DriverHandler) GoOffline(c *gin.Context) {
	h.respond(c, h.flow.GoOffline())
}

func (h *DriverHandler) Accept(c *gin.Context) {
	h.respond(c, h.flow.Accept())
}

func (h *DriverHandler) Ignore(c *gin.Context) {
	h.respond(c, h.flow.Ignore())
}

func (h *DriverHandler) ConfirmArrival(c *gin.Context) {
	h.respond(c, h.flow.ConfirmArrival())
}

// EnterOTP handles PUT /api/driver/otp with the digits typed so far.
func (h *DriverHandler) EnterOTP(c *gin.Context) {
	var req otpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	h.respond(c, h.flow.EnterOTP(req.Code))
}

func (h *DriverHandler) StartTrip(c *gin.Context) {
	h.respond(c, h.flow.StartTrip())
}

// Route handles GET /api/driver/route for the current leg.
func (h *DriverHandler) Route(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), lookupTimeout)
	defer cancel()
	r, err := h.flow.Route(ctx)
	if err != nil {
		writeFlowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

func (h *DriverHandler) OpenAccount(c *gin.Context) {
	h.respond(c, h.flow.OpenAccount())
}

func (h *DriverHandler) CloseAccount(c *gin.Context) {
	h.respond(c, h.flow.CloseAccount())
}

// SaveProfile handles PUT /api/driver/account/profile.
func (h *DriverHandler) SaveProfile(c *gin.Context) {
	var p wallet.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	h.respond(c, h.flow.SaveProfile(c.Request.Context(), p))
}

func (h *DriverHandler) Payout(c *gin.Context) {
	tx, err := h.flow.Payout(c.Request.Context())
	if err != nil {
		writeFlowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, tx)
}

// Ledger handles GET /api/driver/account/ledger.
func (h *DriverHandler) Ledger(c *gin.Context) {
	l, err := h.flow.Ledger(c.Request.Context())
	if err != nil {
		writeFlowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, l)
}
