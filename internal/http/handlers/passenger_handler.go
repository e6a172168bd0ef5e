// README: Passenger booking handlers; every mutation answers with the new snapshot.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"oortgo/internal/modules/passenger"
	"oortgo/internal/types"
)

// lookupTimeout bounds geocoding, availability and voice lookups made on behalf of a request.
const lookupTimeout = 10 * time.Second

type PassengerHandler struct {
	flow *passenger.Flow
}

func NewPassengerHandler(flow *passenger.Flow) *PassengerHandler {
	return &PassengerHandler{flow: flow}
}

type labelReq struct {
	Label string `json:"label"`
}

type vehicleReq struct {
	Vehicle string `json:"vehicle"`
}

type modeReq struct {
	Mode string `json:"mode"`
}

type scheduleReq struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type voiceReq struct {
	Utterance string `json:"utterance"`
}

// parseVehicle keeps unrecognised input as is so the flow rejects it.
func parseVehicle(s string) types.VehicleClass {
	if class := types.ParseVehicleClass(s); class != "" {
		return class
	}
	return types.VehicleClass(s)
}

func (h *PassengerHandler) respond(c *gin.Context, err error) {
	if err != nil {
		writeFlowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, h.flow.Snapshot())
}

// Snapshot handles GET /api/passenger.
func (h *PassengerHandler) Snapshot(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.flow.Snapshot())
}

// StartSearch handles POST /api/passenger/search; an optional vehicle preselects a class.
func (h *PassengerHandler) StartSearch(c *gin.Context) {
	var req vehicleReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	if strings.TrimSpace(req.Vehicle) == "" {
		h.respond(c, h.flow.StartSearch())
		return
	}
	h.respond(c, h.flow.StartSearchWith(parseVehicle(req.Vehicle)))
}

func (h *PassengerHandler) SetPickup(c *gin.Context) {
	var req labelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	h.respond(c, h.flow.SetPickup(req.Label))
}

func (h *PassengerHandler) SetDestination(c *gin.Context) {
	var req labelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	h.respond(c, h.flow.SetDestination(req.Label))
}

func (h *PassengerHandler) Swap(c *gin.Context) {
	h.respond(c, h.flow.SwapLocations())
}

// SubmitDestination geocodes and routes the typed destination.
func (h *PassengerHandler) SubmitDestination(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), lookupTimeout)
	defer cancel()
	h.respond(c, h.flow.SubmitDestination(ctx))
}

func (h *PassengerHandler) OpenSchedule(c *gin.Context) {
	h.respond(c, h.flow.OpenSchedule())
}

func (h *PassengerHandler) SetSchedule(c *gin.Context) {
	var req scheduleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	h.respond(c, h.flow.SetSchedule(req.Date, req.Time))
}

func (h *PassengerHandler) ClearSchedule(c *gin.Context) {
	h.respond(c, h.flow.ClearSchedule())
}

func (h *PassengerHandler) SelectVehicle(c *gin.Context) {
	var req vehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	h.respond(c, h.flow.SelectVehicle(parseVehicle(req.Vehicle)))
}

func (h *PassengerHandler) SetMode(c *gin.Context) {
	var req modeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	mode := types.BookingMode(strings.ToUpper(strings.TrimSpace(req.Mode)))
	h.respond(c, h.flow.SetBookingMode(mode))
}

// RefreshAvailability handles POST /api/passenger/availability.
func (h *PassengerHandler) RefreshAvailability(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), lookupTimeout)
	defer cancel()
	a, err := h.flow.RefreshAvailability(ctx)
	if err != nil {
		writeFlowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, a)
}

func (h *PassengerHandler) ConfirmVehicle(c *gin.Context) {
	h.respond(c, h.flow.ConfirmVehicle())
}

// ToggleSeat handles POST /api/passenger/seats/:id/toggle.
func (h *PassengerHandler) ToggleSeat(c *gin.Context) {
	changed, err := h.flow.ToggleSeat(c.Param("id"))
	if err != nil {
		writeFlowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"changed": changed, "state": h.flow.Snapshot()})
}

func (h *PassengerHandler) ConfirmBooking(c *gin.Context) {
	h.respond(c, h.flow.ConfirmBooking())
}

func (h *PassengerHandler) OpenPayment(c *gin.Context) {
	panel, err := h.flow.OpenPayment()
	if err != nil {
		writeFlowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, panel)
}

func (h *PassengerHandler) Pay(c *gin.Context) {
	h.respond(c, h.flow.Pay())
}

func (h *PassengerHandler) ClosePayment(c *gin.Context) {
	h.respond(c, h.flow.ClosePayment())
}

func (h *PassengerHandler) Cancel(c *gin.Context) {
	h.respond(c, h.flow.Cancel())
}

func (h *PassengerHandler) Back(c *gin.Context) {
	h.respond(c, h.flow.Back())
}

// VoiceSearch handles POST /api/passenger/voice.
func (h *PassengerHandler) VoiceSearch(c *gin.Context) {
	var req voiceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Utterance = strings.TrimSpace(req.Utterance)
	if req.Utterance == "" {
		writeError(c, http.StatusBadRequest, "missing utterance")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), lookupTimeout)
	defer cancel()
	intent, err := h.flow.VoiceSearch(ctx, req.Utterance)
	if err != nil {
		writeFlowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"intent": intent, "state": h.flow.Snapshot()})
}

func (h *PassengerHandler) Quote(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.flow.Quote())
}
