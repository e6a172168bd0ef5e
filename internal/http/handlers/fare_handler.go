// README: Fare quote handler over the pricing engine.
package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"oortgo/internal/modules/pricing"
	"oortgo/internal/types"
)

type FareHandler struct {
	engine *pricing.Engine
}

func NewFareHandler(engine *pricing.Engine) *FareHandler {
	return &FareHandler{engine: engine}
}

// Quote handles GET /api/fares?distance_km=&vehicle=&seats=&mode=.
func (h *FareHandler) Quote(c *gin.Context) {
	km, err := strconv.ParseFloat(c.Query("distance_km"), 64)
	if err != nil || km < 0 || math.IsNaN(km) || math.IsInf(km, 0) {
		writeError(c, http.StatusBadRequest, "distance_km must be a finite non-negative number")
		return
	}
	class := parseVehicle(c.DefaultQuery("vehicle", string(types.VehicleSedan)))
	if !class.Valid() {
		writeError(c, http.StatusBadRequest, "unknown vehicle class")
		return
	}
	seats, err := strconv.Atoi(c.DefaultQuery("seats", "1"))
	if err != nil || seats < 1 {
		writeError(c, http.StatusBadRequest, "seats must be a positive integer")
		return
	}
	mode := types.BookingMode(strings.ToUpper(c.DefaultQuery("mode", string(types.ModeNormal))))
	if !mode.Valid() {
		writeError(c, http.StatusBadRequest, "unknown booking mode")
		return
	}
	writeJSON(c, http.StatusOK, h.engine.Quote(km, class, seats, mode))
}
