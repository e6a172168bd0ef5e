// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"oortgo/internal/ai"
	"oortgo/internal/modules/driver"
	"oortgo/internal/modules/passenger"
	"oortgo/internal/modules/wallet"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeFlowError maps flow and wallet errors to HTTP statuses. Validation
// errors carry the offending field so the form can highlight it.
func writeFlowError(c *gin.Context, err error) {
	var ve wallet.ValidationError
	if errors.As(err, &ve) {
		writeJSON(c, http.StatusUnprocessableEntity, errorResponse{Error: ve.Error(), Field: ve.Field})
		return
	}
	switch {
	case errors.Is(err, passenger.ErrEmptyDestination),
		errors.Is(err, passenger.ErrUnknownVehicle),
		errors.Is(err, passenger.ErrInvalidMode),
		errors.Is(err, passenger.ErrInvalidSchedule),
		errors.Is(err, passenger.ErrSharingUnavailable),
		errors.Is(err, passenger.ErrNoSeatSelected),
		errors.Is(err, driver.ErrOTPTooLong),
		errors.Is(err, driver.ErrOTPFormat):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrNoDestination):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, passenger.ErrInvalidState),
		errors.Is(err, passenger.ErrPaymentBusy),
		errors.Is(err, passenger.ErrStale),
		errors.Is(err, driver.ErrInvalidState),
		errors.Is(err, driver.ErrNoOffer),
		errors.Is(err, driver.ErrNoActiveRide),
		errors.Is(err, driver.ErrOTPBusy),
		errors.Is(err, driver.ErrAlreadyVerified),
		errors.Is(err, driver.ErrNotVerified),
		errors.Is(err, driver.ErrSaveInProgress),
		errors.Is(err, wallet.ErrInsufficientBalance):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, passenger.ErrVoiceUnavailable),
		errors.Is(err, driver.ErrWalletNotEnabled):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
