// README: Wallet handlers for the driver card and profile images.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"oortgo/internal/modules/wallet"
)

type WalletHandler struct {
	wallet *wallet.Service
}

func NewWalletHandler(svc *wallet.Service) *WalletHandler {
	return &WalletHandler{wallet: svc}
}

type imageReq struct {
	// Data is a data URL.
	Data string `json:"data"`
}

// DriverCard handles GET /api/wallet/driver; passengers see it on the live trip.
func (h *WalletHandler) DriverCard(c *gin.Context) {
	d, err := h.wallet.DriverDetails(c.Request.Context())
	if err != nil {
		writeFlowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, d)
}

func (h *WalletHandler) UpdatePhoto(c *gin.Context) {
	h.updateImage(c, h.wallet.UpdatePhoto)
}

func (h *WalletHandler) UpdateUPIQR(c *gin.Context) {
	h.updateImage(c, h.wallet.UpdateUPIQR)
}

func (h *WalletHandler) updateImage(c *gin.Context, save func(ctx context.Context, data string) error) {
	var req imageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if !strings.HasPrefix(req.Data, "data:image/") {
		writeError(c, http.StatusBadRequest, "data must be an image data URL")
		return
	}
	if err := save(c.Request.Context(), req.Data); err != nil {
		writeFlowError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
