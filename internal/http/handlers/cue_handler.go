// README: Cue feed handler; clients poll it to speak what the flows announced.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"oortgo/internal/modules/notify"
)

type CueHandler struct {
	passenger *notify.Recorder
	driver    *notify.Recorder
}

func NewCueHandler(passenger, driver *notify.Recorder) *CueHandler {
	return &CueHandler{passenger: passenger, driver: driver}
}

// List handles GET /api/cues/:role?since=N and returns cues from index N on.
func (h *CueHandler) List(c *gin.Context) {
	var rec *notify.Recorder
	switch c.Param("role") {
	case "passenger":
		rec = h.passenger
	case "driver":
		rec = h.driver
	default:
		writeError(c, http.StatusNotFound, "unknown role")
		return
	}
	since, err := strconv.Atoi(c.DefaultQuery("since", "0"))
	if err != nil || since < 0 {
		writeError(c, http.StatusBadRequest, "since must be a non-negative integer")
		return
	}
	cues, next := rec.Since(since)
	writeJSON(c, http.StatusOK, map[string]any{"cues": cues, "next": next})
}
