// README: Operator lookups for drivers and vehicles.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourbook/internal/modules/fleet"
)

type FleetHandler struct {
	fleet fleet.Directory
}

func NewFleetHandler(dir fleet.Directory) *FleetHandler {
	return &FleetHandler{fleet: dir}
}

func (h *FleetHandler) ListDrivers(c *gin.Context) {
	status := fleet.DriverStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		writeError(c, http.StatusBadRequest, "bad_request", "invalid driver status")
		return
	}
	drivers, err := h.fleet.ListDrivers(c.Request.Context(), status)
	if err != nil {
		writeFleetError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"items": drivers})
}

func (h *FleetHandler) GetDriver(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	d, err := h.fleet.GetDriver(c.Request.Context(), id)
	if err != nil {
		writeFleetError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, d)
}

func (h *FleetHandler) ListVehicles(c *gin.Context) {
	status := fleet.VehicleStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		writeError(c, http.StatusBadRequest, "bad_request", "invalid vehicle status")
		return
	}
	vehicles, err := h.fleet.ListVehicles(c.Request.Context(), status)
	if err != nil {
		writeFleetError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"items": vehicles})
}

func (h *FleetHandler) GetVehicle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	v, err := h.fleet.GetVehicle(c.Request.Context(), id)
	if err != nil {
		writeFleetError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}
