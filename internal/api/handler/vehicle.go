package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voltroute/voltroute/internal/api/models"
	"github.com/voltroute/voltroute/internal/api/response"
	"github.com/voltroute/voltroute/internal/vehicle"
)

// VehicleHandler handles vehicle catalog endpoints.
type VehicleHandler struct {
	catalog *vehicle.Catalog
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(catalog *vehicle.Catalog) *VehicleHandler {
	return &VehicleHandler{catalog: catalog}
}

// ListVehicles handles GET /v1/vehicles.
func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	profiles := h.catalog.List()

	vehicles := make([]models.VehicleProfile, 0, len(profiles))
	for _, p := range profiles {
		vehicles = append(vehicles, toVehicleProfile(p))
	}

	response.JSON(w, r, http.StatusOK, models.VehicleListResponse{Vehicles: vehicles})
}

// GetVehicle handles GET /v1/vehicles/{vehicleId}.
func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "vehicleId")

	profile, err := h.catalog.Get(id)
	if err != nil {
		response.NotFound(w, r, "vehicle not found")
		return
	}

	response.JSON(w, r, http.StatusOK, toVehicleProfile(profile))
}

func toVehicleProfile(p vehicle.Profile) models.VehicleProfile {
	return models.VehicleProfile{
		ID:         p.ID,
		Label:      p.Label,
		BatteryKwh: p.BatteryKwh,
		KwhPerMile: p.KwhPerMile,
		RangeMiles: p.RangeMiles,
	}
}
