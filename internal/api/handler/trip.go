// Package handler provides HTTP handlers for the VoltRoute API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/voltroute/voltroute/internal/api/models"
	"github.com/voltroute/voltroute/internal/api/response"
	"github.com/voltroute/voltroute/internal/energy"
	"github.com/voltroute/voltroute/internal/geocoding"
	"github.com/voltroute/voltroute/internal/routing"
	"github.com/voltroute/voltroute/internal/stations"
	"github.com/voltroute/voltroute/internal/trip"
	"github.com/voltroute/voltroute/internal/vehicle"
)

// TripHandler handles trip planning and history endpoints.
type TripHandler struct {
	planner *trip.Planner
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(planner *trip.Planner) *TripHandler {
	return &TripHandler{planner: planner}
}

// PlanTrip handles POST /v1/trips/plan.
func (h *TripHandler) PlanTrip(w http.ResponseWriter, r *http.Request) {
	var req models.TripPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON request body", nil)
		return
	}

	if fieldErrors := validatePlanRequest(req); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid trip parameters", fieldErrors)
		return
	}

	planReq := trip.PlanRequest{
		Origin:            req.Origin,
		Destination:       req.Destination,
		VehicleID:         req.VehicleID,
		StartingChargePct: req.StartingChargePct,
		Amenities:         req.Amenities,
		UserID:            req.UserID,
	}
	if req.BatteryHealthPct != nil {
		planReq.BatteryHealthPct = *req.BatteryHealthPct
	}
	if req.StationRadiusMi != nil {
		planReq.StationRadiusMiles = *req.StationRadiusMi
	}

	plan, err := h.planner.Plan(r.Context(), planReq)
	if err != nil {
		writePlanError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toTripPlanResponse(plan))
}

// TripHistory handles GET /v1/trips.
func (h *TripHandler) TripHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		response.BadRequest(w, r, "userId query parameter is required", []models.FieldError{
			{Field: "userId", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			response.BadRequest(w, r, "limit must be an integer between 1 and 100", []models.FieldError{
				{Field: "limit", Message: "must be between 1 and 100", Code: "OUT_OF_RANGE"},
			})
			return
		}
		limit = parsed
	}

	records, err := h.planner.History(r.Context(), userID, limit)
	if err != nil {
		response.InternalError(w, r, "failed to load trip history")
		return
	}

	entries := make([]models.TripHistoryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, models.TripHistoryEntry{
			TripID:            rec.ID,
			Origin:            rec.Origin,
			Destination:       rec.Destination,
			VehicleID:         rec.VehicleID,
			StartingChargePct: rec.StartingChargePct,
			CreatedAt:         models.Timestamp(rec.CreatedAt),
		})
	}

	response.JSON(w, r, http.StatusOK, models.TripHistoryResponse{Trips: entries})
}

func validatePlanRequest(req models.TripPlanRequest) []models.FieldError {
	var fieldErrors []models.FieldError
	if req.Origin == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "origin", Message: "required", Code: "REQUIRED"})
	}
	if req.Destination == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "destination", Message: "required", Code: "REQUIRED"})
	}
	if req.VehicleID == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "vehicleId", Message: "required", Code: "REQUIRED"})
	}
	return fieldErrors
}

// writePlanError maps pipeline errors to problem responses. Validation
// failures are the caller's fault; provider outages surface as 503.
func writePlanError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, vehicle.ErrVehicleNotFound):
		response.BadRequest(w, r, "unknown vehicle", []models.FieldError{
			{Field: "vehicleId", Message: "unknown vehicle", Code: "UNKNOWN_VEHICLE"},
		})
	case errors.Is(err, energy.ErrInvalidCharge):
		response.BadRequest(w, r, err.Error(), []models.FieldError{
			{Field: "startingChargePct", Message: "must be between 10 and 100", Code: "OUT_OF_RANGE"},
		})
	case errors.Is(err, energy.ErrInvalidHealth):
		response.BadRequest(w, r, err.Error(), []models.FieldError{
			{Field: "batteryHealthPct", Message: "must be between 70 and 100", Code: "OUT_OF_RANGE"},
		})
	case errors.Is(err, geocoding.ErrNotFound):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, routing.ErrNoRouteFound):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, routing.ErrRateLimitExceeded),
		errors.Is(err, routing.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "routing provider unavailable, please try again later")
	default:
		response.InternalError(w, r, "trip planning failed")
	}
}

func toTripPlanResponse(plan *trip.Plan) models.TripPlanResponse {
	routes := make([]models.TripRoute, 0, len(plan.Routes))
	for _, rc := range plan.Routes {
		conds := make([]models.ConditionSample, 0, len(rc.Conditions))
		for _, s := range rc.Conditions {
			conds = append(conds, models.ConditionSample{
				Point:        models.Point{Lat: s.Lat, Lon: s.Lon},
				TempF:        s.TempF,
				Sky:          s.Sky,
				Efficiency:   s.Impact.Efficiency,
				RangeLossPct: s.Impact.RangeLossPct,
				ChargeRate:   s.Impact.ChargeRate,
				Advisory:     s.Impact.Summary,
			})
		}

		geometry := make([]models.Point, 0, len(rc.Geometry))
		for _, c := range rc.Geometry {
			geometry = append(geometry, models.Point{Lat: c.Lat, Lon: c.Lon})
		}

		routes = append(routes, models.TripRoute{
			ID:              rc.ID,
			Label:           rc.Label,
			Summary:         rc.Summary,
			DistanceMiles:   rc.DistanceMiles,
			DurationMinutes: rc.DurationMinutes,
			BatteryUsagePct: rc.BatteryUsagePct,
			ChargingStops:   rc.ChargingStops,
			KwhPerMile:      rc.KwhPerMile,
			EnergyKwh:       rc.EnergyKwh,
			EstimatedCost:   rc.CostUSD,
			Conditions:      conds,
			Geometry:        geometry,
		})
	}

	return models.TripPlanResponse{
		TripID: plan.ID,
		Origin: models.ResolvedPlace{
			Query:       plan.Origin,
			DisplayName: plan.OriginCoords.DisplayName,
			Point:       models.Point{Lat: plan.OriginCoords.Lat, Lon: plan.OriginCoords.Lon},
		},
		Destination: models.ResolvedPlace{
			Query:       plan.Destination,
			DisplayName: plan.DestinationCoords.DisplayName,
			Point:       models.Point{Lat: plan.DestinationCoords.Lat, Lon: plan.DestinationCoords.Lon},
		},
		Vehicle:           toVehicleProfile(plan.Vehicle),
		StartingChargePct: plan.StartingChargePct,
		Routes:            routes,
		Stations:          toStationSummaries(plan.Stations),
		GeneratedAt:       models.Timestamp(plan.GeneratedAt),
	}
}

func toStationSummaries(list []stations.Station) []models.StationSummary {
	summaries := make([]models.StationSummary, 0, len(list))
	for _, st := range list {
		summaries = append(summaries, models.StationSummary{
			ID:            st.ProviderID,
			Name:          st.Name,
			Point:         models.Point{Lat: st.Lat, Lon: st.Lon},
			Address:       st.Address,
			PowerKW:       st.PowerKW,
			Connector:     st.Connector,
			Network:       st.Network,
			DistanceMiles: st.DistanceMiles,
			Amenities:     st.Amenities,
			Accessible:    st.Accessible,
			PricePerKwh:   st.PricePerKwh,
			Rating:        st.Rating,
			Available:     st.Available,
			TotalStalls:   st.TotalStalls,
		})
	}
	return summaries
}
