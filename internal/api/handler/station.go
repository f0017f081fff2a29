package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/voltroute/voltroute/internal/api/models"
	"github.com/voltroute/voltroute/internal/api/response"
	"github.com/voltroute/voltroute/internal/stations"
)

// StationHandler handles charging-station lookup endpoints.
type StationHandler struct {
	stations *stations.Service
}

// NewStationHandler creates a new StationHandler.
func NewStationHandler(svc *stations.Service) *StationHandler {
	return &StationHandler{stations: svc}
}

// NearbyStations handles GET /v1/stations/nearby.
func (h *StationHandler) NearbyStations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)

	var fieldErrors []models.FieldError
	if latErr != nil || lat < -90 || lat > 90 {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "lat", Message: "must be between -90 and 90", Code: "OUT_OF_RANGE"})
	}
	if lonErr != nil || lon < -180 || lon > 180 {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "lon", Message: "must be between -180 and 180", Code: "OUT_OF_RANGE"})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid coordinates", fieldErrors)
		return
	}

	query := stations.NearbyQuery{Lat: lat, Lon: lon}

	if raw := q.Get("radiusMiles"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 || radius > 100 {
			response.BadRequest(w, r, "radiusMiles must be between 0 and 100", []models.FieldError{
				{Field: "radiusMiles", Message: "must be between 0 and 100", Code: "OUT_OF_RANGE"},
			})
			return
		}
		query.RadiusMiles = radius
	}

	if raw := q.Get("maxResults"); raw != "" {
		maxResults, err := strconv.Atoi(raw)
		if err != nil || maxResults < 1 || maxResults > 200 {
			response.BadRequest(w, r, "maxResults must be between 1 and 200", []models.FieldError{
				{Field: "maxResults", Message: "must be between 1 and 200", Code: "OUT_OF_RANGE"},
			})
			return
		}
		query.MaxResults = maxResults
	}

	if raw := q.Get("amenities"); raw != "" {
		query.Amenities = strings.Split(raw, ",")
	}

	found := h.stations.FindNear(r.Context(), query)
	response.JSON(w, r, http.StatusOK, models.StationListResponse{Stations: toStationSummaries(found)})
}
