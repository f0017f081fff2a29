package models

// TripPlanRequest is the request body for planning a trip.
type TripPlanRequest struct {
	Origin            string   `json:"origin"`
	Destination       string   `json:"destination"`
	VehicleID         string   `json:"vehicleId"`
	StartingChargePct float64  `json:"startingChargePct"`
	BatteryHealthPct  *float64 `json:"batteryHealthPct,omitempty"`
	StationRadiusMi   *float64 `json:"stationRadiusMiles,omitempty"`
	Amenities         []string `json:"amenities,omitempty"`

	// UserID, when present, persists the plan for later history lookups.
	UserID string `json:"userId,omitempty"`
}

// TripPlanResponse is the assembled planning result.
type TripPlanResponse struct {
	TripID            string           `json:"tripId"`
	Origin            ResolvedPlace    `json:"origin"`
	Destination       ResolvedPlace    `json:"destination"`
	Vehicle           VehicleProfile   `json:"vehicle"`
	StartingChargePct float64          `json:"startingChargePct"`
	Routes            []TripRoute      `json:"routes"`
	Stations          []StationSummary `json:"chargingStations"`
	GeneratedAt       Timestamp        `json:"generatedAt"`
}

// ResolvedPlace pairs the caller's address text with its geocoded position.
type ResolvedPlace struct {
	Query       string `json:"query"`
	DisplayName string `json:"displayName,omitempty"`
	Point       Point  `json:"point"`
}

// TripRoute represents a single evaluated route alternative.
type TripRoute struct {
	ID              string            `json:"id"`
	Label           string            `json:"label"`
	Summary         string            `json:"summary,omitempty"`
	DistanceMiles   float64           `json:"distanceMiles"`
	DurationMinutes float64           `json:"durationMinutes"`
	BatteryUsagePct int               `json:"batteryUsagePct"`
	ChargingStops   int               `json:"chargingStops"`
	KwhPerMile      float64           `json:"kwhPerMile"`
	EnergyKwh       float64           `json:"energyKwh"`
	EstimatedCost   float64           `json:"estimatedCostUsd"`
	Conditions      []ConditionSample `json:"conditions"`
	Geometry        []Point           `json:"geometry,omitempty"`
}

// ConditionSample is the ambient condition at one route checkpoint.
type ConditionSample struct {
	Point        Point   `json:"point"`
	TempF        float64 `json:"tempF"`
	Sky          string  `json:"sky"`
	Efficiency   float64 `json:"efficiency"`
	RangeLossPct int     `json:"rangeLossPct"`
	ChargeRate   float64 `json:"chargeRate"`
	Advisory     string  `json:"advisory,omitempty"`
}

// VehicleProfile describes a catalog vehicle.
type VehicleProfile struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	BatteryKwh float64 `json:"batteryKwh"`
	KwhPerMile float64 `json:"kwhPerMile"`
	RangeMiles float64 `json:"rangeMiles"`
}

// VehicleListResponse lists the available vehicle profiles.
type VehicleListResponse struct {
	Vehicles []VehicleProfile `json:"vehicles"`
}

// StationSummary is a charging station in an API response.
type StationSummary struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Point         Point    `json:"point"`
	Address       string   `json:"address,omitempty"`
	PowerKW       float64  `json:"powerKw"`
	Connector     string   `json:"connector"`
	Network       string   `json:"network"`
	DistanceMiles float64  `json:"distanceMiles"`
	Amenities     []string `json:"amenities"`
	Accessible    bool     `json:"accessible"`
	PricePerKwh   float64  `json:"pricePerKwh"`
	Rating        float64  `json:"rating"`
	Available     int      `json:"available"`
	TotalStalls   int      `json:"totalStalls"`
}

// StationListResponse lists stations near a point.
type StationListResponse struct {
	Stations []StationSummary `json:"stations"`
}

// TripHistoryResponse lists a user's persisted trips.
type TripHistoryResponse struct {
	Trips []TripHistoryEntry `json:"trips"`
}

// TripHistoryEntry is one persisted trip in a history listing.
type TripHistoryEntry struct {
	TripID            string    `json:"tripId"`
	Origin            string    `json:"origin"`
	Destination       string    `json:"destination"`
	VehicleID         string    `json:"vehicleId"`
	StartingChargePct float64   `json:"startingChargePct"`
	CreatedAt         Timestamp `json:"createdAt"`
}
