package model

import "time"

// Plain records exchanged between the optimizer core and its callers.
// No ORM objects or SQL types cross this boundary.

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TimeWindow is a contiguous interval during which a client can receive
// a delivery.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CylinderType is a gas-cylinder size class.
type CylinderType string

const (
	Cylinder16Kg   CylinderType = "16kg"
	Cylinder20Kg   CylinderType = "20kg"
	Cylinder50Kg   CylinderType = "50kg"
	CylinderCustom CylinderType = "custom"
)

// VehicleType is a fleet size class.
type VehicleType string

const (
	VehicleSmall      VehicleType = "small"
	VehicleMedium     VehicleType = "medium"
	VehicleLarge      VehicleType = "large"
	VehicleExtraLarge VehicleType = "extra_large"
)

// LocationKind describes the delivery site and scales service time.
type LocationKind string

const (
	LocationResidential LocationKind = "residential"
	LocationCommercial  LocationKind = "commercial"
	LocationIndustrial  LocationKind = "industrial"
)

// DeliveryRequirement is one stop to schedule. Immutable input to a run.
type DeliveryRequirement struct {
	ID           string               `json:"id"`
	ClientID     string               `json:"clientId"`
	Location     GeoPoint             `json:"location"`
	Cylinders    map[CylinderType]int `json:"cylinders"`
	Window       *TimeWindow          `json:"timeWindow,omitempty"`
	RequiredType VehicleType          `json:"requiredVehicleType,omitempty"`
	Priority     int                  `json:"priority,omitempty"`
	LocationKind LocationKind         `json:"locationKind,omitempty"`
}

// DriverSnapshot is a driver as seen by the optimizer for one planning date.
// Read-only; built fresh per run and never mutated by the optimizer.
type DriverSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Available bool   `json:"available"`
}

// VehicleSnapshot is a vehicle as seen by the optimizer for one planning date.
type VehicleSnapshot struct {
	ID           string      `json:"id"`
	Type         VehicleType `json:"type"`
	MaxWeightKg  float64     `json:"maxWeightKg"`
	MaxCylinders int         `json:"maxCylinders"`
	Available    bool        `json:"available"`
}

// OptimizationMode weights the objective function.
type OptimizationMode string

const (
	ModeBalanced OptimizationMode = "balanced"
	ModeCost     OptimizationMode = "cost"
	ModeSpeed    OptimizationMode = "speed"
	ModeQuality  OptimizationMode = "quality"
)

// Constraints are the hard limits every strategy must respect.
type Constraints struct {
	MaxStopsPerRoute int           `json:"maxStopsPerRoute,omitempty"`
	MaxRouteDuration time.Duration `json:"maxRouteDuration,omitempty"`
	TravelSpeedKph   float64       `json:"travelSpeedKph,omitempty"`
	AllowOvertime    bool          `json:"allowOvertime,omitempty"`
	WorkdayStartHour int           `json:"workdayStartHour,omitempty"`
	WorkdayEndHour   int           `json:"workdayEndHour,omitempty"`
}

// OptimizationRequest aggregates everything one planning run consumes.
// Date is a single calendar day; all deliveries nominally belong to it.
type OptimizationRequest struct {
	Date          time.Time             `json:"date"`
	Deliveries    []DeliveryRequirement `json:"deliveries"`
	Drivers       []DriverSnapshot      `json:"drivers"`
	Vehicles      []VehicleSnapshot     `json:"vehicles"`
	Constraints   Constraints           `json:"constraints"`
	Mode          OptimizationMode      `json:"mode"`
	MaxIterations int                   `json:"maxIterations,omitempty"`
}

// Stop is one scheduled visit on a route. LoadKg and LoadCylinders are the
// cumulative load through this stop.
type Stop struct {
	Delivery      DeliveryRequirement `json:"delivery"`
	Arrival       time.Time           `json:"arrival"`
	Departure     time.Time           `json:"departure"`
	LegDistanceKm float64             `json:"legDistanceKm"`
	LoadKg        float64             `json:"loadKg"`
	LoadCylinders int                 `json:"loadCylinders"`
}

// Route is an ordered stop sequence assigned to one driver+vehicle pair for
// one day. Cumulative load at every prefix stays within the vehicle's
// capacity; arrival times are non-decreasing along the route.
type Route struct {
	ID              string  `json:"id"`
	DriverID        string  `json:"driverId"`
	VehicleID       string  `json:"vehicleId"`
	Stops           []Stop  `json:"stops"`
	TotalDistanceKm float64 `json:"totalDistanceKm"`
	TotalWeightKg   float64 `json:"totalWeightKg"`
	TotalCylinders  int     `json:"totalCylinders"`
	DurationMin     float64 `json:"durationMin"`
}

// ConflictKind classifies a detected schedule violation.
type ConflictKind string

const (
	ConflictTimeOverlap      ConflictKind = "time_overlap"
	ConflictCapacityExceeded ConflictKind = "capacity_exceeded"
	ConflictDuplicateStop    ConflictKind = "duplicate_assignment"
	ConflictTimeWindow       ConflictKind = "time_window_violation"
)

// Conflict is produced only by the reporter, never by a strategy.
type Conflict struct {
	Kind        ConflictKind `json:"kind"`
	RouteIDs    []string     `json:"routeIds,omitempty"`
	DeliveryIDs []string     `json:"deliveryIds,omitempty"`
	Description string       `json:"description"`
}

// OptimizationResult is created once per run and returned by value.
type OptimizationResult struct {
	Success        bool                  `json:"success"`
	Algorithm      string                `json:"algorithm"`
	Routes         []Route               `json:"routes"`
	Metrics        map[string]float64    `json:"metrics"`
	Conflicts      []Conflict            `json:"conflicts"`
	Unscheduled    []DeliveryRequirement `json:"unscheduled"`
	Warnings       []string              `json:"warnings"`
	Errors         []string              `json:"errors,omitempty"`
	ElapsedSeconds float64               `json:"elapsedSeconds"`
	// InternalError marks failures inside the optimizer itself, as opposed
	// to request validation failures. Not serialized.
	InternalError bool `json:"-"`
}

// Schedule is a persisted optimization outcome for one plan date.
type Schedule struct {
	ID        string             `json:"id"`
	PlanDate  string             `json:"planDate"`
	Algorithm string             `json:"algorithm"`
	Result    OptimizationResult `json:"result"`
	CreatedAt time.Time          `json:"createdAt"`
}
