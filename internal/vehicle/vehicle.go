// Package vehicle holds the fleet capacity table, cylinder specifications
// and the delivery cost model.
package vehicle

import (
	"math"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
)

// Capacity describes one vehicle size class.
type Capacity struct {
	MaxWeightKg   float64
	MaxCylinders  int
	KmPerLiter    float64
	BaseCostPerKm float64
}

// CylinderSpec describes a cylinder type.
type CylinderSpec struct {
	WeightKg float64
	VolumeL  float64
}

const (
	fuelPricePerLiter = 31.5 // NTD
	fixedStopCost     = 50.0 // NTD per stop
	// efficiency degrades up to 20% at full load
	maxLoadPenalty = 0.20
)

var capacities = map[model.VehicleType]Capacity{
	model.VehicleSmall:      {MaxWeightKg: 500, MaxCylinders: 20, KmPerLiter: 12, BaseCostPerKm: 3.5},
	model.VehicleMedium:     {MaxWeightKg: 1000, MaxCylinders: 40, KmPerLiter: 9, BaseCostPerKm: 5.0},
	model.VehicleLarge:      {MaxWeightKg: 2000, MaxCylinders: 80, KmPerLiter: 6.5, BaseCostPerKm: 7.5},
	model.VehicleExtraLarge: {MaxWeightKg: 3500, MaxCylinders: 140, KmPerLiter: 5, BaseCostPerKm: 10.0},
}

// classOrder lists size classes smallest first.
var classOrder = []model.VehicleType{
	model.VehicleSmall,
	model.VehicleMedium,
	model.VehicleLarge,
	model.VehicleExtraLarge,
}

var cylinderSpecs = map[model.CylinderType]CylinderSpec{
	model.Cylinder16Kg:   {WeightKg: 16, VolumeL: 40},
	model.Cylinder20Kg:   {WeightKg: 20, VolumeL: 50},
	model.Cylinder50Kg:   {WeightKg: 50, VolumeL: 120},
	model.CylinderCustom: {WeightKg: 25, VolumeL: 60},
}

// CapacityOf returns the capacity for a size class. Unknown types resolve to
// the small class so a malformed snapshot cannot inflate feasibility.
func CapacityOf(t model.VehicleType) Capacity {
	if c, ok := capacities[t]; ok {
		return c
	}
	return capacities[model.VehicleSmall]
}

// SpecOf returns the spec for a cylinder type; unknown types use the custom
// spec.
func SpecOf(t model.CylinderType) CylinderSpec {
	if s, ok := cylinderSpecs[t]; ok {
		return s
	}
	return cylinderSpecs[model.CylinderCustom]
}

// Demand sums weight and cylinder count for one delivery.
func Demand(d model.DeliveryRequirement) (weightKg float64, cylinders int) {
	for ct, qty := range d.Cylinders {
		if qty <= 0 {
			continue
		}
		weightKg += SpecOf(ct).WeightKg * float64(qty)
		cylinders += qty
	}
	return weightKg, cylinders
}

// TotalDemand sums weight and cylinder count across a delivery group.
func TotalDemand(ds []model.DeliveryRequirement) (weightKg float64, cylinders int) {
	for _, d := range ds {
		w, c := Demand(d)
		weightKg += w
		cylinders += c
	}
	return weightKg, cylinders
}

// RequiredType returns the smallest size class whose weight and cylinder
// ceilings cover the summed demand. When no class suffices the extra-large
// class is returned with fallback=true; callers must surface a warning, the
// assignment is a deliberate lossy policy rather than a hard failure.
func RequiredType(ds []model.DeliveryRequirement) (t model.VehicleType, fallback bool) {
	w, c := TotalDemand(ds)
	for _, class := range classOrder {
		cap := capacities[class]
		if w <= cap.MaxWeightKg && c <= cap.MaxCylinders {
			return class, false
		}
	}
	return model.VehicleExtraLarge, true
}

// CanHandleAdditional reports whether a vehicle of the given class can take
// one more delivery on top of the current load, on both the weight and the
// count dimension. This is the core feasibility check for insertion.
func CanHandleAdditional(t model.VehicleType, currentKg float64, currentCylinders int, d model.DeliveryRequirement) bool {
	w, c := Demand(d)
	cap := CapacityOf(t)
	return currentKg+w <= cap.MaxWeightKg && currentCylinders+c <= cap.MaxCylinders
}

// FuelConsumption returns liters burned and fuel cost for a trip. loadPct is
// the load fraction in [0,1]; efficiency degrades linearly up to 20% at full
// load.
func FuelConsumption(t model.VehicleType, distanceKm, loadPct float64) (liters, cost float64) {
	loadPct = math.Max(0, math.Min(1, loadPct))
	eff := CapacityOf(t).KmPerLiter * (1 - maxLoadPenalty*loadPct)
	if eff <= 0 {
		return 0, 0
	}
	liters = distanceKm / eff
	return liters, liters * fuelPricePerLiter
}

// DeliveryCost is the class base cost per km plus fuel plus a fixed per-stop
// cost, the objective input for the cost and quality modes.
func DeliveryCost(t model.VehicleType, distanceKm, loadPct float64, stops int) float64 {
	_, fuel := FuelConsumption(t, distanceKm, loadPct)
	return CapacityOf(t).BaseCostPerKm*distanceKm + fuel + fixedStopCost*float64(stops)
}
