package opt

import (
	"fmt"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
	"github.com/cheez95/LuckyGas-sub001/internal/vehicle"
)

// Report re-checks a finished plan from scratch: conflicts are detected from
// the routes alone, never trusted from the strategy that produced them.
// vehicles resolves route vehicle ids to their capacity; unknown ids fall
// back to the smallest class that could carry the route's load.
func Report(routes []model.Route, unscheduled []model.DeliveryRequirement, vehicles []model.VehicleSnapshot) ([]model.Conflict, map[string]float64) {
	byID := make(map[string]model.VehicleSnapshot, len(vehicles))
	for _, v := range vehicles {
		byID[v.ID] = v
	}
	var conflicts []model.Conflict
	conflicts = append(conflicts, overlapConflicts(routes)...)
	conflicts = append(conflicts, capacityConflicts(routes, byID)...)
	conflicts = append(conflicts, duplicateConflicts(routes)...)
	conflicts = append(conflicts, windowConflicts(routes)...)
	return conflicts, planMetrics(routes, unscheduled, byID)
}

// overlapConflicts flags routes sharing a driver or vehicle whose time spans
// intersect.
func overlapConflicts(routes []model.Route) []model.Conflict {
	var out []model.Conflict
	for i := 0; i < len(routes); i++ {
		for j := i + 1; j < len(routes); j++ {
			a, b := routes[i], routes[j]
			sameDriver := a.DriverID != "" && a.DriverID == b.DriverID
			sameVehicle := a.VehicleID != "" && a.VehicleID == b.VehicleID
			if !sameDriver && !sameVehicle {
				continue
			}
			if !routesOverlap(a, b) {
				continue
			}
			who := "vehicle " + a.VehicleID
			if sameDriver {
				who = "driver " + a.DriverID
			}
			out = append(out, model.Conflict{
				Kind:        model.ConflictTimeOverlap,
				RouteIDs:    []string{a.ID, b.ID},
				Description: fmt.Sprintf("routes %s and %s overlap in time for %s", a.ID, b.ID, who),
			})
		}
	}
	return out
}

func routesOverlap(a, b model.Route) bool {
	if len(a.Stops) == 0 || len(b.Stops) == 0 {
		return false
	}
	aStart, aEnd := a.Stops[0].Arrival, a.Stops[len(a.Stops)-1].Departure
	bStart, bEnd := b.Stops[0].Arrival, b.Stops[len(b.Stops)-1].Departure
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// capacityConflicts re-derives the cumulative load at every stop against the
// vehicle's ceilings.
func capacityConflicts(routes []model.Route, byID map[string]model.VehicleSnapshot) []model.Conflict {
	var out []model.Conflict
	for _, rt := range routes {
		cap := routeCapacity(rt, byID)
		var kg float64
		var cyls int
		for _, st := range rt.Stops {
			w, c := vehicle.Demand(st.Delivery)
			kg += w
			cyls += c
			if kg > cap.MaxWeightKg || cyls > cap.MaxCylinders {
				out = append(out, model.Conflict{
					Kind:        model.ConflictCapacityExceeded,
					RouteIDs:    []string{rt.ID},
					DeliveryIDs: []string{st.Delivery.ID},
					Description: fmt.Sprintf("route %s exceeds capacity at delivery %s (%.0fkg/%.0fkg, %d/%d cylinders)", rt.ID, st.Delivery.ID, kg, cap.MaxWeightKg, cyls, cap.MaxCylinders),
				})
				break
			}
		}
	}
	return out
}

func duplicateConflicts(routes []model.Route) []model.Conflict {
	seen := map[string]string{} // delivery id -> first route id
	var out []model.Conflict
	for _, rt := range routes {
		for _, st := range rt.Stops {
			if first, ok := seen[st.Delivery.ID]; ok {
				out = append(out, model.Conflict{
					Kind:        model.ConflictDuplicateStop,
					RouteIDs:    []string{first, rt.ID},
					DeliveryIDs: []string{st.Delivery.ID},
					Description: fmt.Sprintf("delivery %s assigned to routes %s and %s", st.Delivery.ID, first, rt.ID),
				})
				continue
			}
			seen[st.Delivery.ID] = rt.ID
		}
	}
	return out
}

func windowConflicts(routes []model.Route) []model.Conflict {
	var out []model.Conflict
	for _, rt := range routes {
		for _, st := range rt.Stops {
			w := st.Delivery.Window
			if w == nil {
				continue
			}
			if st.Arrival.Before(w.Start) || st.Arrival.After(w.End) {
				out = append(out, model.Conflict{
					Kind:        model.ConflictTimeWindow,
					RouteIDs:    []string{rt.ID},
					DeliveryIDs: []string{st.Delivery.ID},
					Description: fmt.Sprintf("delivery %s arrival %s outside window %s-%s", st.Delivery.ID, st.Arrival.Format("15:04"), w.Start.Format("15:04"), w.End.Format("15:04")),
				})
			}
		}
	}
	return out
}

// planMetrics summarizes a plan. Balance is 100 for perfectly even stop
// counts and shrinks toward 0 as the spread grows.
func planMetrics(routes []model.Route, unscheduled []model.DeliveryRequirement, byID map[string]model.VehicleSnapshot) map[string]float64 {
	m := map[string]float64{
		"routes":      float64(len(routes)),
		"unscheduled": float64(len(unscheduled)),
	}
	var dist, util float64
	var stops int
	var counts []float64
	for _, rt := range routes {
		dist += rt.TotalDistanceKm
		stops += len(rt.Stops)
		counts = append(counts, float64(len(rt.Stops)))
		cap := routeCapacity(rt, byID)
		if cap.MaxWeightKg > 0 {
			util += rt.TotalWeightKg / cap.MaxWeightKg
		}
	}
	m["deliveries_scheduled"] = float64(stops)
	m["total_distance_km"] = dist
	if len(routes) > 0 {
		m["avg_utilization_pct"] = util / float64(len(routes)) * 100
		m["balance_score"] = 100.0 / (1.0 + variance(counts))
	}
	return m
}

func routeCapacity(rt model.Route, byID map[string]model.VehicleSnapshot) vehicle.Capacity {
	if v, ok := byID[rt.VehicleID]; ok {
		return vehicleCap(v)
	}
	var deliveries []model.DeliveryRequirement
	for _, st := range rt.Stops {
		deliveries = append(deliveries, st.Delivery)
	}
	t, _ := vehicle.RequiredType(deliveries)
	return vehicle.CapacityOf(t)
}

// finishResult attaches conflicts, metrics and plan-level warnings to a
// strategy result.
func finishResult(p *problem, res *model.OptimizationResult) {
	vehicles := make([]model.VehicleSnapshot, 0, len(p.pairs))
	for _, pr := range p.pairs {
		vehicles = append(vehicles, pr.vehicle)
	}
	res.Conflicts, res.Metrics = Report(res.Routes, res.Unscheduled, vehicles)
	res.Metrics["elapsed_seconds"] = res.ElapsedSeconds
	if len(res.Unscheduled) > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d deliveries could not be scheduled with the available fleet", len(res.Unscheduled)))
	}
	if _, fallback := vehicle.RequiredType(deliveriesOf(p)); fallback {
		res.Warnings = append(res.Warnings, "total demand exceeds the largest vehicle class; plan requires multiple routes")
	}
}

func deliveriesOf(p *problem) []model.DeliveryRequirement {
	out := make([]model.DeliveryRequirement, 0, len(p.nodes))
	for _, n := range p.nodes {
		out = append(out, n.d)
	}
	return out
}
