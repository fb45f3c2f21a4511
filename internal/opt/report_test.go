package opt

import (
	"testing"
	"time"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
}

func stop(id string, arr, dep time.Time) model.Stop {
	return model.Stop{
		Delivery: model.DeliveryRequirement{
			ID:        id,
			Cylinders: map[model.CylinderType]int{model.Cylinder16Kg: 1},
		},
		Arrival:   arr,
		Departure: dep,
	}
}

func TestReportDetectsVehicleOverlap(t *testing.T) {
	routes := []model.Route{
		{ID: "r1", DriverID: "a", VehicleID: "v1", Stops: []model.Stop{stop("d1", at(9, 0), at(9, 15)), stop("d2", at(10, 0), at(10, 15))}},
		{ID: "r2", DriverID: "b", VehicleID: "v1", Stops: []model.Stop{stop("d3", at(9, 30), at(9, 45))}},
	}
	conflicts, _ := Report(routes, nil, nil)
	found := false
	for _, c := range conflicts {
		if c.Kind == model.ConflictTimeOverlap {
			found = true
		}
	}
	if !found {
		t.Fatalf("same vehicle with overlapping spans not flagged: %+v", conflicts)
	}
}

func TestReportIgnoresDisjointRoutes(t *testing.T) {
	routes := []model.Route{
		{ID: "r1", DriverID: "a", VehicleID: "v1", Stops: []model.Stop{stop("d1", at(9, 0), at(9, 30))}},
		{ID: "r2", DriverID: "a", VehicleID: "v1", Stops: []model.Stop{stop("d2", at(10, 0), at(10, 30))}},
	}
	conflicts, _ := Report(routes, nil, nil)
	for _, c := range conflicts {
		if c.Kind == model.ConflictTimeOverlap {
			t.Fatalf("disjoint routes flagged as overlapping")
		}
	}
}

func TestReportDetectsDuplicateAssignment(t *testing.T) {
	routes := []model.Route{
		{ID: "r1", VehicleID: "v1", Stops: []model.Stop{stop("dup", at(9, 0), at(9, 15))}},
		{ID: "r2", VehicleID: "v2", Stops: []model.Stop{stop("dup", at(11, 0), at(11, 15))}},
	}
	conflicts, _ := Report(routes, nil, nil)
	found := false
	for _, c := range conflicts {
		if c.Kind == model.ConflictDuplicateStop && c.DeliveryIDs[0] == "dup" {
			found = true
		}
	}
	if !found {
		t.Fatalf("duplicate assignment not flagged: %+v", conflicts)
	}
}

func TestReportDetectsCapacityExceeded(t *testing.T) {
	heavy := model.Stop{
		Delivery: model.DeliveryRequirement{
			ID:        "big",
			Cylinders: map[model.CylinderType]int{model.Cylinder50Kg: 15},
		},
		Arrival: at(9, 0), Departure: at(9, 30),
	}
	routes := []model.Route{{ID: "r1", VehicleID: "v1", Stops: []model.Stop{heavy}}}
	vehicles := []model.VehicleSnapshot{{ID: "v1", Type: model.VehicleSmall}}
	conflicts, _ := Report(routes, nil, vehicles)
	found := false
	for _, c := range conflicts {
		if c.Kind == model.ConflictCapacityExceeded {
			found = true
		}
	}
	if !found {
		t.Fatalf("750kg on a small truck not flagged: %+v", conflicts)
	}
}

func TestReportDetectsWindowViolation(t *testing.T) {
	w := model.TimeWindow{Start: at(14, 0), End: at(16, 0)}
	st := stop("late", at(17, 0), at(17, 15))
	st.Delivery.Window = &w
	routes := []model.Route{{ID: "r1", VehicleID: "v1", Stops: []model.Stop{st}}}
	conflicts, _ := Report(routes, nil, nil)
	found := false
	for _, c := range conflicts {
		if c.Kind == model.ConflictTimeWindow {
			found = true
		}
	}
	if !found {
		t.Fatalf("arrival past window end not flagged")
	}
}

func TestPlanMetrics(t *testing.T) {
	routes := []model.Route{
		{ID: "r1", VehicleID: "v1", TotalDistanceKm: 10, TotalWeightKg: 250,
			Stops: []model.Stop{stop("d1", at(9, 0), at(9, 15)), stop("d2", at(10, 0), at(10, 15))}},
		{ID: "r2", VehicleID: "v2", TotalDistanceKm: 6, TotalWeightKg: 100,
			Stops: []model.Stop{stop("d3", at(9, 0), at(9, 15)), stop("d4", at(10, 0), at(10, 15))}},
	}
	vehicles := []model.VehicleSnapshot{
		{ID: "v1", Type: model.VehicleSmall},
		{ID: "v2", Type: model.VehicleSmall},
	}
	unsched := []model.DeliveryRequirement{{ID: "left"}}
	_, m := Report(routes, unsched, vehicles)
	if m["total_distance_km"] != 16 {
		t.Fatalf("total distance = %.1f, want 16", m["total_distance_km"])
	}
	if m["unscheduled"] != 1 {
		t.Fatalf("unscheduled = %.0f, want 1", m["unscheduled"])
	}
	// 250/500 and 100/500 average to 35%
	if m["avg_utilization_pct"] < 34.9 || m["avg_utilization_pct"] > 35.1 {
		t.Fatalf("utilization = %.2f, want 35", m["avg_utilization_pct"])
	}
	// both routes have two stops: zero variance means a perfect score
	if m["balance_score"] != 100 {
		t.Fatalf("balance = %.1f, want 100", m["balance_score"])
	}
}
