package opt

import (
	"testing"
	"time"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
	"github.com/cheez95/LuckyGas-sub001/internal/vehicle"
)

func TestGreedySchedulesEverything(t *testing.T) {
	req := testRequest(10, model.VehicleMedium, 2)
	res := (&Greedy{}).Optimize(req, farDeadline())
	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	if len(res.Unscheduled) != 0 {
		t.Fatalf("expected 0 unscheduled, got %d", len(res.Unscheduled))
	}
	ids := scheduledIDs(res)
	if len(ids) != 10 {
		t.Fatalf("expected 10 distinct deliveries scheduled, got %d", len(ids))
	}
	for id, n := range ids {
		if n != 1 {
			t.Fatalf("delivery %s scheduled %d times", id, n)
		}
	}
	if len(res.Conflicts) != 0 {
		t.Fatalf("unexpected conflicts: %+v", res.Conflicts)
	}
}

func TestGreedyDeterministic(t *testing.T) {
	req := testRequest(12, model.VehicleMedium, 3)
	a := (&Greedy{}).Optimize(req, farDeadline())
	b := (&Greedy{}).Optimize(req, farDeadline())
	if len(a.Routes) != len(b.Routes) {
		t.Fatalf("route counts differ: %d vs %d", len(a.Routes), len(b.Routes))
	}
	for i := range a.Routes {
		if len(a.Routes[i].Stops) != len(b.Routes[i].Stops) {
			t.Fatalf("route %d stop counts differ", i)
		}
		for j := range a.Routes[i].Stops {
			if a.Routes[i].Stops[j].Delivery.ID != b.Routes[i].Stops[j].Delivery.ID {
				t.Fatalf("route %d stop %d differs: %s vs %s", i, j,
					a.Routes[i].Stops[j].Delivery.ID, b.Routes[i].Stops[j].Delivery.ID)
			}
		}
	}
}

func TestGreedyPrefixLoadWithinCapacity(t *testing.T) {
	req := testRequest(20, model.VehicleSmall, 4)
	res := (&Greedy{}).Optimize(req, farDeadline())
	for _, rt := range res.Routes {
		cap := vehicle.CapacityOf(model.VehicleSmall)
		var kg float64
		var cyls int
		for _, st := range rt.Stops {
			w, c := vehicle.Demand(st.Delivery)
			kg += w
			cyls += c
			if st.LoadKg != kg || st.LoadCylinders != cyls {
				t.Fatalf("cumulative load mismatch at %s: got %.1fkg/%d, want %.1fkg/%d",
					st.Delivery.ID, st.LoadKg, st.LoadCylinders, kg, cyls)
			}
			if kg > cap.MaxWeightKg || cyls > cap.MaxCylinders {
				t.Fatalf("route %s exceeds capacity at %s", rt.ID, st.Delivery.ID)
			}
		}
	}
}

func TestGreedyOverweightDeliveryUnscheduled(t *testing.T) {
	req := testRequest(3, model.VehicleSmall, 2)
	// 12x50kg = 600kg, more than a small truck carries
	req.Deliveries[1].Cylinders = map[model.CylinderType]int{model.Cylinder50Kg: 12}
	res := (&Greedy{}).Optimize(req, farDeadline())
	if len(res.Unscheduled) != 1 {
		t.Fatalf("expected 1 unscheduled, got %d", len(res.Unscheduled))
	}
	if res.Unscheduled[0].ID != "d01" {
		t.Fatalf("wrong delivery unscheduled: %s", res.Unscheduled[0].ID)
	}
	if len(res.Warnings) == 0 {
		t.Fatalf("expected a warning about unscheduled deliveries")
	}
}

func TestAdmitsUsesClassCapacityTable(t *testing.T) {
	req := testRequest(2, model.VehicleSmall, 1)
	// 12x50kg = 600kg, beyond the small class ceiling
	req.Deliveries[1].Cylinders = map[model.CylinderType]int{model.Cylinder50Kg: 12}
	p := newProblem(req)

	plain := model.VehicleSnapshot{ID: "v-plain", Type: model.VehicleSmall, Available: true}
	if p.admits(plain, 1) {
		t.Fatalf("small class admitted a 600kg delivery")
	}
	if !p.admits(plain, 0) {
		t.Fatalf("small class rejected a delivery it can carry")
	}

	// Explicit snapshot ceilings override the class table.
	uprated := model.VehicleSnapshot{ID: "v-uprated", Type: model.VehicleSmall, Available: true, MaxWeightKg: 800, MaxCylinders: 30}
	if !p.admits(uprated, 1) {
		t.Fatalf("explicit 800kg ceiling should admit the 600kg delivery")
	}
}

func TestGreedyHonorsRequiredVehicleType(t *testing.T) {
	req := testRequest(4, model.VehicleSmall, 2)
	req.Deliveries[0].RequiredType = model.VehicleLarge
	res := (&Greedy{}).Optimize(req, farDeadline())
	if got := scheduledIDs(res)["d00"]; got != 0 {
		t.Fatalf("delivery requiring a large vehicle landed on a small one")
	}
	if len(res.Unscheduled) != 1 || res.Unscheduled[0].ID != "d00" {
		t.Fatalf("expected d00 unscheduled, got %+v", res.Unscheduled)
	}
}

func TestGreedyTimeWindows(t *testing.T) {
	req := testRequest(6, model.VehicleMedium, 2)
	w := model.TimeWindow{
		Start: time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC),
	}
	req.Deliveries[3].Window = &w
	res := (&Greedy{}).Optimize(req, farDeadline())
	for _, rt := range res.Routes {
		for _, st := range rt.Stops {
			if st.Delivery.ID != "d03" {
				continue
			}
			if st.Arrival.Before(w.Start) || st.Arrival.After(w.End) {
				t.Fatalf("windowed stop arrives at %s, outside %s-%s",
					st.Arrival.Format("15:04"), w.Start.Format("15:04"), w.End.Format("15:04"))
			}
			return
		}
	}
	t.Fatalf("windowed delivery not scheduled: unscheduled=%v", res.Unscheduled)
}

func TestGreedyMaxStopsPerRoute(t *testing.T) {
	req := testRequest(10, model.VehicleLarge, 4)
	req.Constraints.MaxStopsPerRoute = 3
	res := (&Greedy{}).Optimize(req, farDeadline())
	for _, rt := range res.Routes {
		if len(rt.Stops) > 3 {
			t.Fatalf("route %s has %d stops, cap is 3", rt.ID, len(rt.Stops))
		}
	}
}

func TestValidateRequest(t *testing.T) {
	g := &Greedy{}
	if errs := g.Validate(&model.OptimizationRequest{}); len(errs) == 0 {
		t.Fatalf("empty request should fail validation")
	}
	req := testRequest(2, model.VehicleSmall, 1)
	if errs := g.Validate(req); len(errs) != 0 {
		t.Fatalf("valid request rejected: %v", errs)
	}
	req.Deliveries[0].Location.Lat = 95
	if errs := g.Validate(req); len(errs) == 0 {
		t.Fatalf("out-of-range latitude accepted")
	}
}
