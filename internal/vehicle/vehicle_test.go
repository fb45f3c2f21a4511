package vehicle

import (
	"testing"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
)

func deliveriesOf(ct model.CylinderType, qtyEach, n int) []model.DeliveryRequirement {
	out := make([]model.DeliveryRequirement, n)
	for i := range out {
		out[i] = model.DeliveryRequirement{Cylinders: map[model.CylinderType]int{ct: qtyEach}}
	}
	return out
}

func TestRequiredTypeNeverUndersizes(t *testing.T) {
	cases := []struct {
		name string
		ds   []model.DeliveryRequirement
	}{
		{"one 20kg", deliveriesOf(model.Cylinder20Kg, 1, 1)},
		{"ten 20kg", deliveriesOf(model.Cylinder20Kg, 1, 10)},
		{"thirty 50kg", deliveriesOf(model.Cylinder50Kg, 1, 30)},
		{"mixed heavy", deliveriesOf(model.Cylinder50Kg, 3, 12)},
	}
	for _, c := range cases {
		typ, fallback := RequiredType(c.ds)
		if fallback {
			t.Fatalf("%s: unexpected fallback", c.name)
		}
		w, n := TotalDemand(c.ds)
		cap := CapacityOf(typ)
		if w > cap.MaxWeightKg || n > cap.MaxCylinders {
			t.Fatalf("%s: class %s undersized for %.0fkg/%d cylinders", c.name, typ, w, n)
		}
	}
}

func TestRequiredTypeSmallestSufficientClass(t *testing.T) {
	// 200kg / 10 cylinders fits small (500kg / 20).
	typ, _ := RequiredType(deliveriesOf(model.Cylinder20Kg, 1, 10))
	if typ != model.VehicleSmall {
		t.Fatalf("want small, got %s", typ)
	}
	// 600kg exceeds small, fits medium.
	typ, _ = RequiredType(deliveriesOf(model.Cylinder20Kg, 30, 1))
	if typ != model.VehicleMedium {
		t.Fatalf("want medium, got %s", typ)
	}
}

func TestRequiredTypeFallback(t *testing.T) {
	// 100 x 50kg = 5000kg exceeds every class.
	typ, fallback := RequiredType(deliveriesOf(model.Cylinder50Kg, 100, 1))
	if typ != model.VehicleExtraLarge {
		t.Fatalf("want extra_large fallback, got %s", typ)
	}
	if !fallback {
		t.Fatalf("fallback flag must be set when no class suffices")
	}
}

func TestCanHandleAdditional(t *testing.T) {
	d := model.DeliveryRequirement{Cylinders: map[model.CylinderType]int{model.Cylinder20Kg: 1}}
	if !CanHandleAdditional(model.VehicleSmall, 480, 19, d) {
		t.Fatalf("500kg/20 ceiling should admit 480+20kg and 19+1 cylinders")
	}
	if CanHandleAdditional(model.VehicleSmall, 490, 10, d) {
		t.Fatalf("weight dimension should reject 490+20kg")
	}
	if CanHandleAdditional(model.VehicleSmall, 100, 20, d) {
		t.Fatalf("count dimension should reject 20+1 cylinders")
	}
}

func TestFuelConsumptionLoadPenalty(t *testing.T) {
	empty, _ := FuelConsumption(model.VehicleMedium, 100, 0)
	full, _ := FuelConsumption(model.VehicleMedium, 100, 1)
	if full <= empty {
		t.Fatalf("full load must burn more fuel: empty=%.2f full=%.2f", empty, full)
	}
	// 20% efficiency loss means 25% more liters.
	if ratio := full / empty; ratio < 1.24 || ratio > 1.26 {
		t.Fatalf("unexpected penalty ratio %.3f", ratio)
	}
}

func TestDeliveryCostComponents(t *testing.T) {
	c0 := DeliveryCost(model.VehicleSmall, 0, 0, 0)
	if c0 != 0 {
		t.Fatalf("zero trip should cost zero, got %.2f", c0)
	}
	c1 := DeliveryCost(model.VehicleSmall, 10, 0.5, 3)
	c2 := DeliveryCost(model.VehicleSmall, 10, 0.5, 4)
	if c2-c1 != fixedStopCost {
		t.Fatalf("one extra stop should add the fixed stop cost, got %.2f", c2-c1)
	}
}
