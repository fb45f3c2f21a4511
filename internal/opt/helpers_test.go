package opt

import (
	"fmt"
	"time"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
)

var planDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

// scatteredDeliveries lays n residential 2x16kg deliveries on a small grid
// around central Taipei.
func scatteredDeliveries(n int) []model.DeliveryRequirement {
	out := make([]model.DeliveryRequirement, n)
	for i := 0; i < n; i++ {
		out[i] = model.DeliveryRequirement{
			ID:       fmt.Sprintf("d%02d", i),
			ClientID: fmt.Sprintf("c%02d", i),
			Location: model.GeoPoint{
				Lat: 25.03 + float64(i%5)*0.008,
				Lng: 121.50 + float64(i/5)*0.008,
			},
			Cylinders:    map[model.CylinderType]int{model.Cylinder16Kg: 2},
			LocationKind: model.LocationResidential,
		}
	}
	return out
}

func fleet(n int, vt model.VehicleType) ([]model.DriverSnapshot, []model.VehicleSnapshot) {
	var drivers []model.DriverSnapshot
	var vehicles []model.VehicleSnapshot
	for i := 0; i < n; i++ {
		drivers = append(drivers, model.DriverSnapshot{
			ID: fmt.Sprintf("drv%d", i), Name: fmt.Sprintf("Driver %d", i), Available: true,
		})
		vehicles = append(vehicles, model.VehicleSnapshot{
			ID: fmt.Sprintf("veh%d", i), Type: vt, Available: true,
		})
	}
	return drivers, vehicles
}

func testRequest(n int, vt model.VehicleType, pairs int) *model.OptimizationRequest {
	drivers, vehicles := fleet(pairs, vt)
	return &model.OptimizationRequest{
		Date:       planDate,
		Deliveries: scatteredDeliveries(n),
		Drivers:    drivers,
		Vehicles:   vehicles,
		Mode:       model.ModeBalanced,
	}
}

func scheduledIDs(res *model.OptimizationResult) map[string]int {
	ids := map[string]int{}
	for _, rt := range res.Routes {
		for _, st := range rt.Stops {
			ids[st.Delivery.ID]++
		}
	}
	return ids
}

func farDeadline() time.Time { return time.Now().Add(30 * time.Second) }
