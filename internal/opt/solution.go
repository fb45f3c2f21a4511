package opt

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cheez95/LuckyGas-sub001/internal/geo"
	"github.com/cheez95/LuckyGas-sub001/internal/model"
	"github.com/cheez95/LuckyGas-sub001/internal/timewin"
	"github.com/cheez95/LuckyGas-sub001/internal/vehicle"
)

// Shared problem encoding and scheduling used by all strategy variants.

const (
	defaultSpeedKph      = 40.0
	defaultWorkdayStart  = 8
	defaultWorkdayEnd    = 18
	unscheduledPenalty   = 100000.0 // dominates every soft objective
	defaultMaxDeliveries = 500
)

type node struct {
	d        model.DeliveryRequirement
	weightKg float64
	cyls     int
	service  time.Duration
}

// pair binds one driver to one vehicle for the day.
type pair struct {
	driver  model.DriverSnapshot
	vehicle model.VehicleSnapshot
}

type objectiveWeights struct {
	distance float64
	money    float64
	duration float64
	balance  float64
}

func weightsForMode(m model.OptimizationMode) objectiveWeights {
	switch m {
	case model.ModeCost:
		return objectiveWeights{distance: 0.1, money: 1}
	case model.ModeSpeed:
		return objectiveWeights{distance: 0.5, duration: 1}
	case model.ModeQuality:
		return objectiveWeights{distance: 1, money: 0.2, balance: 1}
	default: // balanced
		return objectiveWeights{distance: 1, balance: 0.5}
	}
}

type problem struct {
	date     time.Time
	nodes    []node
	pairs    []pair
	cons     model.Constraints
	weights  objectiveWeights
	speedKph float64
	dayStart time.Time
	dayEnd   time.Time
}

var classRank = map[model.VehicleType]int{
	model.VehicleSmall:      0,
	model.VehicleMedium:     1,
	model.VehicleLarge:      2,
	model.VehicleExtraLarge: 3,
}

func newProblem(req *model.OptimizationRequest) *problem {
	p := &problem{
		date:     req.Date,
		cons:     req.Constraints,
		weights:  weightsForMode(req.Mode),
		speedKph: req.Constraints.TravelSpeedKph,
	}
	if p.speedKph <= 0 {
		p.speedKph = defaultSpeedKph
	}
	startHour := req.Constraints.WorkdayStartHour
	if startHour <= 0 {
		startHour = defaultWorkdayStart
	}
	endHour := req.Constraints.WorkdayEndHour
	if endHour <= 0 {
		endHour = defaultWorkdayEnd
	}
	y, m, d := req.Date.Date()
	loc := req.Date.Location()
	p.dayStart = time.Date(y, m, d, startHour, 0, 0, 0, loc)
	p.dayEnd = time.Date(y, m, d, endHour, 0, 0, 0, loc)

	p.nodes = make([]node, len(req.Deliveries))
	for i, del := range req.Deliveries {
		w, c := vehicle.Demand(del)
		p.nodes[i] = node{d: del, weightKg: w, cyls: c, service: timewin.EstimateServiceTime(del)}
	}

	// Largest vehicles first so a heavy delivery always has somewhere to go.
	var vehicles []model.VehicleSnapshot
	for _, v := range req.Vehicles {
		if v.Available {
			vehicles = append(vehicles, v)
		}
	}
	sort.SliceStable(vehicles, func(i, j int) bool {
		return vehicleCap(vehicles[i]).MaxWeightKg > vehicleCap(vehicles[j]).MaxWeightKg
	})
	var drivers []model.DriverSnapshot
	for _, dr := range req.Drivers {
		if dr.Available {
			drivers = append(drivers, dr)
		}
	}
	n := len(vehicles)
	if len(drivers) < n {
		n = len(drivers)
	}
	for i := 0; i < n; i++ {
		p.pairs = append(p.pairs, pair{driver: drivers[i], vehicle: vehicles[i]})
	}
	return p
}

// vehicleCap resolves a snapshot's effective capacity, falling back to its
// size class when the snapshot carries no explicit ceilings.
func vehicleCap(v model.VehicleSnapshot) vehicle.Capacity {
	cap := vehicle.CapacityOf(v.Type)
	if v.MaxWeightKg > 0 {
		cap.MaxWeightKg = v.MaxWeightKg
	}
	if v.MaxCylinders > 0 {
		cap.MaxCylinders = v.MaxCylinders
	}
	return cap
}

// admits checks the per-delivery hard constraints against a vehicle: the
// required class floor and both capacity dimensions for the node alone.
// Snapshots with explicit ceilings are checked against those; otherwise
// the class table decides via vehicle.CanHandleAdditional.
func (p *problem) admits(v model.VehicleSnapshot, ni int) bool {
	n := p.nodes[ni]
	if n.d.RequiredType != "" && classRank[v.Type] < classRank[n.d.RequiredType] {
		return false
	}
	if v.MaxWeightKg <= 0 && v.MaxCylinders <= 0 {
		return vehicle.CanHandleAdditional(v.Type, 0, 0, n.d)
	}
	cap := vehicleCap(v)
	return n.weightKg <= cap.MaxWeightKg && n.cyls <= cap.MaxCylinders
}

// planSchedule is the timing and load outcome for one ordered plan.
type planSchedule struct {
	arrivals   []time.Time
	departures []time.Time
	legKm      []float64
	totalKm    float64
	weightKg   float64
	cyls       int
	end        time.Time
}

// schedulePlan propagates travel, waiting and service time along a stop
// order and checks every hard constraint. Routes start at the first stop;
// there is no depot in the model.
func (p *problem) schedulePlan(pr pair, order []int) (planSchedule, bool) {
	s := planSchedule{
		arrivals:   make([]time.Time, len(order)),
		departures: make([]time.Time, len(order)),
		legKm:      make([]float64, len(order)),
	}
	if len(order) == 0 {
		s.end = p.dayStart
		return s, true
	}
	if p.cons.MaxStopsPerRoute > 0 && len(order) > p.cons.MaxStopsPerRoute {
		return s, false
	}
	cap := vehicleCap(pr.vehicle)
	for _, ni := range order {
		n := p.nodes[ni]
		if n.d.RequiredType != "" && classRank[pr.vehicle.Type] < classRank[n.d.RequiredType] {
			return s, false
		}
		s.weightKg += n.weightKg
		s.cyls += n.cyls
	}
	if s.weightKg > cap.MaxWeightKg || s.cyls > cap.MaxCylinders {
		return s, false
	}

	t := p.dayStart
	var prev model.GeoPoint
	for i, ni := range order {
		n := p.nodes[ni]
		var leg float64
		if i > 0 {
			leg = geo.Haversine(prev, n.d.Location)
			t = t.Add(travelTime(leg, p.speedKph))
		}
		arr := t
		if n.d.Window != nil {
			if arr.Before(n.d.Window.Start) {
				arr = n.d.Window.Start
			}
			if arr.After(n.d.Window.End) {
				return s, false
			}
		}
		dep := arr.Add(n.service)
		s.arrivals[i] = arr
		s.departures[i] = dep
		s.legKm[i] = leg
		s.totalKm += leg
		t = dep
		prev = n.d.Location
	}
	s.end = t
	if p.cons.MaxRouteDuration > 0 && s.end.Sub(p.dayStart) > p.cons.MaxRouteDuration {
		return s, false
	}
	if !p.cons.AllowOvertime && s.end.After(p.dayEnd) {
		return s, false
	}
	return s, true
}

func travelTime(km, speedKph float64) time.Duration {
	return time.Duration(km / speedKph * float64(time.Hour))
}

// solution assigns node indices to pair plans; unassigned holds the rest.
type solution struct {
	plans      [][]int
	unassigned []int
	cost       float64
}

func emptySolution(p *problem) solution {
	return solution{plans: make([][]int, len(p.pairs))}
}

func (s solution) clone() solution {
	out := solution{
		plans:      make([][]int, len(s.plans)),
		unassigned: append([]int(nil), s.unassigned...),
		cost:       s.cost,
	}
	for i := range s.plans {
		out.plans[i] = append([]int(nil), s.plans[i]...)
	}
	return out
}

func (s solution) assignedCount() int {
	n := 0
	for _, pl := range s.plans {
		n += len(pl)
	}
	return n
}

// cost evaluates the weighted objective. Unscheduled deliveries dominate
// everything else so strategies minimize them first.
func (p *problem) cost(s solution) float64 {
	var dist, money, durMin float64
	var stopCounts []float64
	for pi, pl := range s.plans {
		if len(pl) == 0 {
			continue
		}
		sched, ok := p.schedulePlan(p.pairs[pi], pl)
		if !ok {
			// infeasible plans are priced as if every stop failed
			return unscheduledPenalty * float64(len(p.nodes)+1)
		}
		dist += sched.totalKm
		durMin += sched.end.Sub(p.dayStart).Minutes()
		cap := vehicleCap(p.pairs[pi].vehicle)
		loadPct := 0.0
		if cap.MaxWeightKg > 0 {
			loadPct = sched.weightKg / cap.MaxWeightKg
		}
		money += vehicle.DeliveryCost(p.pairs[pi].vehicle.Type, sched.totalKm, loadPct, len(pl))
		stopCounts = append(stopCounts, float64(len(pl)))
	}
	w := p.weights
	c := w.distance*dist + w.money*money + w.duration*durMin
	if w.balance > 0 && len(stopCounts) > 1 {
		c += w.balance * variance(stopCounts)
	}
	c += unscheduledPenalty * float64(len(s.unassigned))
	return c
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	v := 0.0
	for _, x := range xs {
		v += (x - mean) * (x - mean)
	}
	return v / float64(len(xs))
}

// insertAt returns a copy of order with ni inserted at pos.
func insertAt(order []int, ni, pos int) []int {
	out := make([]int, 0, len(order)+1)
	out = append(out, order[:pos]...)
	out = append(out, ni)
	out = append(out, order[pos:]...)
	return out
}

// priorityOrder sorts node indices: time-windowed deliveries first (earliest
// window first), then by descending priority weight, then by id for
// determinism.
func priorityOrder(p *problem) []int {
	order := make([]int, len(p.nodes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		na, nb := p.nodes[order[a]], p.nodes[order[b]]
		aw, bw := na.d.Window != nil, nb.d.Window != nil
		if aw != bw {
			return aw
		}
		if aw && bw && !na.d.Window.Start.Equal(nb.d.Window.Start) {
			return na.d.Window.Start.Before(nb.d.Window.Start)
		}
		if na.d.Priority != nb.d.Priority {
			return na.d.Priority > nb.d.Priority
		}
		return na.d.ID < nb.d.ID
	})
	return order
}

// greedyConstruct builds a solution by cheapest feasible insertion in
// priority order. Deterministic; shared by the greedy strategy and as the
// seed for annealing.
func greedyConstruct(p *problem) solution {
	sol := emptySolution(p)
	open := make([]bool, len(p.pairs))
	scheds := make([]planSchedule, len(p.pairs))
	for _, ni := range priorityOrder(p) {
		bestPair, bestPos := -1, -1
		bestDelta := math.MaxFloat64
		for pi := range p.pairs {
			if !open[pi] {
				continue
			}
			for pos := 0; pos <= len(sol.plans[pi]); pos++ {
				cand := insertAt(sol.plans[pi], ni, pos)
				sched, ok := p.schedulePlan(p.pairs[pi], cand)
				if !ok {
					continue
				}
				delta := sched.totalKm - scheds[pi].totalKm
				if delta < bestDelta {
					bestDelta = delta
					bestPair = pi
					bestPos = pos
				}
			}
		}
		if bestPair == -1 {
			// open the first idle pair that admits the delivery
			for pi := range p.pairs {
				if open[pi] || !p.admits(p.pairs[pi].vehicle, ni) {
					continue
				}
				if _, ok := p.schedulePlan(p.pairs[pi], []int{ni}); !ok {
					continue
				}
				bestPair, bestPos = pi, 0
				open[pi] = true
				break
			}
		}
		if bestPair == -1 {
			sol.unassigned = append(sol.unassigned, ni)
			continue
		}
		sol.plans[bestPair] = insertAt(sol.plans[bestPair], ni, bestPos)
		scheds[bestPair], _ = p.schedulePlan(p.pairs[bestPair], sol.plans[bestPair])
	}
	sol.cost = p.cost(sol)
	return sol
}

// buildRoutes converts a solution into the external result shape.
func (p *problem) buildRoutes(s solution) ([]model.Route, []model.DeliveryRequirement) {
	var routes []model.Route
	for pi, pl := range s.plans {
		if len(pl) == 0 {
			continue
		}
		sched, ok := p.schedulePlan(p.pairs[pi], pl)
		if !ok {
			// strategies never hand over infeasible plans; guard anyway
			continue
		}
		rt := model.Route{
			ID:              uuid.New().String(),
			DriverID:        p.pairs[pi].driver.ID,
			VehicleID:       p.pairs[pi].vehicle.ID,
			TotalDistanceKm: sched.totalKm,
			TotalWeightKg:   sched.weightKg,
			TotalCylinders:  sched.cyls,
			DurationMin:     sched.end.Sub(p.dayStart).Minutes(),
		}
		var cumKg float64
		var cumCyl int
		for i, ni := range pl {
			n := p.nodes[ni]
			cumKg += n.weightKg
			cumCyl += n.cyls
			rt.Stops = append(rt.Stops, model.Stop{
				Delivery:      n.d,
				Arrival:       sched.arrivals[i],
				Departure:     sched.departures[i],
				LegDistanceKm: sched.legKm[i],
				LoadKg:        cumKg,
				LoadCylinders: cumCyl,
			})
		}
		routes = append(routes, rt)
	}
	var unscheduled []model.DeliveryRequirement
	for _, ni := range s.unassigned {
		unscheduled = append(unscheduled, p.nodes[ni].d)
	}
	return routes, unscheduled
}

// validateRequest performs the structural checks shared by every strategy.
// It never mutates the request.
func validateRequest(req *model.OptimizationRequest) []error {
	var errs []error
	if req == nil {
		return []error{fmt.Errorf("nil request")}
	}
	if req.Date.IsZero() {
		errs = append(errs, fmt.Errorf("date is required"))
	}
	if len(req.Deliveries) == 0 {
		errs = append(errs, fmt.Errorf("no deliveries to schedule"))
	}
	availDrivers, availVehicles := 0, 0
	for _, d := range req.Drivers {
		if d.Available {
			availDrivers++
		}
	}
	for _, v := range req.Vehicles {
		if v.Available {
			availVehicles++
		}
	}
	if availDrivers == 0 {
		errs = append(errs, fmt.Errorf("no available drivers"))
	}
	if availVehicles == 0 {
		errs = append(errs, fmt.Errorf("no available vehicles"))
	}
	day := req.Date.Format("2006-01-02")
	for _, d := range req.Deliveries {
		if err := geo.ValidateCoordinates(d.Location); err != nil {
			errs = append(errs, fmt.Errorf("delivery %s: %w", d.ID, err))
		}
		if d.Window != nil && !req.Date.IsZero() {
			if d.Window.Start.Format("2006-01-02") != day {
				errs = append(errs, fmt.Errorf("delivery %s: time window not on plan date %s", d.ID, day))
			}
		}
	}
	return errs
}
