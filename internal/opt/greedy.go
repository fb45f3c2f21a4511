package opt

import (
	"time"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
)

// Greedy is the deterministic insertion heuristic. It walks deliveries in
// priority order and inserts each at the cheapest feasible position across
// the currently open routes, opening a new route only when nothing fits.
type Greedy struct{}

func (g *Greedy) Capabilities() Descriptor {
	return Descriptor{
		Name:               AlgorithmGreedy,
		Deterministic:      true,
		MaxDeliveries:      defaultMaxDeliveries,
		HandlesTimeWindows: true,
	}
}

func (g *Greedy) Validate(req *model.OptimizationRequest) []error {
	return validateRequest(req)
}

func (g *Greedy) Optimize(req *model.OptimizationRequest, deadline time.Time) *model.OptimizationResult {
	start := time.Now()
	p := newProblem(req)
	sol := greedyConstruct(p)
	routes, unscheduled := p.buildRoutes(sol)
	res := &model.OptimizationResult{
		Success:        true,
		Algorithm:      string(AlgorithmGreedy),
		Routes:         routes,
		Unscheduled:    unscheduled,
		ElapsedSeconds: time.Since(start).Seconds(),
	}
	finishResult(p, res)
	return res
}
