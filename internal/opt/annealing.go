package opt

import (
	"math"
	"math/rand"
	"time"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
)

// Annealing refines a greedy seed with random neighborhood moves, accepting
// uphill steps with probability exp(-delta/T) under geometric cooling.
type Annealing struct {
	rng *rand.Rand

	Iterations  int
	InitialTemp float64
	Cooling     float64
	MinTemp     float64
}

func NewAnnealing(seed int64) *Annealing {
	return &Annealing{
		rng:         rand.New(rand.NewSource(seed)),
		Iterations:  20000,
		InitialTemp: 1000.0,
		Cooling:     0.9995,
		MinTemp:     1e-3,
	}
}

func (a *Annealing) Capabilities() Descriptor {
	return Descriptor{
		Name:               AlgorithmAnnealing,
		MaxDeliveries:      defaultMaxDeliveries,
		HandlesTimeWindows: true,
	}
}

func (a *Annealing) Validate(req *model.OptimizationRequest) []error {
	return validateRequest(req)
}

func (a *Annealing) Optimize(req *model.OptimizationRequest, deadline time.Time) *model.OptimizationResult {
	start := time.Now()
	p := newProblem(req)

	cur := greedyConstruct(p)
	best := cur.clone()

	iters := a.Iterations
	if req.MaxIterations > 0 {
		iters = req.MaxIterations
	}
	temp := a.InitialTemp
	for i := 0; i < iters && temp > a.MinTemp; i++ {
		if !time.Now().Before(deadline) {
			break
		}
		cand, changed := a.neighbor(p, cur)
		if changed {
			cand.cost = p.cost(cand)
			delta := cand.cost - cur.cost
			if delta < 0 || a.rng.Float64() < math.Exp(-delta/(temp+1e-9)) {
				cur = cand
				if cur.cost < best.cost {
					best = cur.clone()
				}
			}
		}
		temp *= a.Cooling
	}

	routes, unscheduled := p.buildRoutes(best)
	res := &model.OptimizationResult{
		Success:        true,
		Algorithm:      string(AlgorithmAnnealing),
		Routes:         routes,
		Unscheduled:    unscheduled,
		ElapsedSeconds: time.Since(start).Seconds(),
	}
	finishResult(p, res)
	return res
}

// neighbor applies one of: swap two stops within a route, relocate a stop to
// another route, reverse a route segment, or pull an unassigned delivery
// into a route. Moves that break a hard constraint are discarded.
func (a *Annealing) neighbor(p *problem, s solution) (solution, bool) {
	cand := s.clone()
	switch a.rng.Intn(4) {
	case 0:
		return a.swapWithin(p, cand)
	case 1:
		return a.relocate(p, cand)
	case 2:
		return a.reverseSegment(p, cand)
	default:
		return a.insertUnassigned(p, cand)
	}
}

func (a *Annealing) nonEmptyPlan(s solution) int {
	var idx []int
	for pi, pl := range s.plans {
		if len(pl) > 0 {
			idx = append(idx, pi)
		}
	}
	if len(idx) == 0 {
		return -1
	}
	return idx[a.rng.Intn(len(idx))]
}

func (a *Annealing) swapWithin(p *problem, s solution) (solution, bool) {
	pi := a.nonEmptyPlan(s)
	if pi == -1 || len(s.plans[pi]) < 2 {
		return s, false
	}
	pl := s.plans[pi]
	i := a.rng.Intn(len(pl))
	j := a.rng.Intn(len(pl))
	if i == j {
		return s, false
	}
	pl[i], pl[j] = pl[j], pl[i]
	if _, ok := p.schedulePlan(p.pairs[pi], pl); !ok {
		return s, false
	}
	return s, true
}

func (a *Annealing) relocate(p *problem, s solution) (solution, bool) {
	from := a.nonEmptyPlan(s)
	if from == -1 || len(p.pairs) < 2 {
		return s, false
	}
	to := a.rng.Intn(len(p.pairs))
	if to == from {
		return s, false
	}
	pl := s.plans[from]
	i := a.rng.Intn(len(pl))
	ni := pl[i]
	if !p.admits(p.pairs[to].vehicle, ni) {
		return s, false
	}
	pos := a.rng.Intn(len(s.plans[to]) + 1)
	moved := insertAt(s.plans[to], ni, pos)
	if _, ok := p.schedulePlan(p.pairs[to], moved); !ok {
		return s, false
	}
	s.plans[from] = append(pl[:i], pl[i+1:]...)
	s.plans[to] = moved
	return s, true
}

func (a *Annealing) reverseSegment(p *problem, s solution) (solution, bool) {
	pi := a.nonEmptyPlan(s)
	if pi == -1 || len(s.plans[pi]) < 3 {
		return s, false
	}
	pl := s.plans[pi]
	i := a.rng.Intn(len(pl))
	j := a.rng.Intn(len(pl))
	if i > j {
		i, j = j, i
	}
	if j-i < 1 {
		return s, false
	}
	for l, r := i, j; l < r; l, r = l+1, r-1 {
		pl[l], pl[r] = pl[r], pl[l]
	}
	if _, ok := p.schedulePlan(p.pairs[pi], pl); !ok {
		return s, false
	}
	return s, true
}

func (a *Annealing) insertUnassigned(p *problem, s solution) (solution, bool) {
	if len(s.unassigned) == 0 || len(p.pairs) == 0 {
		return s, false
	}
	ui := a.rng.Intn(len(s.unassigned))
	ni := s.unassigned[ui]
	pi := a.rng.Intn(len(p.pairs))
	if !p.admits(p.pairs[pi].vehicle, ni) {
		return s, false
	}
	pos := a.rng.Intn(len(s.plans[pi]) + 1)
	cand := insertAt(s.plans[pi], ni, pos)
	if _, ok := p.schedulePlan(p.pairs[pi], cand); !ok {
		return s, false
	}
	s.plans[pi] = cand
	s.unassigned = append(s.unassigned[:ui], s.unassigned[ui+1:]...)
	return s, true
}
