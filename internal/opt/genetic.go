package opt

import (
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
)

// Genetic evolves permutations of delivery indices and decodes each through
// greedy insertion, so every individual maps to a feasible solution. Order
// crossover and swap mutation keep permutations valid.
type Genetic struct {
	rng *rand.Rand

	PopulationSize int
	Generations    int
	MutationRate   float64
	EliteCount     int
	TournamentSize int
}

func NewGenetic(seed int64) *Genetic {
	return &Genetic{
		rng:            rand.New(rand.NewSource(seed)),
		PopulationSize: 60,
		Generations:    200,
		MutationRate:   0.15,
		EliteCount:     4,
		TournamentSize: 3,
	}
}

func (g *Genetic) Capabilities() Descriptor {
	return Descriptor{
		Name:               AlgorithmGenetic,
		MaxDeliveries:      defaultMaxDeliveries,
		HandlesTimeWindows: true,
	}
}

func (g *Genetic) Validate(req *model.OptimizationRequest) []error {
	return validateRequest(req)
}

type individual struct {
	perm []int
	sol  solution
}

func (g *Genetic) Optimize(req *model.OptimizationRequest, deadline time.Time) *model.OptimizationResult {
	start := time.Now()
	p := newProblem(req)

	gens := g.Generations
	if req.MaxIterations > 0 {
		gens = req.MaxIterations
	}

	pop := make([]individual, g.PopulationSize)
	base := priorityOrder(p)
	for i := range pop {
		perm := append([]int(nil), base...)
		if i > 0 { // keep one priority-ordered individual in the gene pool
			g.rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })
		}
		pop[i] = individual{perm: perm}
	}
	g.score(p, pop)
	sortByCost(pop)
	best := pop[0].sol.clone()

	for gen := 0; gen < gens && time.Now().Before(deadline); gen++ {
		next := make([]individual, 0, g.PopulationSize)
		for i := 0; i < g.EliteCount && i < len(pop); i++ {
			next = append(next, individual{perm: append([]int(nil), pop[i].perm...)})
		}
		for len(next) < g.PopulationSize {
			a := g.tournament(pop)
			b := g.tournament(pop)
			child := g.orderCrossover(a.perm, b.perm)
			if g.rng.Float64() < g.MutationRate {
				g.swapMutate(child)
			}
			next = append(next, individual{perm: child})
		}
		g.score(p, next)
		sortByCost(next)
		if next[0].sol.cost < best.cost {
			best = next[0].sol.clone()
		}
		pop = next
	}

	routes, unscheduled := p.buildRoutes(best)
	res := &model.OptimizationResult{
		Success:        true,
		Algorithm:      string(AlgorithmGenetic),
		Routes:         routes,
		Unscheduled:    unscheduled,
		ElapsedSeconds: time.Since(start).Seconds(),
	}
	finishResult(p, res)
	return res
}

// score decodes and prices every individual. Decoding only reads the shared
// problem, so individuals fan out across workers.
func (g *Genetic) score(p *problem, pop []individual) {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(pop) {
		workers = len(pop)
	}
	var wg sync.WaitGroup
	ch := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				pop[i].sol = decodePerm(p, pop[i].perm)
			}
		}()
	}
	for i := range pop {
		ch <- i
	}
	close(ch)
	wg.Wait()
}

// decodePerm inserts deliveries in permutation order at their cheapest
// feasible position, the same move the greedy heuristic uses.
func decodePerm(p *problem, perm []int) solution {
	sol := emptySolution(p)
	open := make([]bool, len(p.pairs))
	scheds := make([]planSchedule, len(p.pairs))
	for _, ni := range perm {
		bestPair, bestPos := -1, -1
		bestDelta := 0.0
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
				if bestPair == -1 || delta < bestDelta {
					bestDelta = delta
					bestPair = pi
					bestPos = pos
				}
			}
		}
		if bestPair == -1 {
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

func (g *Genetic) tournament(pop []individual) individual {
	best := pop[g.rng.Intn(len(pop))]
	for i := 1; i < g.TournamentSize; i++ {
		c := pop[g.rng.Intn(len(pop))]
		if c.sol.cost < best.sol.cost {
			best = c
		}
	}
	return best
}

// orderCrossover copies a slice of parent a and fills the remaining
// positions in parent b's order, preserving permutation validity.
func (g *Genetic) orderCrossover(a, b []int) []int {
	n := len(a)
	if n < 2 {
		return append([]int(nil), a...)
	}
	i := g.rng.Intn(n)
	j := g.rng.Intn(n)
	if i > j {
		i, j = j, i
	}
	child := make([]int, n)
	used := make(map[int]bool, n)
	for k := i; k <= j; k++ {
		child[k] = a[k]
		used[a[k]] = true
	}
	k := (j + 1) % n
	for off := 0; off < n; off++ {
		v := b[(j+1+off)%n]
		if used[v] {
			continue
		}
		child[k] = v
		used[v] = true
		k = (k + 1) % n
		if k == i {
			k = (j + 1) % n
		}
	}
	return child
}

func (g *Genetic) swapMutate(perm []int) {
	if len(perm) < 2 {
		return
	}
	i := g.rng.Intn(len(perm))
	j := g.rng.Intn(len(perm))
	perm[i], perm[j] = perm[j], perm[i]
}

func sortByCost(pop []individual) {
	for i := 1; i < len(pop); i++ {
		for j := i; j > 0 && pop[j].sol.cost < pop[j-1].sol.cost; j-- {
			pop[j], pop[j-1] = pop[j-1], pop[j]
		}
	}
}
