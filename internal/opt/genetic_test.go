package opt

import (
	"testing"
	"time"
)

func TestGeneticCoversAllDeliveries(t *testing.T) {
	req := testRequest(15, "medium", 3)
	g := NewGenetic(42)
	g.Generations = 30
	res := g.Optimize(req, farDeadline())
	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	ids := scheduledIDs(res)
	if len(ids)+len(res.Unscheduled) != 15 {
		t.Fatalf("deliveries lost: %d scheduled + %d unscheduled != 15", len(ids), len(res.Unscheduled))
	}
	for id, n := range ids {
		if n != 1 {
			t.Fatalf("delivery %s appears %d times", id, n)
		}
	}
	if len(res.Unscheduled) != 0 {
		t.Fatalf("fleet can carry everything, got %d unscheduled", len(res.Unscheduled))
	}
}

func TestGeneticNoWorseThanGreedy(t *testing.T) {
	req := testRequest(15, "medium", 3)
	p := newProblem(req)
	seed := greedyConstruct(p)

	g := NewGenetic(7)
	g.Generations = 40
	res := g.Optimize(req, farDeadline())

	var dist float64
	for _, rt := range res.Routes {
		dist += rt.TotalDistanceKm
	}
	greedyDist := 0.0
	for pi, pl := range seed.plans {
		if sched, ok := p.schedulePlan(p.pairs[pi], pl); ok {
			greedyDist += sched.totalKm
		}
	}
	// population includes the priority-ordered individual, so the decoded
	// best can only match or beat the greedy construction on unscheduled
	if len(res.Unscheduled) > len(seed.unassigned) {
		t.Fatalf("genetic left %d unscheduled, greedy left %d", len(res.Unscheduled), len(seed.unassigned))
	}
	if dist > greedyDist*1.5 {
		t.Fatalf("genetic distance %.1fkm far worse than greedy %.1fkm", dist, greedyDist)
	}
}

func TestGeneticRespectsDeadline(t *testing.T) {
	req := testRequest(30, "medium", 4)
	g := NewGenetic(1)
	g.Generations = 1000000
	start := time.Now()
	g.Optimize(req, start.Add(500*time.Millisecond))
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("deadline ignored: ran %s", elapsed)
	}
}

func TestOrderCrossoverIsPermutation(t *testing.T) {
	g := NewGenetic(3)
	a := []int{0, 1, 2, 3, 4, 5, 6, 7}
	b := []int{7, 6, 5, 4, 3, 2, 1, 0}
	for trial := 0; trial < 50; trial++ {
		child := g.orderCrossover(a, b)
		if len(child) != len(a) {
			t.Fatalf("child length %d", len(child))
		}
		seen := map[int]bool{}
		for _, v := range child {
			if seen[v] {
				t.Fatalf("duplicate gene %d in %v", v, child)
			}
			seen[v] = true
		}
	}
}

func TestGeneticSeedDeterminism(t *testing.T) {
	req := testRequest(10, "medium", 2)
	run := func() map[string]int {
		g := NewGenetic(99)
		g.Generations = 20
		return scheduledIDs(g.Optimize(req, farDeadline()))
	}
	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("same seed produced different coverage: %d vs %d", len(a), len(b))
	}
}
