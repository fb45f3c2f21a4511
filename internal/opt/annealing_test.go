package opt

import (
	"testing"
	"time"
)

func TestAnnealingCoversAllDeliveries(t *testing.T) {
	req := testRequest(15, "medium", 3)
	a := NewAnnealing(42)
	a.Iterations = 3000
	res := a.Optimize(req, farDeadline())
	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	ids := scheduledIDs(res)
	if len(ids)+len(res.Unscheduled) != 15 {
		t.Fatalf("deliveries lost: %d scheduled + %d unscheduled", len(ids), len(res.Unscheduled))
	}
	for id, n := range ids {
		if n != 1 {
			t.Fatalf("delivery %s appears %d times", id, n)
		}
	}
}

func TestAnnealingNeverWorseThanSeed(t *testing.T) {
	req := testRequest(12, "medium", 3)
	p := newProblem(req)
	seed := greedyConstruct(p)

	a := NewAnnealing(7)
	a.Iterations = 2000
	res := a.Optimize(req, farDeadline())
	if len(res.Unscheduled) > len(seed.unassigned) {
		t.Fatalf("annealing lost coverage: %d unscheduled vs seed %d", len(res.Unscheduled), len(seed.unassigned))
	}
}

func TestAnnealingRespectsDeadline(t *testing.T) {
	req := testRequest(40, "large", 5)
	a := NewAnnealing(1)
	a.Iterations = 1 << 30
	a.MinTemp = 0 // only the deadline can stop it
	start := time.Now()
	a.Optimize(req, start.Add(1*time.Second))
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("deadline ignored: ran %s", elapsed)
	}
}

func TestAnnealingExpiredDeadlineReturnsSeed(t *testing.T) {
	req := testRequest(30, "medium", 4)
	a := NewAnnealing(1)
	a.Iterations = 1 << 30
	a.MinTemp = 0
	start := time.Now()
	res := a.Optimize(req, start.Add(-time.Second))
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("expired deadline should return immediately, ran %s", elapsed)
	}
	if !res.Success {
		t.Fatalf("seed solution should still be reported: %v", res.Errors)
	}
}

func TestAnnealingFeasibleAfterMoves(t *testing.T) {
	req := testRequest(15, "small", 4)
	a := NewAnnealing(11)
	a.Iterations = 2000
	res := a.Optimize(req, farDeadline())
	if len(res.Conflicts) != 0 {
		t.Fatalf("moves produced an infeasible plan: %+v", res.Conflicts)
	}
}
