// Package opt implements the route/schedule optimization core: the strategy
// contract, its greedy, genetic and annealing implementations, the conflict
// and metrics reporter and the orchestrating service.
package opt

import (
	"fmt"
	"time"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
)

// Algorithm names the closed set of strategy variants.
type Algorithm string

const (
	AlgorithmGreedy    Algorithm = "greedy"
	AlgorithmGenetic   Algorithm = "genetic"
	AlgorithmAnnealing Algorithm = "annealing"
)

// Descriptor declares a strategy's practical limits so the orchestrator can
// pick intelligently.
type Descriptor struct {
	Name               Algorithm
	Deterministic      bool
	MaxDeliveries      int // solution quality degrades beyond this size
	HandlesTimeWindows bool
}

// Strategy is the contract every optimization variant implements.
//
// Optimize must be safely invocable without shared mutable state so
// independent runs can execute concurrently. The deadline is an absolute
// instant; strategies poll it at every iteration boundary at minimum and
// return their best-so-far solution once it passes.
type Strategy interface {
	Validate(req *model.OptimizationRequest) []error
	Optimize(req *model.OptimizationRequest, deadline time.Time) *model.OptimizationResult
	Capabilities() Descriptor
}

// ForAlgorithm returns the strategy for a variant name. The set is closed;
// there is no runtime registration.
func ForAlgorithm(a Algorithm, seed int64) (Strategy, error) {
	switch a {
	case AlgorithmGreedy:
		return &Greedy{}, nil
	case AlgorithmGenetic:
		return NewGenetic(seed), nil
	case AlgorithmAnnealing:
		return NewAnnealing(seed), nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q", a)
	}
}
