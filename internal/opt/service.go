package opt

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
)

// Catalog is the slice of the store the optimizer needs: the resource
// snapshot for a plan date. Implemented by internal/store.
type Catalog interface {
	AvailableDrivers(ctx context.Context, date time.Time) ([]model.DriverSnapshot, error)
	AvailableVehicles(ctx context.Context, date time.Time) ([]model.VehicleSnapshot, error)
	PendingDeliveries(ctx context.Context, date time.Time) ([]model.DeliveryRequirement, error)
}

// Service runs optimizations end to end: load resources, pick a strategy,
// run it under a time budget, and return a reported result.
// TravelSpeedKph and the workday hours are configured defaults applied to
// requests that leave those constraints unset.
type Service struct {
	catalog          Catalog
	log              zerolog.Logger
	TimeBudget       time.Duration
	Seed             int64
	TravelSpeedKph   float64
	WorkdayStartHour int
	WorkdayEndHour   int
}

func NewService(catalog Catalog, log zerolog.Logger) *Service {
	return &Service{
		catalog:    catalog,
		log:        log,
		TimeBudget: 10 * time.Second,
		Seed:       time.Now().UnixNano(),
	}
}

// SelectAlgorithm picks a strategy from the shape of the request: small
// unconstrained days go to the deterministic greedy pass, anything with
// hard structure or a quality-leaning mode gets a metaheuristic.
func SelectAlgorithm(req *model.OptimizationRequest) Algorithm {
	advanced := len(req.Deliveries) > 50
	for _, d := range req.Deliveries {
		if d.Window != nil || d.RequiredType != "" {
			advanced = true
			break
		}
	}
	if req.Mode == model.ModeCost || req.Mode == model.ModeQuality {
		advanced = true
	}
	if !advanced {
		return AlgorithmGreedy
	}
	if len(req.Deliveries) > 120 {
		// annealing scales better than population scoring at this size
		return AlgorithmAnnealing
	}
	return AlgorithmGenetic
}

// Plan loads the day's resources from the catalog, fills in whatever the
// request left empty, and runs the chosen (or selected) algorithm.
func (s *Service) Plan(ctx context.Context, req *model.OptimizationRequest, algo Algorithm) (*model.OptimizationResult, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if s.catalog != nil {
		if len(req.Deliveries) == 0 {
			ds, err := s.catalog.PendingDeliveries(ctx, req.Date)
			if err != nil {
				return nil, fmt.Errorf("load deliveries: %w", err)
			}
			req.Deliveries = ds
		}
		if len(req.Drivers) == 0 {
			drs, err := s.catalog.AvailableDrivers(ctx, req.Date)
			if err != nil {
				return nil, fmt.Errorf("load drivers: %w", err)
			}
			req.Drivers = drs
		}
		if len(req.Vehicles) == 0 {
			vs, err := s.catalog.AvailableVehicles(ctx, req.Date)
			if err != nil {
				return nil, fmt.Errorf("load vehicles: %w", err)
			}
			req.Vehicles = vs
		}
	}
	if algo == "" {
		algo = SelectAlgorithm(req)
	}
	return s.Run(ctx, req, algo), nil
}

// applyDefaults fills zero-valued request constraints from the service's
// configured defaults. Explicit request values always win.
func (s *Service) applyDefaults(req *model.OptimizationRequest) {
	if req.Constraints.TravelSpeedKph <= 0 && s.TravelSpeedKph > 0 {
		req.Constraints.TravelSpeedKph = s.TravelSpeedKph
	}
	if req.Constraints.WorkdayStartHour == 0 && req.Constraints.WorkdayEndHour == 0 &&
		(s.WorkdayStartHour > 0 || s.WorkdayEndHour > 0) {
		req.Constraints.WorkdayStartHour = s.WorkdayStartHour
		req.Constraints.WorkdayEndHour = s.WorkdayEndHour
	}
}

// Run executes one strategy against an in-memory request. It never panics:
// a strategy failure surfaces as a failed result, not a crashed server.
func (s *Service) Run(ctx context.Context, req *model.OptimizationRequest, algo Algorithm) *model.OptimizationResult {
	strat, err := ForAlgorithm(algo, s.Seed)
	if err != nil {
		return &model.OptimizationResult{
			Algorithm: string(algo),
			Errors:    []string{err.Error()},
		}
	}
	return s.run(ctx, req, strat, algo)
}

func (s *Service) run(ctx context.Context, req *model.OptimizationRequest, strat Strategy, algo Algorithm) (res *model.OptimizationResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("algorithm", string(algo)).Interface("panic", r).Msg("optimizer panicked")
			res = &model.OptimizationResult{
				Algorithm:      string(algo),
				InternalError:  true,
				Errors:         []string{fmt.Sprintf("internal optimizer failure: %v", r)},
				ElapsedSeconds: time.Since(start).Seconds(),
			}
		}
	}()

	s.applyDefaults(req)
	if errs := strat.Validate(req); len(errs) > 0 {
		res = &model.OptimizationResult{Algorithm: string(algo)}
		for _, e := range errs {
			res.Errors = append(res.Errors, e.Error())
		}
		res.ElapsedSeconds = time.Since(start).Seconds()
		return res
	}

	budget := s.TimeBudget
	if budget <= 0 {
		budget = 10 * time.Second
	}
	deadline := time.Now().Add(budget)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	res = strat.Optimize(req, deadline)
	res.ElapsedSeconds = time.Since(start).Seconds()
	if res.Metrics != nil {
		res.Metrics["elapsed_seconds"] = res.ElapsedSeconds
	}

	scheduled := 0
	for _, rt := range res.Routes {
		scheduled += len(rt.Stops)
	}
	s.log.Info().
		Str("algorithm", res.Algorithm).
		Int("deliveries", len(req.Deliveries)).
		Int("scheduled", scheduled).
		Int("unscheduled", len(res.Unscheduled)).
		Int("routes", len(res.Routes)).
		Int("conflicts", len(res.Conflicts)).
		Float64("elapsed_s", res.ElapsedSeconds).
		Msg("optimization finished")
	return res
}
