package api

import (
	"fmt"
	"time"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
	"github.com/cheez95/LuckyGas-sub001/internal/opt"
)

// optimizeIn is the wire form of an optimization request. The plan date
// travels as a calendar day, not a timestamp.
type optimizeIn struct {
	Date          string                      `json:"date"`
	Algorithm     string                      `json:"algorithm,omitempty"`
	Deliveries    []model.DeliveryRequirement `json:"deliveries,omitempty"`
	Drivers       []model.DriverSnapshot      `json:"drivers,omitempty"`
	Vehicles      []model.VehicleSnapshot     `json:"vehicles,omitempty"`
	Constraints   model.Constraints           `json:"constraints,omitempty"`
	Mode          model.OptimizationMode      `json:"mode,omitempty"`
	MaxIterations int                         `json:"maxIterations,omitempty"`
}

func (in *optimizeIn) toRequest() (*model.OptimizationRequest, opt.Algorithm, error) {
	if in.Date == "" {
		return nil, "", fmt.Errorf("date is required (YYYY-MM-DD)")
	}
	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return nil, "", fmt.Errorf("invalid date %q: want YYYY-MM-DD", in.Date)
	}
	algo := opt.Algorithm(in.Algorithm)
	switch algo {
	case "", opt.AlgorithmGreedy, opt.AlgorithmGenetic, opt.AlgorithmAnnealing:
	default:
		return nil, "", fmt.Errorf("unknown algorithm %q", in.Algorithm)
	}
	switch in.Mode {
	case "", model.ModeBalanced, model.ModeCost, model.ModeSpeed, model.ModeQuality:
	default:
		return nil, "", fmt.Errorf("unknown mode %q", in.Mode)
	}
	req := &model.OptimizationRequest{
		Date:          date,
		Deliveries:    in.Deliveries,
		Drivers:       in.Drivers,
		Vehicles:      in.Vehicles,
		Constraints:   in.Constraints,
		Mode:          in.Mode,
		MaxIterations: in.MaxIterations,
	}
	if req.Mode == "" {
		req.Mode = model.ModeBalanced
	}
	return req, algo, nil
}
