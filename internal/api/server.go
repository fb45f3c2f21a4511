package api

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/cheez95/LuckyGas-sub001/internal/config"
	"github.com/cheez95/LuckyGas-sub001/internal/opt"
	"github.com/cheez95/LuckyGas-sub001/internal/store"
)

type Server struct {
	Store     store.Store
	Broker    EventBroker
	Optimizer *opt.Service
	Log       zerolog.Logger

	cfg     config.Config
	limiter *rate.Limiter
}

// NewServer wires the store, event broker and optimizer from config. With no
// DATABASE_URL it runs fully in memory.
func NewServer(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Server, error) {
	var st store.Store
	if cfg.DatabaseURL == "" {
		st = store.NewMemory()
	} else {
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		st = pg
	}

	var broker EventBroker
	if cfg.RedisURL != "" {
		rb, err := NewRedisBroker(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis broker unavailable, using in-memory broker")
			broker = NewBroker()
		} else {
			broker = rb
		}
	} else {
		broker = NewBroker()
	}

	svc := opt.NewService(st, log)
	if cfg.Optimizer.TimeBudget > 0 {
		svc.TimeBudget = cfg.Optimizer.TimeBudget
	}
	svc.TravelSpeedKph = cfg.Optimizer.TravelSpeedKph
	svc.WorkdayStartHour = cfg.Optimizer.WorkdayStartHour
	svc.WorkdayEndHour = cfg.Optimizer.WorkdayEndHour

	return &Server{
		Store:     st,
		Broker:    broker,
		Optimizer: svc,
		Log:       log,
		cfg:       cfg,
		// optimization runs are expensive; cap the submit rate per node
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}, nil
}

func (s *Server) Close() error {
	if s.Store != nil {
		return s.Store.Close()
	}
	return nil
}
