package store

import (
	"context"
	"errors"
	"time"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
)

var ErrNotFound = errors.New("not found")

// Store persists resources and finished schedules. Memory backs tests and
// single-node runs; Postgres backs everything else.
type Store interface {
	AvailableDrivers(ctx context.Context, date time.Time) ([]model.DriverSnapshot, error)
	AvailableVehicles(ctx context.Context, date time.Time) ([]model.VehicleSnapshot, error)
	PendingDeliveries(ctx context.Context, date time.Time) ([]model.DeliveryRequirement, error)

	PutDriver(ctx context.Context, d model.DriverSnapshot) error
	PutVehicle(ctx context.Context, v model.VehicleSnapshot) error
	PutDelivery(ctx context.Context, date time.Time, d model.DeliveryRequirement) error

	SaveSchedule(ctx context.Context, s *model.Schedule) error
	GetSchedule(ctx context.Context, id string) (*model.Schedule, error)
	ListSchedules(ctx context.Context, date time.Time) ([]*model.Schedule, error)

	Ping(ctx context.Context) error
	Close() error
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }
