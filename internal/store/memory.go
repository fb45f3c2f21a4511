package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
)

// Memory is the in-process store used by tests and single-node deployments.
type Memory struct {
	mu         sync.RWMutex
	drivers    map[string]model.DriverSnapshot
	vehicles   map[string]model.VehicleSnapshot
	deliveries map[string][]model.DeliveryRequirement // day key -> deliveries
	schedules  map[string]*model.Schedule
}

func NewMemory() *Memory {
	return &Memory{
		drivers:    map[string]model.DriverSnapshot{},
		vehicles:   map[string]model.VehicleSnapshot{},
		deliveries: map[string][]model.DeliveryRequirement{},
		schedules:  map[string]*model.Schedule{},
	}
}

func (m *Memory) AvailableDrivers(ctx context.Context, date time.Time) ([]model.DriverSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.DriverSnapshot
	for _, d := range m.drivers {
		if d.Available {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) AvailableVehicles(ctx context.Context, date time.Time) ([]model.VehicleSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.VehicleSnapshot
	for _, v := range m.vehicles {
		if v.Available {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) PendingDeliveries(ctx context.Context, date time.Time) ([]model.DeliveryRequirement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds := m.deliveries[dayKey(date)]
	out := make([]model.DeliveryRequirement, len(ds))
	copy(out, ds)
	return out, nil
}

func (m *Memory) PutDriver(ctx context.Context, d model.DriverSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	m.drivers[d.ID] = d
	return nil
}

func (m *Memory) PutVehicle(ctx context.Context, v model.VehicleSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	m.vehicles[v.ID] = v
	return nil
}

func (m *Memory) PutDelivery(ctx context.Context, date time.Time, d model.DeliveryRequirement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	key := dayKey(date)
	for i, existing := range m.deliveries[key] {
		if existing.ID == d.ID {
			m.deliveries[key][i] = d
			return nil
		}
	}
	m.deliveries[key] = append(m.deliveries[key], d)
	return nil
}

func (m *Memory) SaveSchedule(ctx context.Context, s *model.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	cp := *s
	m.schedules[s.ID] = &cp
	return nil
}

func (m *Memory) GetSchedule(ctx context.Context, id string) (*model.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) ListSchedules(ctx context.Context, date time.Time) ([]*model.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := dayKey(date)
	var out []*model.Schedule
	for _, s := range m.schedules {
		if date.IsZero() || s.PlanDate == key {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }
func (m *Memory) Close() error                   { return nil }
