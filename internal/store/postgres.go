package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
)

// Postgres stores documents as jsonb keyed by id, with the plan date lifted
// into a column for range scans.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	p := &Postgres{db: db}
	if err := p.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS drivers (
			id TEXT PRIMARY KEY,
			doc JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS vehicles (
			id TEXT PRIMARY KEY,
			doc JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS deliveries (
			id TEXT PRIMARY KEY,
			plan_date DATE NOT NULL,
			doc JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS deliveries_plan_date_idx ON deliveries (plan_date)`,
		`CREATE TABLE IF NOT EXISTS schedules (
			id TEXT PRIMARY KEY,
			plan_date DATE NOT NULL,
			algorithm TEXT NOT NULL,
			doc JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS schedules_plan_date_idx ON schedules (plan_date)`,
	}
	for _, s := range stmts {
		if _, err := p.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (p *Postgres) AvailableDrivers(ctx context.Context, date time.Time) ([]model.DriverSnapshot, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT doc FROM drivers WHERE (doc->>'available')::bool ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query drivers: %w", err)
	}
	defer rows.Close()
	var out []model.DriverSnapshot
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var d model.DriverSnapshot
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode driver: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) AvailableVehicles(ctx context.Context, date time.Time) ([]model.VehicleSnapshot, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT doc FROM vehicles WHERE (doc->>'available')::bool ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query vehicles: %w", err)
	}
	defer rows.Close()
	var out []model.VehicleSnapshot
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var v model.VehicleSnapshot
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode vehicle: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (p *Postgres) PendingDeliveries(ctx context.Context, date time.Time) ([]model.DeliveryRequirement, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT doc FROM deliveries WHERE plan_date = $1 ORDER BY id`, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()
	var out []model.DeliveryRequirement
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var d model.DeliveryRequirement
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode delivery: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) PutDriver(ctx context.Context, d model.DriverSnapshot) error {
	return p.upsertDoc(ctx, "drivers", d.ID, d)
}

func (p *Postgres) PutVehicle(ctx context.Context, v model.VehicleSnapshot) error {
	return p.upsertDoc(ctx, "vehicles", v.ID, v)
}

func (p *Postgres) PutDelivery(ctx context.Context, date time.Time, d model.DeliveryRequirement) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO deliveries (id, plan_date, doc) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET plan_date = EXCLUDED.plan_date, doc = EXCLUDED.doc`,
		d.ID, date.Format("2006-01-02"), raw)
	return err
}

func (p *Postgres) upsertDoc(ctx context.Context, table, id string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`, table),
		id, raw)
	return err
}

func (p *Postgres) SaveSchedule(ctx context.Context, s *model.Schedule) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO schedules (id, plan_date, algorithm, doc, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`,
		s.ID, s.PlanDate, s.Algorithm, raw, s.CreatedAt)
	return err
}

func (p *Postgres) GetSchedule(ctx context.Context, id string) (*model.Schedule, error) {
	var raw []byte
	err := p.db.QueryRowContext(ctx, `SELECT doc FROM schedules WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var s model.Schedule
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	return &s, nil
}

func (p *Postgres) ListSchedules(ctx context.Context, date time.Time) ([]*model.Schedule, error) {
	q := `SELECT doc FROM schedules ORDER BY created_at DESC`
	args := []any{}
	if !date.IsZero() {
		q = `SELECT doc FROM schedules WHERE plan_date = $1 ORDER BY created_at DESC`
		args = append(args, date.Format("2006-01-02"))
	}
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()
	var out []*model.Schedule
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var s model.Schedule
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode schedule: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }
func (p *Postgres) Close() error                   { return p.db.Close() }
