package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cheez95/LuckyGas-sub001/internal/buildinfo"
	"github.com/cheez95/LuckyGas-sub001/internal/metrics"
	"github.com/cheez95/LuckyGas-sub001/internal/model"
	"github.com/cheez95/LuckyGas-sub001/internal/store"
	"github.com/cheez95/LuckyGas-sub001/internal/timewin"
)

// OptimizeHandler handles POST /v1/optimize: run a plan for one date, persist
// it as a schedule, and announce it on the event broker.
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !s.limiter.Allow() {
		writeProblem(w, http.StatusTooManyRequests, "Too many optimization requests", "retry shortly", r.URL.Path)
		return
	}
	var in optimizeIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	req, algo, err := in.toRequest()
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid optimization request", err.Error(), r.URL.Path)
		return
	}

	start := time.Now()
	res, err := s.Optimizer.Plan(r.Context(), req, algo)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Optimization failed", err.Error(), r.URL.Path)
		return
	}
	status := "success"
	if !res.Success {
		status = "failed"
	}
	metrics.OptimizeRuns.WithLabelValues(res.Algorithm, status).Inc()
	metrics.OptimizeDuration.WithLabelValues(res.Algorithm).Observe(time.Since(start).Seconds())
	metrics.UnscheduledDeliveries.Add(float64(len(res.Unscheduled)))
	for _, c := range res.Conflicts {
		metrics.PlanConflicts.WithLabelValues(string(c.Kind)).Inc()
	}

	if !res.Success {
		if res.InternalError {
			writeProblem(w, http.StatusInternalServerError, "Optimization failed", strings.Join(res.Errors, "; "), r.URL.Path)
			return
		}
		writeValidationProblem(w, r.URL.Path, res.Errors)
		return
	}

	sched := &model.Schedule{
		PlanDate:  in.Date,
		Algorithm: res.Algorithm,
		Result:    *res,
	}
	if err := s.Store.SaveSchedule(r.Context(), sched); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save schedule failed", err.Error(), r.URL.Path)
		return
	}
	s.Broker.Publish(sched.ID, SSEEvent{Type: "schedule.created", Data: map[string]any{
		"scheduleId": sched.ID,
		"planDate":   sched.PlanDate,
		"algorithm":  sched.Algorithm,
		"routes":     len(res.Routes),
	}})
	writeJSON(w, http.StatusCreated, sched)
}

// SchedulesHandler handles GET /v1/schedules with an optional ?date filter.
func (s *Server) SchedulesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var date time.Time
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid date", "want YYYY-MM-DD", r.URL.Path)
			return
		}
		date = d
	}
	items, err := s.Store.ListSchedules(r.Context(), date)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List schedules failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// ScheduleByIDHandler handles /v1/schedules/{id} and its subpaths
// /events/stream (SSE) and /ws (WebSocket).
func (s *Server) ScheduleByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/schedules/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeProblem(w, http.StatusBadRequest, "Missing schedule id", "", r.URL.Path)
		return
	}
	id := parts[0]
	if len(parts) == 3 && parts[1] == "events" && parts[2] == "stream" {
		s.scheduleStream(w, r, id)
		return
	}
	if len(parts) == 2 && parts[1] == "ws" {
		s.ScheduleWSHandler(w, r, id)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sched, err := s.Store.GetSchedule(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Schedule not found", id, r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Get schedule failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

// scheduleStream pushes broker events for one schedule over SSE.
func (s *Server) scheduleStream(w http.ResponseWriter, r *http.Request, id string) {
	fl, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			fl.Flush()
		case evt, open := <-ch:
			if !open {
				return
			}
			data, _ := json.Marshal(evt.Data)
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data)
			fl.Flush()
		}
	}
}

// DriversHandler handles GET and POST /v1/drivers.
func (s *Server) DriversHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.Store.AvailableDrivers(r.Context(), time.Now())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List drivers failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	case http.MethodPost:
		var d model.DriverSnapshot
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := s.Store.PutDriver(r.Context(), d); err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save driver failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, d)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// VehiclesHandler handles GET and POST /v1/vehicles.
func (s *Server) VehiclesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.Store.AvailableVehicles(r.Context(), time.Now())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List vehicles failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	case http.MethodPost:
		var v model.VehicleSnapshot
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		switch v.Type {
		case model.VehicleSmall, model.VehicleMedium, model.VehicleLarge, model.VehicleExtraLarge:
		default:
			writeProblem(w, http.StatusBadRequest, "Invalid vehicle type", string(v.Type), r.URL.Path)
			return
		}
		if err := s.Store.PutVehicle(r.Context(), v); err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save vehicle failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, v)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// DeliveriesHandler handles GET and POST /v1/deliveries, keyed by plan date.
func (s *Server) DeliveriesHandler(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeProblem(w, http.StatusBadRequest, "Missing date", "want ?date=YYYY-MM-DD", r.URL.Path)
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid date", "want YYYY-MM-DD", r.URL.Path)
		return
	}
	switch r.Method {
	case http.MethodGet:
		items, err := s.Store.PendingDeliveries(r.Context(), date)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List deliveries failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	case http.MethodPost:
		var in struct {
			model.DeliveryRequirement
			Availability *timewin.Availability `json:"availability,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		d := in.DeliveryRequirement
		// availability flags collapse into the earliest delivery window
		if d.Window == nil && in.Availability != nil {
			if ws := in.Availability.Windows(); len(ws) > 0 {
				tw := ws[0].ToTimeWindow(date)
				d.Window = &tw
			}
		}
		if err := s.Store.PutDelivery(r.Context(), date, d); err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save delivery failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, d)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SlotsHandler handles GET /v1/slots: the bookable delivery slots between
// two dates, Sundays excluded.
func (s *Server) SlotsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid from date", "want ?from=YYYY-MM-DD", r.URL.Path)
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid to date", "want ?to=YYYY-MM-DD", r.URL.Path)
		return
	}
	hours := 2
	if v := r.URL.Query().Get("hours"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil && n > 0 {
			hours = n
		}
	}
	opStart, opEnd := s.cfg.Optimizer.WorkdayStartHour, s.cfg.Optimizer.WorkdayEndHour
	if opStart <= 0 {
		opStart = 8
	}
	if opEnd <= 0 {
		opEnd = 18
	}
	slots := timewin.GenerateSlots(from, to, hours, opStart, opEnd, nil, time.Sunday)
	writeJSON(w, http.StatusOK, map[string]any{"items": slots})
}

// ResourcesHandler handles GET /v1/resources: the available fleet in one
// response, the shape the dispatcher UI consumes before submitting a run.
func (s *Server) ResourcesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	now := time.Now()
	drivers, err := s.Store.AvailableDrivers(r.Context(), now)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List drivers failed", err.Error(), r.URL.Path)
		return
	}
	vehicles, err := s.Store.AvailableVehicles(r.Context(), now)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List vehicles failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"drivers": drivers, "vehicles": vehicles})
}

// HealthHandler reports process liveness.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Info()
	info["status"] = "ok"
	writeJSON(w, http.StatusOK, info)
}

// ReadyHandler reports readiness: the store must answer a ping.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(r.Context()); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Store unavailable", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
