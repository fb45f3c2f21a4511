// Package timewin converts client availability flags into delivery windows,
// generates candidate time slots for a planning horizon and estimates
// per-stop service time.
package timewin

import (
	"sort"
	"time"

	"github.com/cheez95/LuckyGas-sub001/internal/model"
)

// horizonEndHour closes the last availability bucket of the day.
const horizonEndHour = 20

// Window is a within-day interval expressed in whole hours.
type Window struct {
	StartHour int `json:"startHour"`
	EndHour   int `json:"endHour"`
}

// Availability carries a client's delivery-hour flags keyed by start hour.
// BiHourly holds 2-hour buckets (8, 10, ... 18); Hourly holds 1-hour buckets
// (8 .. 19). When any bi-hourly flag is present the hourly flags are ignored
// entirely; mixing the two representations in one record is not supported.
type Availability struct {
	BiHourly map[int]bool `json:"biHourly,omitempty"`
	Hourly   map[int]bool `json:"hourly,omitempty"`
}

// Windows expands the flags into merged contiguous windows.
func (a Availability) Windows() []Window {
	if len(a.BiHourly) > 0 {
		return windowsFromBuckets(a.BiHourly, 2)
	}
	return windowsFromBuckets(a.Hourly, 1)
}

func windowsFromBuckets(flags map[int]bool, step int) []Window {
	var raw []Window
	for h := 8; h < horizonEndHour; h += step {
		if flags[h] {
			raw = append(raw, Window{StartHour: h, EndHour: h + step})
		}
	}
	return MergeWindows(raw)
}

// MergeWindows sorts by start and merges overlapping or touching windows
// into the minimal set of disjoint, maximal windows.
func MergeWindows(ws []Window) []Window {
	if len(ws) == 0 {
		return nil
	}
	sorted := append([]Window(nil), ws...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartHour < sorted[j].StartHour })
	out := []Window{sorted[0]}
	for _, w := range sorted[1:] {
		last := &out[len(out)-1]
		if last.EndHour >= w.StartHour {
			if w.EndHour > last.EndHour {
				last.EndHour = w.EndHour
			}
			continue
		}
		out = append(out, w)
	}
	return out
}

// ToTimeWindow anchors a within-day window on a calendar date.
func (w Window) ToTimeWindow(date time.Time) model.TimeWindow {
	y, m, d := date.Date()
	loc := date.Location()
	return model.TimeWindow{
		Start: time.Date(y, m, d, w.StartHour, 0, 0, 0, loc),
		End:   time.Date(y, m, d, w.EndHour, 0, 0, 0, loc),
	}
}

// Slot is a candidate delivery slot on the planning horizon.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// GenerateSlots partitions each day's operating hours in [from, to] into
// fixed-duration slots, skipping offDay and dropping slots overlapping any
// excluded range (a lunch break, typically).
func GenerateSlots(from, to time.Time, slotHours, opStartHour, opEndHour int, exclude []Slot, offDay time.Weekday) []Slot {
	if slotHours <= 0 {
		slotHours = 2
	}
	var out []Slot
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == offDay {
			continue
		}
		y, m, d := day.Date()
		for h := opStartHour; h+slotHours <= opEndHour; h += slotHours {
			s := Slot{
				Start: time.Date(y, m, d, h, 0, 0, 0, day.Location()),
				End:   time.Date(y, m, d, h+slotHours, 0, 0, 0, day.Location()),
			}
			if overlapsAny(s, exclude) {
				continue
			}
			out = append(out, s)
		}
	}
	return out
}

func overlapsAny(s Slot, exclude []Slot) bool {
	for _, e := range exclude {
		if !(s.End.Before(e.Start) || s.End.Equal(e.Start) || s.Start.After(e.End) || s.Start.Equal(e.End)) {
			return true
		}
	}
	return false
}

// base service minutes per cylinder by type.
var baseServiceMin = map[model.CylinderType]float64{
	model.Cylinder16Kg:   4,
	model.Cylinder20Kg:   5,
	model.Cylinder50Kg:   9,
	model.CylinderCustom: 6,
}

var locationMultiplier = map[model.LocationKind]float64{
	model.LocationResidential: 1.0,
	model.LocationCommercial:  1.2,
	model.LocationIndustrial:  1.5,
}

const (
	setupMinutes      = 5.0
	maxServiceMinutes = 60.0
)

// EstimateServiceTime estimates on-site time for a delivery: base minutes per
// cylinder type scaled by quantity and location multiplier, plus a fixed
// setup/teardown, capped at one hour.
func EstimateServiceTime(d model.DeliveryRequirement) time.Duration {
	mult, ok := locationMultiplier[d.LocationKind]
	if !ok {
		mult = 1.0
	}
	minutes := setupMinutes
	for ct, qty := range d.Cylinders {
		if qty <= 0 {
			continue
		}
		base, ok := baseServiceMin[ct]
		if !ok {
			base = baseServiceMin[model.CylinderCustom]
		}
		minutes += base * float64(qty) * mult
	}
	if minutes > maxServiceMinutes {
		minutes = maxServiceMinutes
	}
	return time.Duration(minutes * float64(time.Minute))
}
