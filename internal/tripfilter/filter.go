package tripfilter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tracemap/internal/models"
)

// TimeOfDay is a wall-clock time of day expressed as seconds since midnight
type TimeOfDay int

// Options controls the trip-level filtering applied to an ordered point
// stream before tiling. Weekdays and the time-of-day window are inactive
// when nil. DedupeByTrip keeps only the first-seen point per trip, so the
// input must already be sorted by timestamp ascending for "first in time"
// semantics.
type Options struct {
	DedupeByTrip bool
	Weekdays     map[int]bool // ISO weekday 1=Mon..7=Sun
	TimeStart    *TimeOfDay   // inclusive
	TimeEnd      *TimeOfDay   // exclusive, must be > TimeStart
}

// ParseOptions validates and assembles filter options from raw query values.
// Both time-of-day bounds must be supplied together or neither; the window
// must not wrap past midnight.
func ParseOptions(days, timeStart, timeEnd string, dedupeByTrip bool) (Options, error) {
	opts := Options{DedupeByTrip: dedupeByTrip}

	if days != "" {
		set, err := ParseDays(days)
		if err != nil {
			return Options{}, err
		}
		opts.Weekdays = set
	}

	switch {
	case timeStart != "" && timeEnd != "":
		start, err := ParseTimeOfDay(timeStart)
		if err != nil {
			return Options{}, fmt.Errorf("timeStart must be HH, HH:MM or HH:MM:SS: %w", err)
		}
		end, err := ParseTimeOfDay(timeEnd)
		if err != nil {
			return Options{}, fmt.Errorf("timeEnd must be HH, HH:MM or HH:MM:SS: %w", err)
		}
		if end <= start {
			return Options{}, fmt.Errorf("timeEnd must be greater than timeStart (same-day window)")
		}
		opts.TimeStart = &start
		opts.TimeEnd = &end
	case timeStart != "" || timeEnd != "":
		return Options{}, fmt.Errorf("both timeStart and timeEnd must be provided together")
	}

	return opts, nil
}

// ParseDays parses a comma/space separated list of ISO weekdays (1=Mon..7=Sun)
func ParseDays(input string) (map[int]bool, error) {
	set := make(map[int]bool)
	tokens := strings.FieldsFunc(input, func(c rune) bool {
		return c == ',' || c == ' ' || c == '\t'
	})
	for _, token := range tokens {
		n, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("invalid day '%s': not a number", token)
		}
		if n < 1 || n > 7 {
			return nil, fmt.Errorf("day '%d' out of range 1..7", n)
		}
		set[n] = true
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no valid days provided")
	}
	return set, nil
}

// ParseTimeOfDay parses HH, HH:MM or HH:MM:SS into seconds since midnight
func ParseTimeOfDay(input string) (TimeOfDay, error) {
	s := strings.TrimSpace(input)
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid time format '%s'", input)
	}

	var hms [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("invalid time format '%s'", input)
		}
		hms[i] = n
	}
	if hms[0] < 0 || hms[0] > 23 || hms[1] < 0 || hms[1] > 59 || hms[2] < 0 || hms[2] > 59 {
		return 0, fmt.Errorf("time '%s' out of range", input)
	}

	return TimeOfDay(hms[0]*3600 + hms[1]*60 + hms[2]), nil
}

// Apply filters an ordered point sequence. Deduplication runs before the
// weekday/time-of-day predicates; points lacking a timestamp never match an
// active weekday or time-of-day filter.
func Apply(points []models.Point, opts Options) []models.Point {
	if !opts.DedupeByTrip && opts.Weekdays == nil && opts.TimeStart == nil {
		return points
	}

	out := make([]models.Point, 0, len(points))
	seen := make(map[int64]bool)

	for _, p := range points {
		if opts.DedupeByTrip {
			if seen[p.TripID] {
				continue
			}
			seen[p.TripID] = true
		}
		if opts.Weekdays != nil && !matchesWeekday(p.Timestamp, opts.Weekdays) {
			continue
		}
		if opts.TimeStart != nil && !matchesTimeOfDay(p.Timestamp, *opts.TimeStart, *opts.TimeEnd) {
			continue
		}
		out = append(out, p)
	}

	return out
}

func matchesWeekday(ts *time.Time, weekdays map[int]bool) bool {
	if ts == nil {
		return false
	}
	iso := int(ts.Weekday())
	if iso == 0 {
		iso = 7 // time.Sunday is 0, ISO Sunday is 7
	}
	return weekdays[iso]
}

func matchesTimeOfDay(ts *time.Time, start, end TimeOfDay) bool {
	if ts == nil {
		return false
	}
	tod := TimeOfDay(ts.Hour()*3600 + ts.Minute()*60 + ts.Second())
	return tod >= start && tod < end
}
